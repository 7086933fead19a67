package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/config"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/infrastructure/receipt"
	"github.com/sangkips/duka-pos/internal/infrastructure/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/internal/presentation/http/handler"
	"github.com/sangkips/duka-pos/internal/presentation/http/middleware"
	"github.com/sangkips/duka-pos/internal/presentation/http/routes"
	"github.com/sangkips/duka-pos/internal/testutil"
	"github.com/sangkips/duka-pos/pkg/printer"
	"github.com/sangkips/duka-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "time/tzdata"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func setupRouter(t *testing.T) (*apiClient, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := logging.Discard()
	cfg := &config.Config{App: config.AppConfig{Name: "duka-pos"}}
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	renderer, err := receipt.NewFileRenderer(t.TempDir(), 32, printer.NewNullPrinter(), log)
	require.NoError(t, err)

	productService := service.NewProductService(productRepo, categoryRepo)
	receiptService := service.NewReceiptService(repository.NewReceiptRepository(db), saleRepo, userRepo, settingsRepo, renderer, "Duka", enum.ReceiptFormatText, log)
	saleService := service.NewSaleService(transactor, saleRepo, repository.NewSaleItemRepository(db), productRepo, receiptService, log)
	cartService := service.NewCartService(productService, saleService, time.Hour, log)

	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, settingsRepo, transactor, jwtManager)),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Cart:     handler.NewCartHandler(cartService),
		Sale:     handler.NewSaleHandler(saleService, receiptService),
		Report:   handler.NewReportHandler(service.NewReportService(nil, settingsRepo)),
		Settings: handler.NewSettingsHandler(service.NewSettingsService(settingsRepo, enum.ReceiptFormatText)),
		Printer:  handler.NewPrinterHandler(service.NewPrinterService(printer.NewNullPrinter(), renderer)),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		RateLimiter:     middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
	})

	return &apiClient{t: t, router: router}, db
}

func (a *apiClient) login() {
	a.t.Helper()

	w, _ := a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"first_name":       "Jane",
		"last_name":        "Wanjiku",
		"email":            "jane@duka.test",
		"password":         "supersecret",
		"password_confirm": "supersecret",
		"store_name":       "Mama Mboga",
	}, nil)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "jane@duka.test",
		"password": "supersecret",
	}, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decode(a.t, env.Data, &tokens)
	require.NotEmpty(a.t, tokens.AccessToken)
	a.token = tokens.AccessToken
}

func TestHealth(t *testing.T) {
	api, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api, _ := setupRouter(t)

	w, env := api.do(http.MethodPost, "/api/v1/carts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestCheckoutFlow(t *testing.T) {
	api, db := setupRouter(t)
	api.login()

	w, env := api.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":          "Sugar 1kg",
		"quantity":      10,
		"cost_price":    60,
		"selling_price": 100,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &product)

	w, env = api.do(http.MethodPost, "/api/v1/carts", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opened struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &opened)
	cartPath := "/api/v1/carts/" + opened.ID

	// asking for more than is on the shelf clamps to stock
	w, env = api.do(http.MethodPost, cartPath+"/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   12,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cartState struct {
		Lines []struct {
			Quantity  int `json:"quantity"`
			Available int `json:"available"`
		} `json:"lines"`
		TotalAmount float64 `json:"total_amount"`
		Notices     []struct {
			Notice string `json:"notice"`
		} `json:"notices"`
	}
	decode(t, env.Data, &cartState)
	require.Len(t, cartState.Lines, 1)
	assert.Equal(t, 10, cartState.Lines[0].Quantity)
	require.Len(t, cartState.Notices, 1)

	w, _ = api.do(http.MethodPut, cartPath+"/items/"+product.ID, map[string]int{"quantity": 2}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	key := map[string]string{"Idempotency-Key": "checkout-1"}
	w, env = api.do(http.MethodPost, cartPath+"/checkout", map[string]string{"payment_type": "cash"}, key)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout struct {
		SaleID          string  `json:"sale_id"`
		ReceiptNumber   string  `json:"receipt_number"`
		TotalAmount     float64 `json:"total_amount"`
		TotalProfit     float64 `json:"total_profit"`
		ReceiptFilePath *string `json:"receipt_file_path"`
	}
	decode(t, env.Data, &checkout)
	assert.Equal(t, 200.0, checkout.TotalAmount)
	assert.Equal(t, 80.0, checkout.TotalProfit)
	assert.NotNil(t, checkout.ReceiptFilePath)
	assert.NotEmpty(t, checkout.ReceiptNumber)

	// a retried checkout replays the first response instead of selling twice
	w, env = api.do(http.MethodPost, cartPath+"/checkout", map[string]string{"payment_type": "cash"}, key)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	var replay struct {
		SaleID string `json:"sale_id"`
	}
	decode(t, env.Data, &replay)
	assert.Equal(t, checkout.SaleID, replay.SaleID)
	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Sale{}))

	// without the key the cart is gone
	w, _ = api.do(http.MethodPost, cartPath+"/checkout", map[string]string{"payment_type": "cash"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = api.do(http.MethodGet, "/api/v1/products/"+product.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stock struct {
		Quantity int `json:"quantity"`
	}
	decode(t, env.Data, &stock)
	assert.Equal(t, 8, stock.Quantity)

	w, env = api.do(http.MethodGet, "/api/v1/sales", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sales struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decode(t, env.Data, &sales)
	require.Len(t, sales.Items, 1)
	assert.Equal(t, checkout.SaleID, sales.Items[0].ID)

	w, _ = api.do(http.MethodGet, "/api/v1/sales/"+checkout.SaleID+"/receipt", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCheckoutRejectsBadPaymentType(t *testing.T) {
	api, _ := setupRouter(t)
	api.login()

	w, env := api.do(http.MethodPost, "/api/v1/carts", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var opened struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &opened)

	w, _ = api.do(http.MethodPost, "/api/v1/carts/"+opened.ID+"/checkout", map[string]string{"payment_type": "bitcoin"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/carts/"+opened.ID+"/checkout", map[string]string{"payment_type": "cash"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")
}
