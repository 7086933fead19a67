package request

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName       string `json:"first_name" binding:"required,min=2,max=255"`
	LastName        string `json:"last_name" binding:"required,min=2,max=255"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	StoreName       string `json:"store_name" binding:"omitempty,max=255"` // Optional: printed on receipts
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest represents a profile update. Omitted fields are kept.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name" binding:"omitempty,min=2,max=255"`
	LastName     *string `json:"last_name" binding:"omitempty,min=2,max=255"`
	StoreName    *string `json:"store_name" binding:"omitempty,max=255"`
	StoreAddress *string `json:"store_address" binding:"omitempty,max=500"`
	StorePhone   *string `json:"store_phone" binding:"omitempty,max=50"`
}

// UpdateSettingsRequest represents a shop settings update
type UpdateSettingsRequest struct {
	Timezone       string `json:"timezone"`
	Currency       string `json:"currency" binding:"omitempty,max=10"`
	ReceiptFormat  string `json:"receipt_format" binding:"omitempty,oneof=text escpos"`
	ReceiptFooter  string `json:"receipt_footer" binding:"max=255"`
	PrintReceipts  bool   `json:"print_receipts"`
	LowStockAlerts bool   `json:"low_stock_alerts"`
}
