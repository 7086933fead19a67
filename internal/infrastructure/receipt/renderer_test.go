package receipt

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(format enum.ReceiptFormat) *entity.ReceiptDocument {
	return &entity.ReceiptDocument{
		Header:        entity.ReceiptHeader{StoreName: "Mama Mboga", Phone: "+254 700 000 000"},
		ReceiptNumber: "RCPT-1A2B3C4D",
		Date:          "2026-03-01 10:15",
		Cashier:       "Jane Wanjiku",
		PaymentType:   "cash",
		Currency:      "KES",
		Items: []entity.ReceiptItem{
			{Name: "Sugar 1kg", Category: "Dry goods", Quantity: 2, UnitPrice: 10000, Total: 20000},
			{Name: "Matches", Quantity: 1, UnitPrice: 500, Total: 500},
		},
		SubTotal: 20500,
		Total:    20500,
		Footer:   "Karibu tena",
		Format:   format,
	}
}

func TestFormat_PlainText(t *testing.T) {
	out := string(Format(sampleDocument(enum.ReceiptFormatText), enum.ReceiptFormatText, 32))

	assert.Contains(t, out, "Mama Mboga")
	assert.Contains(t, out, "RCPT-1A2B3C4D")
	assert.Contains(t, out, "2x Sugar 1kg")
	assert.Contains(t, out, "@ 100.00 each")
	assert.Contains(t, out, "[Dry goods]")
	assert.Equal(t, 1, strings.Count(out, "["), "uncategorised items print no category line")
	assert.Contains(t, out, "KES 205.00")
	assert.Contains(t, out, "Karibu tena")
	assert.NotContains(t, out, "\x1b")
	assert.NotContains(t, out, "\x1d")

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 32, line)
	}
}

func TestFormat_ClipsLongCategory(t *testing.T) {
	doc := sampleDocument(enum.ReceiptFormatText)
	doc.Items[0].Category = strings.Repeat("Household cleaning ", 4)

	out := string(Format(doc, enum.ReceiptFormatText, 32))
	assert.Contains(t, out, "  [Household cleaning Household]")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 32, line)
	}
}

func TestFormat_ESCPOS(t *testing.T) {
	out := Format(sampleDocument(enum.ReceiptFormatESCPOS), enum.ReceiptFormatESCPOS, 32)

	assert.Equal(t, []byte{printer.ESC, '@'}, out[:2])
	assert.Equal(t, []byte{printer.GS, 'V', 0x01}, out[len(out)-3:])
	assert.Contains(t, string(out), "RCPT-1A2B3C4D")
}

func TestFileRenderer_Render(t *testing.T) {
	r, err := NewFileRenderer(t.TempDir(), 32, nil, logging.Discard())
	require.NoError(t, err)

	path, err := r.Render(context.Background(), sampleDocument(enum.ReceiptFormatText))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir(), "RCPT-1A2B3C4D.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mama Mboga")

	entries, err := os.ReadDir(r.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRenderer_RenderOverwrites(t *testing.T) {
	r, err := NewFileRenderer(t.TempDir(), 32, nil, logging.Discard())
	require.NoError(t, err)

	doc := sampleDocument(enum.ReceiptFormatESCPOS)
	first, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first, ".bin"))

	doc.Footer = "Second copy"
	second, err := r.Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Second copy")
}

func TestFileRenderer_RenderRequiresNumber(t *testing.T) {
	r, err := NewFileRenderer(t.TempDir(), 32, nil, logging.Discard())
	require.NoError(t, err)

	doc := sampleDocument(enum.ReceiptFormatText)
	doc.ReceiptNumber = ""
	_, err = r.Render(context.Background(), doc)
	assert.Error(t, err)
}

func TestFileRenderer_PrintSendsESCPOS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var data []byte
		for {
			n, err := conn.Read(buf)
			data = append(data, buf[:n]...)
			if err != nil {
				break
			}
		}
		received <- data
	}()

	r, err := NewFileRenderer(t.TempDir(), 32, printer.NewNetworkPrinter(ln.Addr().String()), logging.Discard())
	require.NoError(t, err)

	require.NoError(t, r.Print(context.Background(), sampleDocument(enum.ReceiptFormatText)))

	select {
	case data := <-received:
		assert.Equal(t, []byte{printer.ESC, '@'}, data[:2])
	case <-time.After(3 * time.Second):
		t.Fatal("printer received nothing")
	}
}
