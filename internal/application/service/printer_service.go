package service

import (
	"context"
	"fmt"

	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/pkg/printer"
)

// PrinterService reports on and exercises the receipt printer.
type PrinterService struct {
	printer  printer.Printer
	renderer DocumentRenderer
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, renderer DocumentRenderer) *PrinterService {
	if p == nil {
		p = printer.NewNullPrinter()
	}
	return &PrinterService{printer: p, renderer: renderer}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Name       string `json:"name"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: !printer.IsNull(s.printer),
		Connected:  s.printer.IsConnected(ctx),
		Name:       s.printer.Name(),
	}
}

// TestPrint sends a test slip to the printer.
// Returns the document so the caller can show it when no printer is configured.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.ReceiptDocument, error) {
	doc := &entity.ReceiptDocument{
		Header: entity.ReceiptHeader{
			StoreName: "PRINTER TEST",
			Address:   "Test Address",
			Phone:     "+254 000 000 000",
		},
		ReceiptNumber: "RCPT-TEST0001",
		Date:          "Test Date",
		Cashier:       "System",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 1000, Total: 1000},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 500, Total: 1000},
		},
		SubTotal: 2000,
		Total:    2000,
		Footer:   defaultReceiptFooter,
		Format:   enum.ReceiptFormatESCPOS,
	}

	if err := s.renderer.Print(ctx, doc); err != nil {
		return doc, fmt.Errorf("test print failed: %w", err)
	}
	return doc, nil
}
