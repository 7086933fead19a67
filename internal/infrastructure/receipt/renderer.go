// Package receipt renders receipt documents to files and thermal printers.
package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/pkg/money"
	"github.com/sangkips/duka-pos/pkg/printer"
	"github.com/sirupsen/logrus"
)

// FileRenderer stores receipts under <storage>/receipts and forwards them to
// a thermal printer on request
type FileRenderer struct {
	dir       string
	charWidth int
	printer   printer.Printer
	log       *logrus.Entry
}

// NewFileRenderer creates the receipts directory and returns a renderer
// writing into it. A nil printer means printing is disabled.
func NewFileRenderer(storagePath string, charWidth int, p printer.Printer, logger *logging.Logger) (*FileRenderer, error) {
	dir := filepath.Join(storagePath, "receipts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	if p == nil {
		p = printer.NewNullPrinter()
	}
	return &FileRenderer{
		dir:       dir,
		charWidth: charWidth,
		printer:   p,
		log:       logger.Component("renderer"),
	}, nil
}

// Dir returns the directory receipts are written to
func (r *FileRenderer) Dir() string {
	return r.dir
}

// Printer returns the printer receipts are sent to
func (r *FileRenderer) Printer() printer.Printer {
	return r.printer
}

// Render writes the document in its own format and returns the file path.
// The file is written under a temporary name and renamed into place so a
// reader never sees a partial receipt.
func (r *FileRenderer) Render(ctx context.Context, doc *entity.ReceiptDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.ReceiptNumber == "" {
		return "", fmt.Errorf("receipt number is required")
	}

	format := doc.Format
	if !format.Valid() {
		format = enum.ReceiptFormatText
	}

	path := filepath.Join(r.dir, doc.ReceiptNumber+format.Extension())
	tmp, err := os.CreateTemp(r.dir, doc.ReceiptNumber+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(Format(doc, format, r.charWidth)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close receipt file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move receipt file: %w", err)
	}

	r.log.WithField("path", path).Debug("Receipt written")
	return path, nil
}

// Print sends the document to the printer as ESC/POS regardless of the
// stored format
func (r *FileRenderer) Print(ctx context.Context, doc *entity.ReceiptDocument) error {
	if printer.IsNull(r.printer) {
		return nil
	}
	if err := r.printer.Print(ctx, Format(doc, enum.ReceiptFormatESCPOS, r.charWidth)); err != nil {
		return fmt.Errorf("print receipt %s on %s: %w", doc.ReceiptNumber, r.printer.Name(), err)
	}
	return nil
}

// Format lays the document out for a roll of charWidth characters, either as
// plain text or as an ESC/POS byte stream.
func Format(r *entity.ReceiptDocument, format enum.ReceiptFormat, charWidth int) []byte {
	var doc *printer.Document
	if format == enum.ReceiptFormatESCPOS {
		doc = printer.NewDocument(charWidth)
	} else {
		doc = printer.NewPlainDocument(charWidth)
	}

	amount := func(cents int64) string {
		if r.Currency != "" {
			return r.Currency + " " + money.Format(cents)
		}
		return money.Format(cents)
	}

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Receipt:", r.ReceiptNumber).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.PaymentType != "" {
		doc.KeyValue("Payment:", r.PaymentType)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, money.Format(item.Total))
		if item.Category != "" {
			category := []rune(item.Category)
			if room := charWidth - 4; room > 0 && len(category) > room {
				category = category[:room]
			}
			doc.TextF("  [%s]", string(category))
		}
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", money.Format(item.UnitPrice))
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", amount(r.SubTotal))
	doc.SetBold(true).
		KeyValue("TOTAL:", amount(r.Total)).
		SetBold(false)

	doc.Separator('-')

	if r.Footer != "" {
		doc.SetAlign(printer.AlignCenter).
			LineFeed().
			Text(r.Footer).
			LineFeed().
			SetAlign(printer.AlignLeft)
	}

	if !doc.IsPlain() {
		doc.FeedLines(3).
			PartialCut()
	}

	return doc.Bytes()
}
