package enum

// ReceiptFormat is the encoding of a rendered receipt file
type ReceiptFormat string

const (
	ReceiptFormatText   ReceiptFormat = "text"
	ReceiptFormatESCPOS ReceiptFormat = "escpos"
)

// Extension returns the file extension used for the format.
func (f ReceiptFormat) Extension() string {
	if f == ReceiptFormatESCPOS {
		return ".bin"
	}
	return ".txt"
}

// Valid reports whether f is a supported format.
func (f ReceiptFormat) Valid() bool {
	return f == ReceiptFormatText || f == ReceiptFormatESCPOS
}
