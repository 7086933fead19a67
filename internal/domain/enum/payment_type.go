package enum

import "strings"

// PaymentType is how the customer settled a sale
type PaymentType string

const (
	PaymentTypeCash        PaymentType = "cash"
	PaymentTypeCard        PaymentType = "card"
	PaymentTypeMobileMoney PaymentType = "mobile_money"
	PaymentTypeCredit      PaymentType = "credit"
)

// ParsePaymentType normalizes user input. The second result is false for
// unsupported values.
func ParsePaymentType(s string) (PaymentType, bool) {
	pt := PaymentType(strings.ToLower(strings.TrimSpace(s)))
	switch pt {
	case PaymentTypeCash, PaymentTypeCard, PaymentTypeMobileMoney, PaymentTypeCredit:
		return pt, true
	case "":
		return PaymentTypeCash, true
	}
	return pt, false
}
