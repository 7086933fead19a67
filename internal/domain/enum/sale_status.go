package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus int

const (
	SaleStatusCompleted SaleStatus = 1
)

var saleStatusNames = map[SaleStatus]string{
	SaleStatusCompleted: "COMPLETED",
}

func (s SaleStatus) String() string {
	if name, ok := saleStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	for status, name := range saleStatusNames {
		if name == str {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown sale status %q", str)
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	case nil:
		*s = SaleStatusCompleted
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	return nil
}
