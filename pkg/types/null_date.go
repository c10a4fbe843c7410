package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

// NullDate is an optional calendar date.
type NullDate struct {
	Date  Date
	Valid bool
}

func NullDateFrom(d Date) NullDate {
	return NullDate{Date: d, Valid: true}
}

// ParseNullDate treats an empty string as absent.
func ParseNullDate(s string) (NullDate, error) {
	if s == "" {
		return NullDate{}, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return NullDate{}, err
	}
	return NullDateFrom(d), nil
}

func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Date.String())
}

func (n *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseNullDate(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n *NullDate) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		*n = NullDate{}
		return nil
	}
	*n = NullDateFrom(DateOf(v.Time))
	return nil
}

func (n NullDate) DateValue() (pgtype.Date, error) {
	if !n.Valid {
		return pgtype.Date{}, nil
	}
	return n.Date.DateValue()
}

func (n *NullDate) Scan(src any) error {
	if src == nil {
		*n = NullDate{}
		return nil
	}
	if err := n.Date.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Date.Value()
}
