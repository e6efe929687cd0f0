// Package inventory turns raw inventory rows into stored products. It reads
// delimited import files, merges rows into a ProductTable by recency, and
// writes CSV backups of the store.
package inventory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Date layouts for import and backup files. Parsing accepts months and days
// with or without a leading zero; formatting always zero-pads.
const (
	parseDateLayout  = "1/2/2006"
	formatDateLayout = "01/02/2006"
)

// ErrParse matches every *ParseError through errors.Is.
var ErrParse = errors.New("parse error")

var nonDigits = regexp.MustCompile(`[^\d]+`)

// ParseError reports a row field that could not be converted.
type ParseError struct {
	Row   int // 1-based data row within a batch; 0 for a single row.
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// FormatDate renders t in the month/day/year layout of inventory files.
func FormatDate(t time.Time) string {
	return t.Format(formatDateLayout)
}

// ParseRow converts a raw row into a product ready for merging. The date is
// parsed first, then price and quantity; the first failure is returned.
func ParseRow(row types.Row) (*types.Product, error) {
	when, err := ParseDate(row.Date)
	if err != nil {
		return nil, err
	}
	price, err := ParsePrice(row.Price)
	if err != nil {
		return nil, err
	}
	quantity, err := ParseQuantity(row.Quantity)
	if err != nil {
		return nil, err
	}
	return &types.Product{
		Name:        row.Name,
		Price:       price,
		Quantity:    quantity,
		LastUpdated: when,
	}, nil
}

// ParseDate parses a month/day/year date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(parseDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &ParseError{Field: "date", Value: raw, Err: err}
	}
	return t, nil
}

// ParsePrice strips every non-digit character and reads the rest as cents,
// so "$12.99" becomes 1299.
func ParsePrice(raw string) (int64, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return 0, &ParseError{Field: "price", Value: raw, Err: errors.New("no digits")}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ParseError{Field: "price", Value: raw, Err: err}
	}
	return n, nil
}

// ParseQuantity reads a plain non-negative integer.
func ParseQuantity(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ParseError{Field: "quantity", Value: raw, Err: err}
	}
	if n < 0 {
		return 0, &ParseError{Field: "quantity", Value: raw, Err: types.ErrNegativeAmount}
	}
	return n, nil
}
