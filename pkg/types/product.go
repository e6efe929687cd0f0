package types

import (
	"strings"
	"time"
)

// DateLayout is the storage layout of Product.LastUpdated.
const DateLayout = "2006-01-02"

// Product is a single inventory record, unique by Name.
type Product struct {
	ID          int64     // Assigned by the store, immutable.
	Name        string    // Merge key, unique across products.
	Quantity    int64     // Units in stock.
	Price       int64     // Minor currency units (cents).
	LastUpdated time.Time // Calendar date at UTC midnight.
}

// Row is one raw inventory line: name, price, quantity and date exactly as
// they appear in the source file or as entered by the user.
type Row struct {
	Name     string
	Price    string
	Quantity string
	Date     string
}

// Date truncates t to its calendar date at UTC midnight. The calendar day
// is taken in t's own location.
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks the invariants every stored product must satisfy.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Quantity < 0 || p.Price < 0 {
		return ErrNegativeAmount
	}
	if p.LastUpdated.IsZero() {
		return ErrInvalidData
	}
	return nil
}

// AcceptsUpdate reports whether incoming should overwrite p. An incoming
// record wins when its date is on or after the stored date.
func (p *Product) AcceptsUpdate(incoming *Product) bool {
	return !Date(p.LastUpdated).After(Date(incoming.LastUpdated))
}

// Apply copies the mutable fields of incoming onto p. ID and Name are kept.
func (p *Product) Apply(incoming *Product) {
	p.Price = incoming.Price
	p.Quantity = incoming.Quantity
	p.LastUpdated = Date(incoming.LastUpdated)
}
