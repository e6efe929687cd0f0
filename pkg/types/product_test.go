package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero stays zero", time.Time{}, time.Time{}},
		{"strips clock time", time.Date(2024, 1, 10, 17, 45, 3, 9, time.UTC), day(2024, 1, 10)},
		{"keeps local calendar day", time.Date(2024, 1, 10, 22, 0, 0, 0, loc), day(2024, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.in))
		})
	}
}

func TestProductValidate(t *testing.T) {
	valid := func() *Product {
		return &Product{Name: "Widget", Quantity: 3, Price: 1299, LastUpdated: day(2024, 1, 10)}
	}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr error
	}{
		{"valid product", func(p *Product) {}, nil},
		{"zero amounts are valid", func(p *Product) { p.Quantity, p.Price = 0, 0 }, nil},
		{"blank name", func(p *Product) { p.Name = "  " }, ErrInvalidName},
		{"negative quantity", func(p *Product) { p.Quantity = -1 }, ErrNegativeAmount},
		{"negative price", func(p *Product) { p.Price = -5 }, ErrNegativeAmount},
		{"missing date", func(p *Product) { p.LastUpdated = time.Time{} }, ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), tt.wantErr)
		})
	}
}

func TestProductAcceptsUpdate(t *testing.T) {
	stored := &Product{Name: "Widget", LastUpdated: day(2024, 1, 10)}

	tests := []struct {
		name     string
		incoming time.Time
		want     bool
	}{
		{"older incoming is discarded", day(2024, 1, 5), false},
		{"equal date overwrites", day(2024, 1, 10), true},
		{"newer incoming overwrites", day(2024, 2, 1), true},
		{"same day with clock time overwrites", time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stored.AcceptsUpdate(&Product{LastUpdated: tt.incoming}))
		})
	}
}

func TestProductApply(t *testing.T) {
	p := &Product{ID: 7, Name: "Widget", Quantity: 1, Price: 100, LastUpdated: day(2024, 1, 1)}
	p.Apply(&Product{ID: 99, Name: "Other", Quantity: 4, Price: 600, LastUpdated: day(2024, 1, 2)})

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, int64(4), p.Quantity)
	assert.Equal(t, int64(600), p.Price)
	assert.Equal(t, day(2024, 1, 2), p.LastUpdated)
}
