package types

import (
	"context"
	"errors"
)

// Order selects the identifier ordering for ProductTable.List.
type Order string

// Supported orderings.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ProductTable provides access to the product records of a Store.
type ProductTable interface {
	// Create inserts a new product and sets p.ID to the assigned identifier.
	// Returns ErrDuplicateName if a product with the same name exists.
	Create(ctx context.Context, p *Product) (int64, error)

	// FindOrCreate inserts p unless its name is already taken. It returns
	// the stored product and true when the product was created, or the
	// existing product and false when the name was already present.
	FindOrCreate(ctx context.Context, p *Product) (*Product, bool, error)

	// FindByName returns the product with the given name or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindByID returns the product with the given identifier or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Save persists the fields of an existing product, matched by ID.
	Save(ctx context.Context, p *Product) error

	// List returns every product ordered by identifier. The result is never nil.
	List(ctx context.Context, order Order) ([]*Product, error)

	// Count returns the number of stored products.
	Count(ctx context.Context) (int, error)
}

// Table operation errors.
var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidID      = errors.New("invalid product ID")
	ErrInvalidData    = errors.New("invalid product data")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrDuplicateName  = errors.New("product name already exists")
	ErrInvalidName    = errors.New("invalid name")
	ErrNegativeAmount = errors.New("quantity and price must not be negative")
)
