package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Compile-time interface check: productsTable must implement ProductTable.
var _ types.ProductTable = (*productsTable)(nil)

const selectProducts = "SELECT product_id, product_name, product_quantity, product_price, date_updated FROM products"

// productsTable implements the ProductTable interface. Each operation
// converts between SQLite rows and *types.Product structs.
type productsTable struct {
	backend *Backend
}

// Create inserts p and records the assigned identifier on it. A taken name
// surfaces as ErrDuplicateName through the UNIQUE constraint on product_name.
func (pt *productsTable) Create(ctx context.Context, p *types.Product) (int64, error) {
	if p == nil {
		return 0, types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	db, err := pt.backend.conn()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO products (product_name, product_quantity, product_price, date_updated) VALUES (?, ?, ?, ?)",
		p.Name, p.Quantity, p.Price, formatDate(p.LastUpdated),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("creating product %q: %w", p.Name, types.ErrDuplicateName)
		}
		return 0, fmt.Errorf("creating product %q: %w", p.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading product id: %w", err)
	}
	p.ID = id
	p.LastUpdated = types.Date(p.LastUpdated)

	pt.backend.log.Debug("product created", zap.Int64("id", id), zap.String("name", p.Name))
	return id, nil
}

// FindOrCreate attempts the insert first and falls back to the stored row
// only when the name is already taken.
func (pt *productsTable) FindOrCreate(ctx context.Context, p *types.Product) (*types.Product, bool, error) {
	_, err := pt.Create(ctx, p)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, types.ErrDuplicateName) {
		return nil, false, err
	}

	existing, err := pt.FindByName(ctx, p.Name)
	if err != nil {
		return nil, false, fmt.Errorf("loading existing product %q: %w", p.Name, err)
	}
	return existing, false, nil
}

// FindByName returns the product with the given name.
func (pt *productsTable) FindByName(ctx context.Context, name string) (*types.Product, error) {
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	p, err := scanProduct(db.QueryRowContext(ctx, selectProducts+" WHERE product_name = ?", name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", name, err)
	}
	return p, nil
}

// FindByID returns the product with the given identifier.
func (pt *productsTable) FindByID(ctx context.Context, id int64) (*types.Product, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	p, err := scanProduct(db.QueryRowContext(ctx, selectProducts+" WHERE product_id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return p, nil
}

// Save writes every mutable field of p back to its row.
func (pt *productsTable) Save(ctx context.Context, p *types.Product) error {
	if p == nil {
		return types.ErrInvalidData
	}
	if p.ID <= 0 {
		return types.ErrInvalidID
	}
	if err := p.Validate(); err != nil {
		return err
	}
	db, err := pt.backend.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		"UPDATE products SET product_name = ?, product_quantity = ?, product_price = ?, date_updated = ? WHERE product_id = ?",
		p.Name, p.Quantity, p.Price, formatDate(p.LastUpdated), p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("saving product %d: %w", p.ID, types.ErrDuplicateName)
		}
		return fmt.Errorf("saving product %d: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving product %d: %w", p.ID, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	pt.backend.log.Debug("product saved", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return nil
}

// List returns all products ordered by product_id.
func (pt *productsTable) List(ctx context.Context, order types.Order) ([]*types.Product, error) {
	var query string
	switch order {
	case types.OrderAsc, "":
		query = selectProducts + " ORDER BY product_id ASC"
	case types.OrderDesc:
		query = selectProducts + " ORDER BY product_id DESC"
	default:
		return nil, types.ErrInvalidOrder
	}

	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	results := []*types.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return results, nil
}

// Count returns the number of rows in the products table.
func (pt *productsTable) Count(ctx context.Context) (int, error) {
	db, err := pt.backend.conn()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct converts a single row into a *types.Product.
func scanProduct(row rowScanner) (*types.Product, error) {
	var p types.Product
	var updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &updated); err != nil {
		return nil, err
	}
	d, err := time.Parse(types.DateLayout, updated)
	if err != nil {
		return nil, fmt.Errorf("parsing date_updated: %w", err)
	}
	p.LastUpdated = d
	return &p, nil
}

func formatDate(t time.Time) string {
	return types.Date(t).Format(types.DateLayout)
}
