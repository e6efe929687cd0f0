package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// Outcome is what merging one row did to the store.
type Outcome int

// Merge outcomes.
const (
	Created Outcome = iota + 1
	Updated
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Summary counts merge outcomes for a batch.
type Summary struct {
	Created int
	Updated int
	Skipped int
}

// Total returns the number of rows merged.
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Skipped
}

func (s *Summary) add(o Outcome) {
	switch o {
	case Created:
		s.Created++
	case Updated:
		s.Updated++
	case Skipped:
		s.Skipped++
	}
}

// Merger applies rows to a ProductTable. A row creates its product when the
// name is new. Otherwise it overwrites price, quantity and date when the
// stored date is on or before the row's date, and is discarded when the
// stored date is newer.
type Merger struct {
	products types.ProductTable
	log      *zap.Logger
}

// NewMerger returns a Merger writing to products. A nil logger discards output.
func NewMerger(products types.ProductTable, log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{products: products, log: log.Named("merge")}
}

// Merge processes rows in order. The first parse or store error stops the
// batch; rows before it stay merged.
func (m *Merger) Merge(ctx context.Context, rows []types.Row) (Summary, error) {
	var sum Summary
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		p, err := ParseRow(row)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Row = i + 1
			}
			return sum, err
		}
		outcome, _, err := m.apply(ctx, p)
		if err != nil {
			return sum, fmt.Errorf("row %d: %w", i+1, err)
		}
		sum.add(outcome)
	}

	m.log.Info("merge finished",
		zap.Int("rows", len(rows)),
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

// MergeOne merges a single row and returns the stored product after the merge.
func (m *Merger) MergeOne(ctx context.Context, row types.Row) (Outcome, *types.Product, error) {
	p, err := ParseRow(row)
	if err != nil {
		return 0, nil, err
	}
	return m.apply(ctx, p)
}

func (m *Merger) apply(ctx context.Context, incoming *types.Product) (Outcome, *types.Product, error) {
	stored, created, err := m.products.FindOrCreate(ctx, incoming)
	if err != nil {
		return 0, nil, err
	}
	if created {
		m.log.Debug("row merged", zap.String("name", stored.Name), zap.Stringer("outcome", Created))
		return Created, stored, nil
	}

	if !stored.AcceptsUpdate(incoming) {
		m.log.Debug("row merged",
			zap.String("name", stored.Name),
			zap.Stringer("outcome", Skipped),
			zap.Time("stored", stored.LastUpdated),
			zap.Time("incoming", incoming.LastUpdated),
		)
		return Skipped, stored, nil
	}

	stored.Apply(incoming)
	if err := m.products.Save(ctx, stored); err != nil {
		return 0, nil, fmt.Errorf("updating %q: %w", stored.Name, err)
	}
	m.log.Debug("row merged", zap.String("name", stored.Name), zap.Stringer("outcome", Updated))
	return Updated, stored, nil
}
