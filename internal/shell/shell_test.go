package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stockroom/internal/clock"
	"github.com/mesh-intelligence/stockroom/internal/inventory"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

type fixture struct {
	products types.ProductTable
	merger   *inventory.Merger
	clock    *clock.MockClock
	backup   string
	out      bytes.Buffer
}

func newFixture(t *testing.T, seed ...types.Row) *fixture {
	t.Helper()
	b := sqlite.NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })

	products, err := b.Products()
	require.NoError(t, err)

	f := &fixture{
		products: products,
		merger:   inventory.NewMerger(products, nil),
		clock:    clock.NewMockClock(time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)),
		backup:   filepath.Join(t.TempDir(), "backup.csv"),
	}
	_, err = f.merger.Merge(context.Background(), seed)
	require.NoError(t, err)
	return f
}

// run feeds input to a fresh shell and returns everything it printed.
func (f *fixture) run(t *testing.T, input string) string {
	t.Helper()
	f.out.Reset()
	sh := New(Options{
		In:         strings.NewReader(input),
		Out:        &f.out,
		Products:   f.products,
		Merger:     f.merger,
		Clock:      f.clock,
		BackupFile: f.backup,
	})
	require.NoError(t, sh.Run(context.Background()))
	return f.out.String()
}

func seedRows() []types.Row {
	return []types.Row{
		{Name: "A", Price: "$5.00", Quantity: "3", Date: "01/01/2024"},
		{Name: "B", Price: "$6.00", Quantity: "4", Date: "01/02/2024"},
	}
}

func TestShellMenu(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "quit",
			input:    "q\n",
			contains: []string{"Inventory for The Storensons' Store!", "v) View information on a product", "You are an Inventory Wizard!!"},
		},
		{
			name:     "input is trimmed and lower-cased",
			input:    "  Q \n",
			contains: []string{"You are an Inventory Wizard!!"},
		},
		{
			name:     "unknown selection redraws the menu",
			input:    "x\nq\n",
			contains: []string{"The only options available are v/e/a/b/q, please enter one of these."},
		},
		{
			name:     "end of input quits",
			input:    "",
			contains: []string{"Your Selection:  ", "You are an Inventory Wizard!!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newFixture(t).run(t, tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestShellMenuOrder(t *testing.T) {
	sh := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}})

	var keys []string
	for _, a := range sh.Actions() {
		keys = append(keys, a.Key)
		assert.NotEmpty(t, a.Label)
	}
	assert.Equal(t, []string{"v", "e", "a", "b", "q"}, keys)
}

func TestShellUnknownSelectionShownOnce(t *testing.T) {
	out := newFixture(t).run(t, "x\nq\n")
	assert.Equal(t, 1, strings.Count(out, "The only options available are"))
	assert.Equal(t, 2, strings.Count(out, "Your Selection:  "))
}

func TestShellViewProduct(t *testing.T) {
	f := newFixture(t, seedRows()...)
	out := f.run(t, "v\nabc\n99\n1\ny\n2\nn\nq\n")

	assert.Equal(t, 2, strings.Count(out, "Selection out of range.  There are 2 items in inventory (highest ID 2)."))
	assert.Contains(t, out, "Name:  A\n    Price:  500 ($5.00)\n    3 in Stock\n    Entry Date: 2024-01-01")
	assert.Contains(t, out, "Name:  B")
	assert.Contains(t, out, "You are an Inventory Wizard!!")
}

func TestShellViewProductEmptyStore(t *testing.T) {
	out := newFixture(t).run(t, "v\n1\n")
	assert.Contains(t, out, "There are 0 items in inventory.")
}

func TestShellViewAll(t *testing.T) {
	t.Run("returns to menu", func(t *testing.T) {
		out := newFixture(t, seedRows()...).run(t, "e\ny\nq\n")
		assert.Contains(t, out, "- A, 3, 500, 2024-01-01\n- B, 4, 600, 2024-01-02\n")
		assert.Equal(t, 2, strings.Count(out, "Your Selection:  "))
	})

	t.Run("declining exits", func(t *testing.T) {
		out := newFixture(t, seedRows()...).run(t, "e\nn\n")
		assert.Equal(t, 1, strings.Count(out, "Your Selection:  "))
		assert.Contains(t, out, "You are an Inventory Wizard!!")
	})
}

func TestShellAddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("re-prompts on bad numbers", func(t *testing.T) {
		f := newFixture(t)
		out := f.run(t, "a\n\nWidget\nlots\n3\n$12.99\n-4\n1299\nn\nq\n")

		assert.Contains(t, out, "Please enter a product name.")
		assert.Contains(t, out, "Please enter only numeral values for quantity.")
		assert.Equal(t, 2, strings.Count(out, "Please enter only numeral values for price."))
		assert.Contains(t, out, "--- Inventory Updated ---")
		assert.Contains(t, out, "Added Widget as product 1.")

		got, err := f.products.FindByName(ctx, "Widget")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.Quantity)
		assert.Equal(t, int64(1299), got.Price)
		assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), got.LastUpdated)
	})

	t.Run("existing name is updated with today's date", func(t *testing.T) {
		f := newFixture(t, seedRows()...)
		out := f.run(t, "a\nA\n10\n700\nn\nq\n")
		assert.Contains(t, out, "Updated product 1, A.")

		got, err := f.products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.Quantity)
		assert.Equal(t, int64(700), got.Price)
		assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), got.LastUpdated)
	})

	t.Run("newer stored entry is kept", func(t *testing.T) {
		f := newFixture(t, types.Row{Name: "A", Price: "1", Quantity: "1", Date: "12/31/2030"})
		out := f.run(t, "a\nA\n10\n700\nn\nq\n")
		assert.Contains(t, out, "Kept product 1, A: the stored entry is newer.")

		got, err := f.products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Price)
	})

	t.Run("adds several and only merges the new row", func(t *testing.T) {
		f := newFixture(t)
		out := f.run(t, "a\nA\n1\n100\ny\nB\n2\n200\nn\nq\n")
		assert.Contains(t, out, "Added A as product 1.")
		assert.Contains(t, out, "Added B as product 2.")
		assert.NotContains(t, out, "Updated product")

		n, err := f.products.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestShellBackup(t *testing.T) {
	t.Run("writes the whole store", func(t *testing.T) {
		f := newFixture(t, seedRows()...)
		out := f.run(t, "b\ny\nq\n")
		assert.Contains(t, out, "Backup Successful!")
		assert.Contains(t, out, "2 products written to "+f.backup)

		data, err := os.ReadFile(f.backup)
		require.NoError(t, err)
		assert.Equal(t,
			"product_name,product_price,product_quantity,date_updated\nA,500,3,01/01/2024\nB,600,4,01/02/2024\n",
			string(data))
	})

	t.Run("declining exits", func(t *testing.T) {
		out := newFixture(t, seedRows()...).run(t, "b\nn\n")
		assert.Equal(t, 1, strings.Count(out, "Your Selection:  "))
	})

	t.Run("failure is reported and the menu continues", func(t *testing.T) {
		f := newFixture(t, seedRows()...)
		f.backup = filepath.Join(t.TempDir(), "missing", "backup.csv")
		out := f.run(t, "b\nq\n")
		assert.Contains(t, out, "Backup failed: ")
		assert.NotContains(t, out, "Backup Successful!")
		assert.Equal(t, 2, strings.Count(out, "Your Selection:  "))
	})
}

func TestShellClearScreen(t *testing.T) {
	var out bytes.Buffer
	sh := New(Options{In: strings.NewReader("q\n"), Out: &out, ClearScreen: true})
	require.NoError(t, sh.Run(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), clearSequence))
}

func TestShellCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sh := New(Options{In: strings.NewReader("q\n"), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, sh.Run(ctx), context.Canceled)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$12.99", formatPrice(1299))
	assert.Equal(t, "$0.05", formatPrice(5))
	assert.Equal(t, "$0.00", formatPrice(0))
}
