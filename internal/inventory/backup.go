package inventory

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// BackupHeader is the first row of every backup file.
var BackupHeader = []string{"product_name", "product_price", "product_quantity", "date_updated"}

// WriteBackup writes products as CSV with BackupHeader. Prices are written
// in cents and dates as MM/DD/YYYY, so the output can be imported again.
func WriteBackup(w io.Writer, products []*types.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BackupHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range products {
		rec := []string{
			p.Name,
			strconv.FormatInt(p.Price, 10),
			strconv.FormatInt(p.Quantity, 10),
			FormatDate(p.LastUpdated),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BackupFile writes every stored product, in identifier order, to path.
// An existing file is replaced only once the new one is complete. Returns
// the number of products written.
func BackupFile(ctx context.Context, products types.ProductTable, path string) (int, error) {
	all, err := products.List(ctx, types.OrderAsc)
	if err != nil {
		return 0, fmt.Errorf("listing products: %w", err)
	}
	err = writeFileAtomic(path, func(w io.Writer) error {
		return WriteBackup(w, all)
	})
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// writeFileAtomic writes path using the temp-file, fsync, rename pattern.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
