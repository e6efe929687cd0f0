package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// rowFields is the number of fields in every data row.
const rowFields = 4

// ErrUnknownEncoding is returned for an encoding name x/text does not know.
var ErrUnknownEncoding = errors.New("unknown encoding")

// ReadRows reads an inventory file: a header row, which is skipped, followed
// by rows of name, price, quantity and date. encoding names the file's
// character set (for example "windows-1251"); empty means UTF-8. A UTF-8
// byte order mark is dropped.
func ReadRows(r io.Reader, encoding string) ([]types.Row, error) {
	dec, err := decoder(encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1

	rows := []types.Row{}
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		if len(rec) != rowFields {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, rowFields, len(rec))
		}
		rows = append(rows, types.Row{
			Name:     rec[0],
			Price:    rec[1],
			Quantity: rec[2],
			Date:     rec[3],
		})
	}
	return rows, nil
}

// ImportFile reads the inventory file at path and merges every row.
func (m *Merger) ImportFile(ctx context.Context, path, encoding string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f, encoding)
	if err != nil {
		return Summary{}, err
	}
	return m.Merge(ctx, rows)
}

// decoder returns the transformer that converts the named encoding to UTF-8.
func decoder(name string) (transform.Transformer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoding, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	return enc.NewDecoder(), nil
}
