package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/stockroom/internal/inventory"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// viewProduct looks products up by ID until the user answers "n".
func (s *Shell) viewProduct(ctx context.Context) (state, error) {
	s.clear()
	s.banner("View Product Details")

	for {
		raw, err := s.prompt("Please enter the Product ID:  ")
		if err != nil {
			return stateMenu, err
		}

		p, err := s.findByID(ctx, raw)
		if errors.Is(err, types.ErrNotFound) {
			if err := s.reportOutOfRange(ctx); err != nil {
				return stateMenu, err
			}
			continue
		}
		if err != nil {
			return stateMenu, err
		}

		fmt.Fprintf(s.out, "\n    Name:  %s\n    Price:  %d (%s)\n    %d in Stock\n    Entry Date: %s\n\n",
			p.Name, p.Price, formatPrice(p.Price), p.Quantity, p.LastUpdated.Format(types.DateLayout))

		more, err := s.again("View another Product? (y/n)  ")
		if err != nil {
			return stateMenu, err
		}
		if !more {
			return stateMenu, nil
		}
	}
}

// findByID parses raw and loads the product. Unparseable and out-of-range
// input both report ErrNotFound.
func (s *Shell) findByID(ctx context.Context, raw string) (*types.Product, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return nil, types.ErrNotFound
	}
	return s.products.FindByID(ctx, id)
}

// reportOutOfRange tells the user how many products exist. The store is
// read newest first so the highest ID is the first entry.
func (s *Shell) reportOutOfRange(ctx context.Context) error {
	all, err := s.products.List(ctx, types.OrderDesc)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprint(s.out, "\nSelection out of range.  There are 0 items in inventory.\n\n")
		return nil
	}
	fmt.Fprintf(s.out, "\nSelection out of range.  There are %d items in inventory (highest ID %d).\nPlease enter only numeral values.\n\n",
		len(all), all[0].ID)
	return nil
}

// viewAll prints every product in ID order.
func (s *Shell) viewAll(ctx context.Context) (state, error) {
	s.clear()
	s.banner("Current Inventory")

	all, err := s.products.List(ctx, types.OrderAsc)
	if err != nil {
		return stateMenu, err
	}
	for _, p := range all {
		fmt.Fprintf(s.out, "- %s, %d, %d, %s\n", p.Name, p.Quantity, p.Price, p.LastUpdated.Format(types.DateLayout))
	}

	return s.returnToMenu()
}

// addProduct prompts for products and merges each one, dated today.
func (s *Shell) addProduct(ctx context.Context) (state, error) {
	s.clear()
	s.banner("Add a Product")

	for {
		name, err := s.promptName()
		if err != nil {
			return stateMenu, err
		}
		quantity, err := s.promptAmount("Enter the number of available units:  ", "quantity")
		if err != nil {
			return stateMenu, err
		}
		price, err := s.promptAmount("Enter the price in cents.  (e.g., $12.99 = 1299):  ", "price")
		if err != nil {
			return stateMenu, err
		}

		row := types.Row{
			Name:     name,
			Price:    strconv.FormatInt(price, 10),
			Quantity: strconv.FormatInt(quantity, 10),
			Date:     inventory.FormatDate(s.clock.Now()),
		}
		outcome, stored, err := s.merger.MergeOne(ctx, row)
		if err != nil {
			return stateMenu, fmt.Errorf("adding %q: %w", name, err)
		}
		s.log.Info("product added",
			zap.String("name", stored.Name),
			zap.Int64("id", stored.ID),
			zap.Stringer("outcome", outcome),
		)

		fmt.Fprint(s.out, "\n--- Inventory Updated ---\n\n")
		switch outcome {
		case inventory.Created:
			fmt.Fprintf(s.out, "Added %s as product %d.\n", stored.Name, stored.ID)
		case inventory.Updated:
			fmt.Fprintf(s.out, "Updated product %d, %s.\n", stored.ID, stored.Name)
		case inventory.Skipped:
			fmt.Fprintf(s.out, "Kept product %d, %s: the stored entry is newer.\n", stored.ID, stored.Name)
		}

		more, err := s.again("\nAdd another item? (y/n)  ")
		if err != nil {
			return stateMenu, err
		}
		fmt.Fprintln(s.out)
		if !more {
			return stateMenu, nil
		}
	}
}

func (s *Shell) promptName() (string, error) {
	for {
		name, err := s.prompt("Enter the product name:  ")
		if err != nil {
			return "", err
		}
		if name = strings.TrimSpace(name); name != "" {
			return name, nil
		}
		fmt.Fprint(s.out, "\nPlease enter a product name.\n\n")
	}
}

// promptAmount re-prompts until the input is a non-negative integer.
func (s *Shell) promptAmount(label, field string) (int64, error) {
	for {
		raw, err := s.prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintf(s.out, "\nPlease enter only numeral values for %s.\n\n", field)
	}
}

// backup writes the whole store to the backup file.
func (s *Shell) backup(ctx context.Context) (state, error) {
	s.clear()

	n, err := inventory.BackupFile(ctx, s.products, s.backupFile)
	if err != nil {
		s.log.Error("backup failed", zap.String("path", s.backupFile), zap.Error(err))
		s.notice = fmt.Sprintf("Backup failed: %v", err)
		return stateMenu, nil
	}
	s.log.Info("backup written", zap.String("path", s.backupFile), zap.Int("products", n))

	s.banner("Backup Successful!")
	fmt.Fprintf(s.out, "%d products written to %s\n\n", n, s.backupFile)

	return s.returnToMenu()
}

func (s *Shell) quit(context.Context) (state, error) {
	s.farewell()
	return stateQuit, nil
}

// returnToMenu asks whether to go back to the menu; "n" quits.
func (s *Shell) returnToMenu() (state, error) {
	more, err := s.again("\nWould you like to return to the main menu? (y/n)  ")
	if err != nil {
		return stateMenu, err
	}
	if !more {
		s.farewell()
		return stateQuit, nil
	}
	return stateMenu, nil
}

// formatPrice renders cents as dollars, 1299 as "$12.99".
func formatPrice(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}
