package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/stockroom/internal/inventory"
	"github.com/mesh-intelligence/stockroom/internal/logging"
	"github.com/mesh-intelligence/stockroom/internal/shell"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
	"github.com/mesh-intelligence/stockroom/pkg/stockroom"
)

var stars = strings.Repeat("*", 40)

// runShell attaches the store, merges the import file and hands control to
// the interactive menu until the user quits.
func runShell(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := loadSettings(flags)
	if err != nil {
		return exitError(exitSysError, "config: %w", err)
	}

	log, err := logging.New(s.log)
	if err != nil {
		return exitError(exitSysError, "logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck
	log = log.With(zap.String("session", newSessionID()))
	log.Info("starting",
		zap.String("version", stockroom.Version),
		zap.String("config_dir", s.configDir),
		zap.String("data_dir", s.dataDir),
	)

	fmt.Fprintf(out, "\n    %s\n              Loading ...\n    %s\n\n", stars, stars)

	backend := sqlite.NewBackend(log)
	if err := backend.Attach(s.storeConfig()); err != nil {
		return exitError(exitSysError, "attach store: %w", err)
	}
	defer backend.Detach()

	products, err := backend.Products()
	if err != nil {
		return exitError(exitSysError, "open products: %w", err)
	}
	merger := inventory.NewMerger(products, log)

	if s.importFile != "" {
		summary, err := merger.ImportFile(ctx, s.importFile, s.importEncoding)
		if err != nil {
			log.Error("import failed", zap.String("path", s.importFile), zap.Error(err))
			return exitError(exitSysError, "import %s: %w", s.importFile, err)
		}
		fmt.Fprintf(out, "    Imported %d rows: %d added, %d updated, %d unchanged.\n\n",
			summary.Total(), summary.Created, summary.Updated, summary.Skipped)
	}

	sh := shell.New(shell.Options{
		In:          cmd.InOrStdin(),
		Out:         out,
		Products:    products,
		Merger:      merger,
		Logger:      log,
		StoreName:   s.storeName,
		BackupFile:  s.backupFile,
		ClearScreen: s.clearScreen && isTerminal(out),
	})
	if err := sh.Run(ctx); err != nil {
		log.Error("shell stopped", zap.Error(err))
		return exitError(exitSysError, "shell: %w", err)
	}
	log.Info("quit")
	return nil
}

// newSessionID tags every log line of one run.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
