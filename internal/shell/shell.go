// Package shell runs the interactive inventory menu. It reads one line at a
// time from its input, dispatches to the selected action, and loops until
// the user quits or input ends.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/stockroom/internal/clock"
	"github.com/mesh-intelligence/stockroom/internal/inventory"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

// DefaultStoreName is shown in the menu banner when none is configured.
const DefaultStoreName = "The Storensons' Store"

const clearSequence = "\033[H\033[2J"

var stars = strings.Repeat("*", 40)

// state is where control goes after an action finishes.
type state int

const (
	stateMenu state = iota
	stateQuit
)

// Action is one menu entry.
type Action struct {
	Key   string
	Label string
	Run   func(ctx context.Context) (state, error)
}

// Options holds the dependencies of a Shell.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Products types.ProductTable
	Merger   *inventory.Merger
	Clock    clock.Clock
	Logger   *zap.Logger

	StoreName   string
	BackupFile  string
	ClearScreen bool
}

// Shell is the interactive menu loop.
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	products types.ProductTable
	merger   *inventory.Merger
	clock    clock.Clock
	log      *zap.Logger

	storeName   string
	backupFile  string
	clearScreen bool

	actions []Action
	notice  string // shown once below the next menu
}

// New builds a Shell. Clock, Logger and StoreName fall back to defaults.
func New(opts Options) *Shell {
	s := &Shell{
		in:          bufio.NewScanner(opts.In),
		out:         opts.Out,
		products:    opts.Products,
		merger:      opts.Merger,
		clock:       opts.Clock,
		log:         opts.Logger,
		storeName:   opts.StoreName,
		backupFile:  opts.BackupFile,
		clearScreen: opts.ClearScreen,
	}
	if s.clock == nil {
		s.clock = clock.NewRealClock()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("shell")
	if s.storeName == "" {
		s.storeName = DefaultStoreName
	}

	s.actions = []Action{
		{Key: "v", Label: "View information on a product", Run: s.viewProduct},
		{Key: "e", Label: "View the full store inventory", Run: s.viewAll},
		{Key: "a", Label: "Add a product to the inventory", Run: s.addProduct},
		{Key: "b", Label: "Make a backup of the inventory database", Run: s.backup},
		{Key: "q", Label: "Quit", Run: s.quit},
	}
	return s
}

// Actions returns the menu entries in display order.
func (s *Shell) Actions() []Action {
	return s.actions
}

// Run shows the menu until the user quits. End of input counts as quitting.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.clear()
		s.printMenu()

		choice, err := s.prompt("Your Selection:  ")
		if err != nil {
			return s.finish(err)
		}
		choice = normalize(choice)

		action, ok := s.lookup(choice)
		if !ok {
			s.notice = fmt.Sprintf("The only options available are %s, please enter one of these.", s.keyList())
			s.log.Debug("unknown selection", zap.String("input", choice))
			continue
		}

		s.log.Debug("action selected", zap.String("key", action.Key))
		next, err := action.Run(ctx)
		if err != nil {
			return s.finish(err)
		}
		if next == stateQuit {
			return nil
		}
	}
}

// finish maps end of input to a normal quit.
func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.log.Info("input closed")
		s.farewell()
		return nil
	}
	return err
}

func (s *Shell) lookup(key string) (Action, bool) {
	for _, a := range s.actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// keyList renders the menu keys as "v/e/a/b/q".
func (s *Shell) keyList() string {
	keys := make([]string, len(s.actions))
	for i, a := range s.actions {
		keys[i] = a.Key
	}
	return strings.Join(keys, "/")
}

func (s *Shell) printMenu() {
	s.banner(fmt.Sprintf("Inventory for %s!", s.storeName))
	fmt.Fprintln(s.out, "Please make a selection from the menu below:")
	for _, a := range s.actions {
		fmt.Fprintf(s.out, "\n    %s) %s\n", a.Key, a.Label)
	}
	fmt.Fprintln(s.out)
	if s.notice != "" {
		fmt.Fprintf(s.out, "%s\n\n", s.notice)
		s.notice = ""
	}
}

// prompt writes label and reads one line. It returns io.EOF once input is
// exhausted.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		fmt.Fprintln(s.out)
		return "", io.EOF
	}
	return s.in.Text(), nil
}

// again asks a yes/no question; only "n" counts as no.
func (s *Shell) again(label string) (bool, error) {
	answer, err := s.prompt(label)
	if err != nil {
		return false, err
	}
	return normalize(answer) != "n", nil
}

func (s *Shell) banner(title string) {
	fmt.Fprintf(s.out, "\n    %s\n    %s\n    %s\n\n", stars, title, stars)
}

func (s *Shell) clear() {
	if s.clearScreen {
		fmt.Fprint(s.out, clearSequence)
	}
}

func (s *Shell) farewell() {
	fmt.Fprintf(s.out, "\n    %s\n    You are an Inventory Wizard!!\n    Have a great day!\n    %s\n\n", stars, stars)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
