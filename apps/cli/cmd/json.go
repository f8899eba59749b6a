package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
	"github.com/abdul-hamid-achik/hitcore/packages/schema"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	jsonWatchFlag bool
	jsonTypeFlag  string
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Navigate, validate and compare JSON documents",
	Long: `Read a JSON document from a file, or from stdin when the file is "-" or
omitted, and work with it.

Examples:
  hitcore json get items.0.name response.json
  curl -s https://api.example.com/users | hitcore json find email
  hitcore json search id response.json --type int
  hitcore json validate user.schema.json response.json --watch
  hitcore json diff before.json after.json`,
}

var jsonGetCmd = &cobra.Command{
	Use:   "get <path> [file]",
	Short: "Print the value at a dotted path such as items.0.name",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJSON(cmd, fileArg(args, 1), func(doc *jsondoc.Document) error {
			v, err := doc.Get(jsondoc.ParsePath(args[0])...)
			if err != nil {
				return reqerr.From(err)
			}
			return printValue(args[0], v)
		})
	},
}

var jsonFindCmd = &cobra.Command{
	Use:   "find <key> [file]",
	Short: "Print the value of a member of the top-level object",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJSON(cmd, fileArg(args, 1), func(doc *jsondoc.Document) error {
			v, err := doc.Find(args[0])
			if err != nil {
				return reqerr.From(err)
			}
			return printValue(args[0], v)
		})
	},
}

var jsonSearchCmd = &cobra.Command{
	Use:   "search <key> [file]",
	Short: "Print the first value anywhere in the document stored under key",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJSON(cmd, fileArg(args, 1), func(doc *jsondoc.Document) error {
			v, err := doc.Search(args[0])
			if err != nil {
				return reqerr.From(err)
			}
			return printValue(args[0], v)
		})
	},
}

var jsonValidateCmd = &cobra.Command{
	Use:   "validate <schema> [file]",
	Short: "Check a document against a JSON Schema",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.CompileFile(args[0])
		if err != nil {
			return &usageError{err: err}
		}
		return runJSON(cmd, fileArg(args, 1), func(doc *jsondoc.Document) error {
			if err := s.Validate([]byte(doc.String())); err != nil {
				return report(ExitFailure, err)
			}
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s document matches %s\n", green("✓"), args[0])
			return nil
		})
	},
}

var jsonDiffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two documents, ignoring object member order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}
		b, err := loadDocument(cmd, args[1])
		if err != nil {
			return err
		}

		if a.Equal(b) {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s documents are equal\n", green("✓"))
			return nil
		}
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s documents differ\n", red("✗"))
		fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n%s\n+++ %s\n%s\n", args[0], a, args[1], b)
		return &reportedError{code: ExitFailure, err: fmt.Errorf("%s and %s differ", args[0], args[1])}
	},
}

func init() {
	for _, c := range []*cobra.Command{jsonGetCmd, jsonFindCmd, jsonSearchCmd, jsonValidateCmd} {
		c.Flags().BoolVarP(&jsonWatchFlag, "watch", "w", false, "Re-run when the file changes")
	}
	for _, c := range []*cobra.Command{jsonGetCmd, jsonFindCmd, jsonSearchCmd} {
		c.Flags().StringVarP(&jsonTypeFlag, "type", "t", "", "Require the value to be one of: null, bool, number, int, string, array, object")
	}

	jsonCmd.AddCommand(jsonGetCmd, jsonFindCmd, jsonSearchCmd, jsonValidateCmd, jsonDiffCmd)
}

func fileArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "-"
}

// printValue checks --type and hands the value to the formatter.
func printValue(path string, v jsondoc.Value) error {
	if err := checkType(v, jsonTypeFlag); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			return err
		}
		return reqerr.From(err)
	}
	current.formatter.FormatValue(path, v)
	return nil
}

func checkType(v jsondoc.Value, want string) error {
	var err error
	switch want {
	case "":
	case "null":
		err = v.AsNull()
	case "bool":
		_, err = v.AsBool()
	case "number":
		_, err = v.AsNumber()
	case "int":
		_, err = v.AsInt()
	case "string":
		_, err = v.AsString()
	case "array":
		_, err = v.AsArray()
	case "object":
		_, err = v.AsObject()
	default:
		return &usageError{err: fmt.Errorf("unknown --type %q", want)}
	}
	return err
}

func loadDocument(cmd *cobra.Command, path string) (*jsondoc.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &usageError{err: err}
	}

	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, reqerr.From(err)
	}
	current.logger.Debug("parsed document", "path", path, "bytes", len(data))
	return doc, nil
}

// runJSON loads the document and applies fn, then keeps doing so on every
// write when --watch is set.
func runJSON(cmd *cobra.Command, path string, fn func(*jsondoc.Document) error) error {
	once := func() error {
		doc, err := loadDocument(cmd, path)
		if err != nil {
			return err
		}
		return fn(doc)
	}

	if !jsonWatchFlag {
		return once()
	}
	if path == "-" {
		return &usageError{err: fmt.Errorf("--watch needs a file, not stdin")}
	}

	rerun := func() {
		if err := once(); err != nil {
			var reported *reportedError
			if !errors.As(err, &reported) {
				current.formatter.FormatError(err)
			}
		}
	}
	rerun()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchFile(ctx, cmd.OutOrStdout(), path, rerun)
}

// watchFile calls fn after writes to path settle, until ctx is done.
func watchFile(ctx context.Context, out io.Writer, path string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(out, "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", path)

	// Debounce timer for rapid file changes. fn only runs from this loop,
	// so runs never overlap and none outlive the return.
	var debounceTimer *time.Timer
	var fire <-chan time.Time
	changed := ""
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			changed = event.Name
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(WatchDebounceDelay)
			} else {
				debounceTimer.Reset(WatchDebounceDelay)
			}
			fire = debounceTimer.C

		case <-fire:
			fire = nil
			fmt.Fprintf(out, "\nFile changed: %s\n", changed)
			fn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			current.logger.Warn("watcher error", "error", err)
		}
	}
}
