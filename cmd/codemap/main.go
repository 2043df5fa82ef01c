// Command codemap is a thin example front end over the indexing library
// (package lifecycle). It is deliberately minimal: the CLI/transport layer
// is out of core scope (spec.md §1) and exists here only to exercise the
// library surface end to end, the way the teacher's cmd/lci wires its own
// MasterIndex.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/symbolmap/codemap/internal/broadcast"
	"github.com/symbolmap/codemap/internal/config"
	"github.com/symbolmap/codemap/internal/debug"
	"github.com/symbolmap/codemap/internal/lifecycle"
	"github.com/symbolmap/codemap/internal/types"
	"github.com/symbolmap/codemap/internal/version"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "codemap",
		Usage:   "Incremental code-indexing engine",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root to index",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Index the project root and watch it for changes until interrupted",
				Action: serveCommand,
			},
			{
				Name:   "scan",
				Usage:  "Run one cold-start index and print a status summary",
				Action: scanCommand,
			},
			{
				Name:   "tree",
				Usage:  "Print the project tree as JSON",
				Action: treeCommand,
			},
			{
				Name:      "search",
				Usage:     "Search indexed symbols",
				ArgsUsage: "<term>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: searchCommand,
			},
			{
				Name:   "status",
				Usage:  "Print engine status as JSON",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "codemap: %v\n", err)
		os.Exit(1)
	}
}

// rootSettings loads on-disk settings for c's --root flag, falling back to
// defaults exactly as lifecycle.New's cold-start protocol expects.
func rootSettings(c *cli.Context) (types.AppSettings, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return types.AppSettings{}, fmt.Errorf("resolve root: %w", err)
	}
	settings, _, err := config.LoadSettings(root)
	if err != nil {
		debug.LogLifecycle("settings load error, using defaults: %v", err)
	}
	settings.RootPath = root
	return settings, nil
}

func newService(c *cli.Context) (*lifecycle.Service, error) {
	settings, err := rootSettings(c)
	if err != nil {
		return nil, err
	}
	return lifecycle.New(settings)
}

// serveCommand runs a Service with a Broadcaster wired to its update hook,
// printing each committed batch until SIGINT/SIGTERM.
func serveCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Close()

	bc := broadcast.New(broadcast.DefaultQueueSize)
	svc.SetOnUpdate(func(updated, deleted []string) {
		if len(updated) > 0 {
			bc.Publish(types.UpdateEvent{Kind: types.BroadcastUpdate, Paths: updated})
		}
		if len(deleted) > 0 {
			bc.Publish(types.UpdateEvent{Kind: types.BroadcastDeleted, Paths: deleted})
		}
		if len(updated) == 0 && len(deleted) == 0 {
			// Both nil signals a root-reconfiguration reset (spec.md §4.8
			// step 4): the old tree is gone entirely, so tell subscribers
			// to pull full state instead of publishing nothing.
			bc.Publish(types.UpdateEvent{Kind: types.BroadcastRefresh})
		}
	})

	sub := bc.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "codemap: watching %s (ctrl-c to stop)\n", c.String("root"))

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			fmt.Printf("[%s] %d path(s)\n", eventKindLabel(ev.Kind), len(ev.Paths))
		case <-ctx.Done():
			return nil
		}
	}
}

func eventKindLabel(k types.UpdateKind) string {
	switch k {
	case types.BroadcastUpdate:
		return "updated"
	case types.BroadcastDeleted:
		return "deleted"
	default:
		return "refresh"
	}
}

func scanCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	// A freshly constructed Service kicks off its full scan asynchronously;
	// poll status until it reports at least one indexed file or a completed
	// full scan, bounded so this command can't hang indefinitely on a huge
	// tree.
	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		st := svc.Status()
		if st.FilesIndexed > 0 || !st.LastFullScan.IsZero() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	return printJSON(svc.Status())
}

func treeCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()
	return printJSON(svc.Tree())
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: codemap search <term>")
	}
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()
	return printJSON(svc.Search(c.Args().First(), c.Int("limit")))
}

func statusCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()
	return printJSON(svc.Status())
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
