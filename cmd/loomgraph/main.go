package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joshharrison/loomgraph/internal/config"
	"github.com/joshharrison/loomgraph/internal/graph"
	"github.com/joshharrison/loomgraph/internal/log"
	"github.com/joshharrison/loomgraph/internal/reporter"
	"github.com/joshharrison/loomgraph/internal/state"
	"github.com/joshharrison/loomgraph/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagStateDir string
	flagDB       string
	flagLogLevel string
	flagJSON     bool
	flagNoColor  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loomgraph",
		Short: "Track task dependencies and compute critical path schedules",
		Long: `Loomgraph stores blocking and informational relationships between tasks,
refuses blocking edges that would form a cycle, and computes Critical Path
Method schedules (earliest/latest start, slack, critical path) from a map of
task durations.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default .loomgraph/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "Directory holding the dependency snapshot")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Beads database path for import and --from-bd")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(depCmd())
	rootCmd.AddCommand(blockersCmd())
	rootCmd.AddCommand(blockedCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(topoCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(criticalCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the per-invocation context shared by every command.
type app struct {
	cfg   config.Config
	repo  *state.Repo
	store *graph.SyncStore
}

// setup loads config, applies flag overrides and restores the snapshot.
func setup() (*app, error) {
	cfg, err := config.Load(flagConfig, flagConfig != "")
	if err != nil {
		return nil, err
	}
	if flagStateDir != "" {
		cfg.StateDir = flagStateDir
	}
	if flagDB != "" {
		cfg.BdDB = flagDB
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if flagNoColor {
		ui.SetColor(false)
	}

	repo := state.Open(cfg.StateDir)
	s, err := repo.Load()
	if err != nil {
		return nil, err
	}
	log.GetLogger().WithField("dependencies", s.Len()).Debug("loaded dependency snapshot")

	return &app{cfg: cfg, repo: repo, store: graph.NewSyncStore(s)}, nil
}

func (a *app) save() error {
	if err := a.repo.Save(a.store); err != nil {
		return fmt.Errorf("save dependencies: %w", err)
	}
	return nil
}

func depCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Create, delete and inspect dependencies",
	}
	cmd.AddCommand(depAddCmd())
	cmd.AddCommand(depRmCmd())
	cmd.AddCommand(depShowCmd())
	cmd.AddCommand(depListCmd())
	return cmd
}

func depAddCmd() *cobra.Command {
	var (
		flagType string
		flagBy   string
	)

	cmd := &cobra.Command{
		Use:   "add <from> <to>",
		Short: "Add a dependency (default: <from> blocks <to>)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := graph.ParseDependencyType(flagType)
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			by := flagBy
			if by == "" {
				by = a.cfg.Actor
			}

			id, err := a.store.CreateDependency(args[0], args[1], typ, by)
			if err != nil {
				var cycleErr *graph.CycleError
				if errors.As(err, &cycleErr) && !flagJSON {
					fmt.Fprintf(os.Stderr, "🔁 %s\n", ui.BoldRed("Refused: would create a dependency cycle"))
				}
				return err
			}
			if err := a.save(); err != nil {
				return err
			}

			d, _ := a.store.GetDependency(id)
			if flagJSON {
				return outputJSON(d)
			}
			fmt.Printf("%s %s\n", ui.Green("✅ Added"), d)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagType, "type", "t", "blocks", "Dependency type: blocks, blocked-by, relates-to, duplicates")
	cmd.Flags().StringVar(&flagBy, "by", "", "Recorded creator (default: config actor)")

	return cmd
}

func depRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}

			d, ok := a.store.DeleteDependency(id)
			if !ok {
				return &graph.NotFoundError{ID: id}
			}
			if err := a.save(); err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(d)
			}
			fmt.Printf("%s %s\n", ui.Yellow("🗑  Removed"), d)
			return nil
		},
	}
}

func depShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			d, err := a.store.Lookup(id)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(d)
			}
			reporter.PrintDependencies(os.Stdout, []graph.Dependency{d})
			fmt.Printf("  %s %s\n", ui.Dim("created"), d.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func depListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [task]",
		Short: "List all dependencies, or those touching a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			var deps []graph.Dependency
			if len(args) == 1 {
				deps = a.store.DependenciesForTask(args[0])
			} else {
				deps = a.store.Dependencies()
			}
			return printDeps(deps)
		},
	}
}

func blockersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blockers <task>",
		Short: "Show the dependencies that must finish before a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			return printDeps(a.store.Blockers(args[0]))
		},
	}
}

func blockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocked <task>",
		Short: "Show the dependencies waiting on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			return printDeps(a.store.Blocked(args[0]))
		},
	}
}

func cyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Scan the stored graph for dependency cycles",
		Long: `Scans every stored dependency for blocking cycles. New edges are checked
when they are added, so cycles only appear in state that was imported with
--unchecked or edited by hand. Exits non-zero when a cycle is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			cycles := a.store.DetectCycles()
			if flagJSON {
				if cycles == nil {
					cycles = [][]string{}
				}
				if err := outputJSON(cycles); err != nil {
					return err
				}
			} else {
				reporter.PrintCycles(os.Stdout, cycles)
			}
			if len(cycles) > 0 {
				return fmt.Errorf("%d dependency cycle(s) found", len(cycles))
			}
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var flagForce bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored dependency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flagForce {
				return fmt.Errorf("reset deletes all dependencies; pass --force to confirm")
			}
			a, err := setup()
			if err != nil {
				return err
			}
			if err := a.repo.Clean(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Printf("%s %s\n", ui.Yellow("🧹 Removed"), a.repo.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagForce, "force", false, "Confirm deletion")
	return cmd
}

// --- Output helpers ---

func printDeps(deps []graph.Dependency) error {
	if flagJSON {
		if deps == nil {
			deps = []graph.Dependency{}
		}
		return outputJSON(deps)
	}
	reporter.PrintDependencies(os.Stdout, deps)
	return nil
}

func outputJSON(v interface{}) error {
	data, err := reporter.JSON(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dependency id %q", s)
	}
	return id, nil
}
