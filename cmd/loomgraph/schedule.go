package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshharrison/loomgraph/internal/bd"
	"github.com/joshharrison/loomgraph/internal/cpm"
	"github.com/joshharrison/loomgraph/internal/durations"
	"github.com/joshharrison/loomgraph/internal/graph"
	"github.com/joshharrison/loomgraph/internal/log"
	"github.com/joshharrison/loomgraph/internal/reporter"
	"github.com/joshharrison/loomgraph/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDurations string
	flagFromBd    bool
)

func addDurationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagDurations, "durations", "d", "", "Durations file (.toml or .json), in days")
	cmd.Flags().BoolVar(&flagFromBd, "from-bd", false, "Use estimates of open bd tasks as durations")
}

// loadDurations returns the duration map the schedule commands run over.
func loadDurations(a *app) (map[string]float64, error) {
	switch {
	case flagDurations != "" && flagFromBd:
		return nil, fmt.Errorf("--durations and --from-bd are mutually exclusive")
	case flagDurations != "":
		return durations.LoadFile(flagDurations, a.cfg.MinutesPerDay)
	case flagFromBd:
		client := bd.NewClient(a.cfg.BdBin, a.cfg.BdDB)
		tasks, err := client.ListOpen()
		if err != nil {
			return nil, fmt.Errorf("list open tasks: %w", err)
		}
		return durations.FromEstimates(bd.Estimates(tasks), a.cfg.DefaultDuration, a.cfg.MinutesPerDay), nil
	}
	return nil, fmt.Errorf("no durations given (use --durations FILE or --from-bd)")
}

func topoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topo",
		Short: "Print tasks in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			durs, err := loadDurations(a)
			if err != nil {
				return err
			}

			order := cpm.TopologicalSort(a.store, durs)
			if flagJSON {
				return outputJSON(order)
			}
			for _, id := range order {
				fmt.Println(id)
			}
			if len(order) < len(durs) {
				return fmt.Errorf("%d of %d tasks are on a dependency cycle", len(durs)-len(order), len(durs))
			}
			return nil
		},
	}
	addDurationFlags(cmd)
	return cmd
}

func scheduleCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the CPM schedule (earliest/latest start, slack, waves)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			durs, err := loadDurations(a)
			if err != nil {
				return err
			}
			if flagJSON {
				flagFormat = "json"
			}

			result, err := cpm.Analyze(a.store, durs)
			if err != nil && !errors.Is(err, cpm.ErrCyclicSchedule) {
				return err
			}

			switch flagFormat {
			case "json":
				if outErr := outputJSON(result); outErr != nil {
					return outErr
				}
			case "dot":
				reporter.WriteDOT(os.Stdout, a.store.Dependencies(), result)
			case "table", "":
				reporter.PrintSchedule(os.Stdout, result)
			default:
				return fmt.Errorf("unsupported format %q (use table, dot or json)", flagFormat)
			}
			return err
		},
	}

	addDurationFlags(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", "table", "Output format: table, dot, json")
	return cmd
}

func criticalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Print the critical path task ids in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			durs, err := loadDurations(a)
			if err != nil {
				return err
			}

			path := cpm.GetCriticalPath(a.store, durs)
			if flagJSON {
				if path == nil {
					path = []string{}
				}
				return outputJSON(path)
			}
			reporter.PrintCriticalPath(os.Stdout, path)
			return nil
		},
	}
	addDurationFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	var flagUnchecked bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import blocking dependencies between open bd tasks",
		Long: `Reads open tasks and their dependencies from a Beads database and stores
each "X blocks Y" relationship. Edges that would create a cycle are reported
and skipped, unless --unchecked is given, in which case they are stored as-is
so that 'loomgraph cycles' can audit them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			logger := log.GetLogger()

			client := bd.NewClient(a.cfg.BdBin, a.cfg.BdDB)
			tasks, err := client.OpenTasksWithDeps(func(id string, err error) {
				logger.WithError(err).WithField("task", id).Warn("failed to fetch deps")
			})
			if err != nil {
				return err
			}

			open := make(map[string]bool, len(tasks))
			for _, t := range tasks {
				open[t.ID] = true
			}

			// Collect edges from both Blocks and BlockedBy for resilience.
			type edge struct{ from, to string }
			seen := make(map[edge]bool)
			var edges []edge
			addEdge := func(from, to string) {
				e := edge{from, to}
				if !open[from] || !open[to] || seen[e] {
					return
				}
				seen[e] = true
				edges = append(edges, e)
			}
			for _, t := range tasks {
				for _, blocker := range t.BlockedBy {
					addEdge(blocker, t.ID)
				}
				for _, blocked := range t.Blocks {
					addEdge(t.ID, blocked)
				}
			}

			created, existing, rejected := 0, 0, 0
			for _, e := range edges {
				if hasEdge(a.store, e.from, e.to) {
					existing++
					continue
				}
				if flagUnchecked {
					_, err = a.store.AddUnchecked(e.from, e.to, graph.Blocks, "bd-import")
				} else {
					_, err = a.store.CreateDependency(e.from, e.to, graph.Blocks, "bd-import")
				}
				if errors.Is(err, graph.ErrCycle) {
					rejected++
					if !flagJSON {
						fmt.Printf("  %s %v\n", ui.Yellow("⏭️  SKIP:"), err)
					}
					continue
				}
				if err != nil {
					return err
				}
				created++
			}

			if err := a.save(); err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"tasks":    len(tasks),
				"created":  created,
				"existing": existing,
				"rejected": rejected,
			}).Info("bd import finished")

			if flagJSON {
				return outputJSON(map[string]int{
					"tasks": len(tasks), "created": created, "existing": existing, "rejected": rejected,
				})
			}
			fmt.Printf("🏁 Imported %s dependencies from %s open tasks (%d already present, %d refused)\n",
				ui.BoldGreen(created), ui.Bold(len(tasks)), existing, rejected)
			if rejected > 0 {
				fmt.Printf("   %s\n", ui.Dim("Use --unchecked to store refused edges for auditing with 'loomgraph cycles'."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagUnchecked, "unchecked", false, "Store edges without cycle checks")
	return cmd
}

// hasEdge reports whether a blocking edge from -> to is already stored, in
// either of its two spellings.
func hasEdge(s *graph.SyncStore, from, to string) bool {
	for _, d := range s.Blocked(from) {
		if d.Successor() == to {
			return true
		}
	}
	return false
}
