package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/leengari/mini-optimizer/internal/catalog"
	"github.com/leengari/mini-optimizer/internal/config"
	"github.com/leengari/mini-optimizer/internal/domain/transaction"
	"github.com/leengari/mini-optimizer/internal/logging"
	"github.com/leengari/mini-optimizer/internal/plan"
	"github.com/leengari/mini-optimizer/internal/planner"
	"github.com/leengari/mini-optimizer/internal/stats"
)

var (
	catalogDir string
	configPath string
	scanDecls  []string
	filters    []string
	joins      []string
	dotOutput  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "optimizer",
		Short:         "Cost-based query plan optimizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Optimize a declared query and print the chosen plan",
		RunE:  runExplain,
	}
	explainCmd.Flags().StringVar(&catalogDir, "catalog", "catalog", "directory of table subdirectories (meta.json + data.json)")
	explainCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	explainCmd.Flags().StringArrayVar(&scanDecls, "scan", nil, "relation to scan, as table or table:alias")
	explainCmd.Flags().StringArrayVar(&filters, "filter", nil, "single-table predicate, e.g. 'e.salary>50000'")
	explainCmd.Flags().StringArrayVar(&joins, "join", nil, "equality join condition, e.g. 'a.id=b.a_id'")
	explainCmd.Flags().BoolVar(&dotOutput, "dot", false, "also print the plan as a Graphviz digraph")
	rootCmd.AddCommand(explainCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger, closeFn := logging.SetupLogger(cfg.SeqEndpoint)
	defer closeFn()

	cat, err := catalog.LoadDir(catalogDir, cfg.PageSize, logger)
	if err != nil {
		return err
	}

	mgr := stats.NewManager(cat, cfg.HistogramBuckets)
	builder := planner.NewQueryPlanBuilder(cat, mgr, cfg)

	for _, s := range scanDecls {
		table, alias := parseScan(s)
		builder.Scan(table, alias)
	}
	for _, f := range filters {
		alias, column, op, value, err := parseFilter(f)
		if err != nil {
			return err
		}
		builder.Filter(alias, column, op, value)
	}
	for _, j := range joins {
		left, right, found := strings.Cut(j, "=")
		if !found {
			return errors.Newf("join %q is not of the form a.x=b.y", j)
		}
		la, lc, err := splitQualified(left)
		if err != nil {
			return err
		}
		ra, rc, err := splitQualified(right)
		if err != nil {
			return err
		}
		builder.Join(la, lc, ra, rc)
	}

	tx := transaction.NewTransaction()
	defer tx.Close()

	root, err := builder.Plan(tx)
	if err != nil {
		return err
	}

	plan.Explain(os.Stdout, root)
	if dotOutput {
		fmt.Println(plan.Dot(root))
	}
	return nil
}

// parseScan splits "table:alias"; a bare table name aliases to itself
func parseScan(s string) (table, alias string) {
	table, alias, found := strings.Cut(s, ":")
	if !found {
		return table, ""
	}
	return table, alias
}

// filterOps is ordered so two-character operators match before their
// one-character prefixes
var filterOps = []string{">=", "<=", "!=", "<>", "==", "=", "<", ">"}

// parseFilter splits "alias.col<op>value" into its parts
func parseFilter(s string) (alias, column string, op stats.Op, value interface{}, err error) {
	for _, lit := range filterOps {
		idx := strings.Index(s, lit)
		if idx < 0 {
			continue
		}
		op, err = stats.ParseOp(lit)
		if err != nil {
			return "", "", 0, nil, err
		}
		alias, column, err = splitQualified(s[:idx])
		if err != nil {
			return "", "", 0, nil, err
		}
		return alias, column, op, parseValue(s[idx+len(lit):]), nil
	}
	return "", "", 0, nil, errors.Newf("filter %q has no comparison operator", s)
}

// splitQualified splits "alias.column"
func splitQualified(s string) (alias, column string, err error) {
	alias, column, found := strings.Cut(strings.TrimSpace(s), ".")
	if !found || alias == "" || column == "" {
		return "", "", errors.Newf("%q is not of the form alias.column", s)
	}
	return alias, column, nil
}

// parseValue guesses the literal type: int, float, bool, then string
func parseValue(s string) interface{} {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.Trim(s, `'"`)
}
