package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reannemartin/folio"
	"github.com/reannemartin/folio/analytics"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print an analytics summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := folio.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		store, err := analytics.NewStore(cfg.AnalyticsDatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		to := time.Now().UTC()
		from := to.AddDate(0, 0, -statsDays)
		sum, err := store.Summary(cmd.Context(), from, to)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s to %s\n\n", from.Format(time.DateOnly), to.Format(time.DateOnly))
		fmt.Fprintf(w, "Unique visitors  %d\n", sum.UniqueVisitors)
		fmt.Fprintf(w, "Bot visits       %d\n\n", sum.BotVisits)
		for _, k := range analytics.Kinds {
			fmt.Fprintf(w, "%-17s%d\n", k, sum.ByKind[k])
		}
		printDimension(cmd, "Top projects", sum.TopProjects)
		printDimension(cmd, "Browsers", sum.Browsers)
		printDimension(cmd, "Devices", sum.Devices)
		return nil
	},
}

func printDimension(cmd *cobra.Command, title string, rows []analytics.DimensionStat) {
	if len(rows) == 0 {
		return
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n%s\n", title)
	for _, r := range rows {
		fmt.Fprintf(w, "  %-24s%d\n", r.Name, r.Count)
	}
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "number of days to summarise")
	rootCmd.AddCommand(statsCmd)
}
