package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/commitcast/commitcast/internal/cache"
	"github.com/commitcast/commitcast/internal/config"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past narration runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, err := cache.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	runs, err := c.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No narration runs yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tREPO\tCOMMIT\tCHUNKS\tAUDIO\tMESSAGE")
	for _, r := range runs {
		msg := firstLine(r.Message)
		if len(msg) > 40 {
			msg = msg[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1fs\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Repo, r.CommitHash, r.ChunkCount, r.AudioSecs, msg)
	}
	return w.Flush()
}
