package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Intervention statistics",
		Run:   runStats,
	}

	cmd.Flags().Bool("all", false, "Include the full archive, not just the bounded log")
	cmd.Flags().Int("recent", 0, "Also print the N most recent archived interventions")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	recent, _ := cmd.Flags().GetInt("recent")

	sched, _, err := openCore()
	if err != nil {
		exitErr("stats", err)
	}

	out := map[string]any{"stats": sched.GetStats()}

	if all || recent > 0 {
		archive, err := history.OpenArchive(filepath.Join(getStatePath(), "interventions.db"))
		if err != nil {
			exitErr("stats", err)
		}
		defer archive.Close()

		if all {
			total, err := archive.Count()
			if err != nil {
				exitErr("stats", err)
			}
			out["archived_total"] = total
		}
		if recent > 0 {
			records, err := archive.Recent(recent)
			if err != nil {
				exitErr("stats", err)
			}
			out["recent"] = records
		}
	}

	printJSON(out)
}
