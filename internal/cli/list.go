package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders, soonest first",
		Run:   runList,
	}

	cmd.Flags().BoolP("active", "a", false, "Only reminders still armed")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	activeOnly, _ := cmd.Flags().GetBool("active")

	sched, _, err := openCore()
	if err != nil {
		exitErr("list", err)
	}

	if activeOnly {
		printJSON(sched.Store().Active())
		return
	}
	printJSON(sched.Store().All())
}
