package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "important",
		Short: "List important, frequently accessed memories",
		Run:   runImportant,
	}

	cmd.Flags().IntP("min-importance", "i", 4, "Minimum importance")
	cmd.Flags().Int("min-access", 0, "Minimum access count")
	cmd.Flags().Int("days", 0, "Only memories from the last N days (0 = all)")
	cmd.Flags().IntP("results", "n", 10, "Max results")

	RootCmd.AddCommand(cmd)
}

func runImportant(cmd *cobra.Command, _ []string) {
	minImportance, _ := cmd.Flags().GetInt("min-importance")
	minAccess, _ := cmd.Flags().GetInt("min-access")
	days, _ := cmd.Flags().GetInt("days")
	nResults, _ := cmd.Flags().GetInt("results")

	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.SearchImportant(cmd.Context(), minImportance, minAccess, since, nResults)
	if err != nil {
		exitErr("important", err)
	}
	if len(memories) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(memories)
}
