package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent memories",
		Run:   runRecent,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max results")
	cmd.Flags().StringP("category", "c", "", "Filter by category")

	RootCmd.AddCommand(cmd)
}

func runRecent(cmd *cobra.Command, _ []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	category, _ := cmd.Flags().GetString("category")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.ListRecent(cmd.Context(), limit, category)
	if err != nil {
		exitErr("recent", err)
	}
	if len(memories) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(memories)
}
