package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [context]",
		Short: "Recall memories with pattern completion",
		Long:  "Scored search blended with Hopfield pattern completion. With --chain, linked memories are appended as an associative tier.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().IntP("results", "n", 3, "Max primary results")
	cmd.Flags().Bool("chain", false, "Append linked memories of each hit")
	cmd.Flags().Int("depth", 1, "Link traversal depth for --chain")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	nResults, _ := cmd.Flags().GetInt("results")
	chain, _ := cmd.Flags().GetBool("chain")
	depth, _ := cmd.Flags().GetInt("depth")
	context_ := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var results []model.SearchResult
	if chain {
		results, err = s.RecallWithChain(cmd.Context(), context_, nResults, depth)
	} else {
		results, err = s.Recall(cmd.Context(), context_, nResults)
	}
	if err != nil {
		exitErr("recall", err)
	}
	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(results)
}
