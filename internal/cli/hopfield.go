package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	hopfieldCmd := &cobra.Command{
		Use:   "hopfield",
		Short: "Pattern-completion network operations",
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Snapshot all embeddings into the pattern network",
		Run:   runHopfieldLoad,
	}

	recallCmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Retrieve pattern-completion matches for a query",
		Args:  cobra.MinimumNArgs(1),
		Run:   runHopfieldRecall,
	}
	recallCmd.Flags().IntP("results", "n", 5, "Max results")
	recallCmd.Flags().Float64("beta", 0, "Inverse temperature override (0 = configured value)")

	hopfieldCmd.AddCommand(loadCmd, recallCmd)
	RootCmd.AddCommand(hopfieldCmd)
}

func runHopfieldLoad(cmd *cobra.Command, _ []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.HopfieldLoad(cmd.Context())
	if err != nil {
		exitErr("hopfield load", err)
	}
	fmt.Printf("loaded %d patterns\n", n)
}

func runHopfieldRecall(cmd *cobra.Command, args []string) {
	nResults, _ := cmd.Flags().GetInt("results")
	beta, _ := cmd.Flags().GetFloat64("beta")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	hits, err := s.HopfieldRecall(cmd.Context(), query, nResults, beta, true)
	if err != nil {
		exitErr("hopfield recall", err)
	}
	if len(hits) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(hits)
}
