package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "divergent [context]",
		Short: "Divergent recall through the association graph",
		Long:  "Spreads scored seeds through links and coactivations, then selects a diverse set by workspace competition.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDivergent,
	}

	cmd.Flags().IntP("results", "n", 5, "Max results (1-20)")
	cmd.Flags().Int("branches", 3, "Requested branches per node")
	cmd.Flags().Int("depth", 3, "Requested spread depth")
	cmd.Flags().Float64("temperature", 0.7, "Workspace competition temperature")
	cmd.Flags().Bool("diagnostics", false, "Include traversal diagnostics")
	cmd.Flags().Bool("activate", false, "Record activations on selected memories")

	RootCmd.AddCommand(cmd)
}

func runDivergent(cmd *cobra.Command, args []string) {
	nResults, _ := cmd.Flags().GetInt("results")
	branches, _ := cmd.Flags().GetInt("branches")
	depth, _ := cmd.Flags().GetInt("depth")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	diagnostics, _ := cmd.Flags().GetBool("diagnostics")
	activate, _ := cmd.Flags().GetBool("activate")
	context_ := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, diag, err := s.RecallDivergent(cmd.Context(), store.DivergentParams{
		Context:            context_,
		NResults:           nResults,
		MaxBranches:        branches,
		MaxDepth:           depth,
		Temperature:        temperature,
		IncludeDiagnostics: diagnostics,
		RecordActivation:   activate,
	})
	if err != nil {
		exitErr("divergent", err)
	}

	if diagnostics {
		printJSON(struct {
			Results     []model.SearchResult        `json:"results"`
			Diagnostics *store.DivergentDiagnostics `json:"diagnostics"`
		}{Results: results, Diagnostics: diag})
		return
	}
	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(results)
}
