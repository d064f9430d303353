package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "diagnose [context]",
		Short: "Probe association-graph traversal for a context",
		Long:  "Runs a diagnostics-only divergent recall and reports traversal shape: branches, depth, edges, diversity. No activations are recorded.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDiagnose,
	}

	cmd.Flags().Int("sample", 5, "Sample size (3-20)")

	RootCmd.AddCommand(cmd)
}

func runDiagnose(cmd *cobra.Command, args []string) {
	sample, _ := cmd.Flags().GetInt("sample")
	context_ := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	diag, err := s.AssociationDiagnostics(cmd.Context(), context_, sample)
	if err != nil {
		exitErr("diagnose", err)
	}
	printJSON(diag)
}
