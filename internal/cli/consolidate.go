package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Replay recent memories to strengthen associations",
		Long:  "Replays recently saved memories in chronological order, bumping coactivation weights between neighbors and promoting strong pairs to related links.",
		Run:   runConsolidate,
	}

	cmd.Flags().Int("window-hours", 24, "Replay window in hours (min 1)")
	cmd.Flags().Int("max-replay", 200, "Max replay events")
	cmd.Flags().Float64("strength", 0.1, "Coactivation increment per replayed pair")

	RootCmd.AddCommand(cmd)
}

func runConsolidate(cmd *cobra.Command, _ []string) {
	windowHours, _ := cmd.Flags().GetInt("window-hours")
	maxReplay, _ := cmd.Flags().GetInt("max-replay")
	strength, _ := cmd.Flags().GetFloat64("strength")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Consolidate(cmd.Context(), windowHours, maxReplay, strength)
	if err != nil {
		exitErr("consolidate", err)
	}
	printJSON(stats)
}
