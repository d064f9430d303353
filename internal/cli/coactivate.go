package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "coactivate [source-id] [target-id]",
		Short: "Strengthen the coactivation edge between two memories",
		Args:  cobra.ExactArgs(2),
		Run:   runCoactivate,
	}

	cmd.Flags().Float64("delta", 0.1, "Weight increment (clamped to [0, 1])")

	RootCmd.AddCommand(cmd)
}

func runCoactivate(cmd *cobra.Command, args []string) {
	delta, _ := cmd.Flags().GetFloat64("delta")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ok, err := s.BumpCoactivation(cmd.Context(), args[0], args[1], delta)
	if err != nil {
		exitErr("coactivate", err)
	}
	if !ok {
		exitErr("coactivate", fmt.Errorf("one or both memories not found"))
	}
	fmt.Printf("coactivation %s <-> %s +%.2f\n", args[0], args[1], delta)
}
