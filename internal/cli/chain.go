package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chain [id]",
		Short: "Walk a memory's causal chain",
		Long:  `Walk typed causal links: "backward" follows caused_by, "forward" follows leads_to.`,
		Args:  cobra.ExactArgs(1),
		Run:   runChain,
	}

	cmd.Flags().String("direction", "backward", "Traversal direction: backward or forward")
	cmd.Flags().Int("depth", 3, "Max traversal depth (1-5)")

	RootCmd.AddCommand(cmd)
}

func runChain(cmd *cobra.Command, args []string) {
	direction, _ := cmd.Flags().GetString("direction")
	depth, _ := cmd.Flags().GetInt("depth")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	chain, err := s.GetCausalChain(cmd.Context(), args[0], direction, depth)
	if err != nil {
		exitErr("chain", err)
	}
	if len(chain) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(chain)
}
