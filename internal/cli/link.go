package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link [source-id] [target-id]",
		Short: "Add a typed causal link between memories",
		Args:  cobra.ExactArgs(2),
		Run:   runLink,
	}

	cmd.Flags().StringP("type", "t", "related", "Link type: similar, related, caused_by, leads_to")
	cmd.Flags().String("note", "", "Optional note on the link")

	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) {
	linkType, _ := cmd.Flags().GetString("type")
	note, _ := cmd.Flags().GetString("note")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.AddCausalLink(cmd.Context(), args[0], args[1], linkType, note); err != nil {
		exitErr("link", err)
	}
	fmt.Printf("linked %s -[%s]-> %s\n", args[0], linkType, args[1])
}
