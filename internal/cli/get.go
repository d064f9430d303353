package cli

import (
	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Int("linked", 0, "Also fetch linked memories up to this depth")
	cmd.Flags().Bool("touch", false, "Record the access")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	linkedDepth, _ := cmd.Flags().GetInt("linked")
	touch, _ := cmd.Flags().GetBool("touch")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.GetByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if touch {
		if err := s.UpdateAccess(cmd.Context(), mem.ID); err != nil {
			exitErr("update access", err)
		}
	}

	if linkedDepth <= 0 {
		printJSON(mem)
		return
	}

	linked, err := s.GetLinkedMemories(cmd.Context(), mem.ID, linkedDepth)
	if err != nil {
		exitErr("linked memories", err)
	}
	printJSON(struct {
		Memory *model.Memory  `json:"memory"`
		Linked []model.Memory `json:"linked"`
	}{Memory: mem, Linked: linked})
}
