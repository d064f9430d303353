package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/model"
)

func init() {
	episodeCmd := &cobra.Command{
		Use:   "episode",
		Short: "Manage episodes (memory groupings)",
	}

	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create an episode from existing memories",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEpisodeCreate,
	}
	createCmd.Flags().StringP("memories", "m", "", "Comma-separated memory ids (required)")
	createCmd.Flags().StringP("participants", "p", "", "Comma-separated participant names")
	createCmd.Flags().Bool("summarize", true, "Auto-summarize from member snippets")
	createCmd.MarkFlagRequired("memories")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List episodes, newest first",
		Run:   runEpisodeList,
	}
	listCmd.Flags().StringP("query", "q", "", "Filter by title/summary substring")
	listCmd.Flags().IntP("results", "n", 10, "Max results when filtering")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show an episode and its memories",
		Args:  cobra.ExactArgs(1),
		Run:   runEpisodeShow,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an episode (memories are kept)",
		Args:  cobra.ExactArgs(1),
		Run:   runEpisodeDelete,
	}

	episodeCmd.AddCommand(createCmd, listCmd, showCmd, deleteCmd)
	RootCmd.AddCommand(episodeCmd)
}

func runEpisodeCreate(cmd *cobra.Command, args []string) {
	memoriesStr, _ := cmd.Flags().GetString("memories")
	participantsStr, _ := cmd.Flags().GetString("participants")
	summarize, _ := cmd.Flags().GetBool("summarize")
	title := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ep, err := s.CreateEpisode(cmd.Context(), title, splitTags(memoriesStr), splitTags(participantsStr), summarize)
	if err != nil {
		exitErr("episode create", err)
	}
	printJSON(ep)
}

func runEpisodeList(cmd *cobra.Command, _ []string) {
	query, _ := cmd.Flags().GetString("query")
	nResults, _ := cmd.Flags().GetInt("results")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var episodes []model.Episode
	if query != "" {
		episodes, err = s.SearchEpisodes(cmd.Context(), query, nResults)
	} else {
		episodes, err = s.ListEpisodes(cmd.Context())
	}
	if err != nil {
		exitErr("episode list", err)
	}
	if len(episodes) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(episodes)
}

func runEpisodeShow(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ep, err := s.GetEpisode(cmd.Context(), args[0])
	if err != nil {
		exitErr("episode show", err)
	}
	memories, err := s.GetEpisodeMemories(cmd.Context(), args[0])
	if err != nil {
		exitErr("episode memories", err)
	}
	printJSON(struct {
		Episode  *model.Episode `json:"episode"`
		Memories []model.Memory `json:"memories"`
	}{Episode: ep, Memories: memories})
}

func runEpisodeDelete(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteEpisode(cmd.Context(), args[0]); err != nil {
		exitErr("episode delete", err)
	}
	fmt.Printf("deleted episode %s\n", args[0])
}
