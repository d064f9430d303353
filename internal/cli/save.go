package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/model"
	"github.com/recollectdb/recollect/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "save [content]",
		Short: "Save a memory",
		Long:  "Save a memory. Content can be a positional arg or piped via stdin.",
		Run:   runSave,
	}

	cmd.Flags().StringP("emotion", "e", "neutral", "Emotion: happy, sad, excited, nostalgic, moved, curious, surprised, neutral")
	cmd.Flags().IntP("importance", "i", 3, "Importance 1-5")
	cmd.Flags().StringP("category", "c", "daily", "Category: daily, philosophical, technical, memory, observation, feeling, conversation")
	cmd.Flags().String("episode", "", "Episode id to attach to")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().Bool("auto-link", false, "Link to semantically similar existing memories")
	cmd.Flags().Float64("link-threshold", 0.8, "Max semantic distance for auto-linking")
	cmd.Flags().Int("max-links", 5, "Max auto-link targets")

	RootCmd.AddCommand(cmd)
}

func runSave(cmd *cobra.Command, args []string) {
	emotion, _ := cmd.Flags().GetString("emotion")
	importance, _ := cmd.Flags().GetInt("importance")
	category, _ := cmd.Flags().GetString("category")
	episodeID, _ := cmd.Flags().GetString("episode")
	tagsStr, _ := cmd.Flags().GetString("tags")
	autoLink, _ := cmd.Flags().GetBool("auto-link")
	linkThreshold, _ := cmd.Flags().GetFloat64("link-threshold")
	maxLinks, _ := cmd.Flags().GetInt("max-links")

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("save", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	params := store.SaveParams{
		Content:    strings.TrimSpace(content),
		Emotion:    emotion,
		Importance: importance,
		Category:   category,
		EpisodeID:  episodeID,
		Tags:       splitTags(tagsStr),
	}

	var mem *model.Memory
	if autoLink {
		mem, err = s.SaveWithAutoLink(cmd.Context(), params, linkThreshold, maxLinks)
	} else {
		mem, err = s.Save(cmd.Context(), params)
	}
	if err != nil {
		exitErr("save", err)
	}
	printJSON(mem)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
