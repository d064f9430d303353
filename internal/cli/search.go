package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories semantically",
		Long:  "Scored semantic search blending embedding distance with recency decay, emotion, importance, and lexical boosts.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("results", "n", 5, "Max results")
	cmd.Flags().StringP("emotion", "e", "", "Filter by emotion")
	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().String("from", "", "Only memories at or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Only memories at or before this date (YYYY-MM-DD)")
	cmd.Flags().Bool("plain", false, "Raw cosine-distance search, no scoring")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	nResults, _ := cmd.Flags().GetInt("results")
	emotion, _ := cmd.Flags().GetString("emotion")
	category, _ := cmd.Flags().GetString("category")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	plain, _ := cmd.Flags().GetBool("plain")
	query := strings.Join(args, " ")

	params := store.SearchParams{
		Query:          query,
		NResults:       nResults,
		EmotionFilter:  emotion,
		CategoryFilter: category,
	}
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			exitErr("parse --from", err)
		}
		params.DateFrom = t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			exitErr("parse --to", err)
		}
		params.DateTo = t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if plain {
		results, err := s.Search(cmd.Context(), params)
		if err != nil {
			exitErr("search", err)
		}
		if len(results) == 0 {
			fmt.Println("[]")
			return
		}
		printJSON(results)
		return
	}

	scored, err := s.SearchWithScoring(cmd.Context(), s.DefaultScoring(params))
	if err != nil {
		exitErr("search", err)
	}
	if len(scored) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(scored)
}
