// Package cli implements the recollect CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recollectdb/recollect/internal/config"
	"github.com/recollectdb/recollect/internal/store"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recollect",
	Short: "Long-term associative memory for conversational agents",
	Long:  "Associative memory engine with semantic, lexical, recency, and affect-aware retrieval. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RECOLLECT_DB or ~/.recollect/memory.db)")
}

func openStore() (*store.MemoryStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	} else if env := os.Getenv("RECOLLECT_DB"); env != "" {
		cfg.DBPath = env
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, err
	}
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	return store.New(cfg.DBPath, opts)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
