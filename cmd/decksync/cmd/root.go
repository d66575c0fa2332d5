package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decksync/internal/adapters/sources"
	"decksync/internal/adapters/sqlite"
	"decksync/internal/adapters/targets"
	"decksync/internal/cache"
	"decksync/internal/config"
	"decksync/internal/logging"
)

var (
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "decksync",
	Short: "Synchronize remote decklists to local deck files",
	Long: `decksync downloads decklists from deck building websites and keeps
local deck files for MtG clients up to date with them.

Profiles bind a user on a site to one or more output directories; a sync
re-downloads only the decks that changed since their files were written.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase output verbosity")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable log output")
}

func verbosity() int {
	if quiet {
		return 0
	}
	return 1 + verbose
}

// openStore opens the database and materializes the cache.
func openStore() (*sqlite.Store, *cache.Cache, error) {
	path, err := config.DatabaseFile()
	if err != nil {
		return nil, nil, fmt.Errorf("locating database: %w", err)
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := store.Load(sources.Get, targets.Get)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, c, nil
}
