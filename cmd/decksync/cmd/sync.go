package cmd

import (
	"github.com/spf13/cobra"

	"decksync/internal/adapters/scryfall"
	"decksync/internal/catalog"
	"decksync/internal/sync"
)

var syncLatest bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update deck files for all profiles",
	Long: `Sync every profile: list each user's decks, download the ones whose
files are missing or out of date, and rewrite those files.

Individual deck failures are logged and skipped; the run itself only
fails when the cache cannot be opened or saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, c, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		syncer := sync.New(catalog.New(store, scryfall.NewClient()))
		syncer.SyncAll(cmd.Context(), c, syncLatest)

		return store.Save(c)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVarP(&syncLatest, "latest", "l", false,
		"only check each profile's most recently updated deck")
}
