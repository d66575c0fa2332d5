package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"decksync/internal/cache"
)

var removeSource string

var removeCmd = &cobra.Command{
	Use:   "remove <user>",
	Short: "Delete profiles for a user",
	Long: `Delete every profile for the given user, optionally narrowed to one
source with --source. Deck files already written stay on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, c, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		user := args[0]
		var matched []*cache.Profile
		for _, profile := range c.Profiles {
			if !strings.EqualFold(profile.User, user) {
				continue
			}
			if removeSource != "" &&
				!strings.EqualFold(profile.Source.Name(), removeSource) &&
				!strings.EqualFold(profile.Source.Short(), removeSource) {
				continue
			}
			matched = append(matched, profile)
		}
		if len(matched) == 0 {
			return fmt.Errorf("no profiles found for %q", user)
		}

		for _, profile := range matched {
			c.RemoveProfile(profile)
			fmt.Printf("Removed profile for %s.\n", profile.UserString())
		}
		return store.Save(c)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().StringVarP(&removeSource, "source", "s", "", "only remove profiles on this source")
}
