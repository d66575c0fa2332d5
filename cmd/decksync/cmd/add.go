package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"decksync/internal/adapters/sources"
	"decksync/internal/adapters/targets"
	"decksync/internal/adapters/tui"
	"decksync/internal/cache"
	"decksync/internal/config"
)

var (
	addSource       string
	addUser         string
	addTarget       string
	addPath         string
	addIncludeMaybe bool
	addName         string
	addNoVerify     bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a profile",
	Long: `Create a profile binding a user on a deck site to an output
directory for one client.

With --source, --user, --target and --path all given the profile is
created directly; otherwise an interactive wizard walks through the
missing pieces.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, c, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		spec, err := profileSpec(cmd, c)
		if err != nil || spec == nil {
			return err
		}

		profile := c.BuildProfile(spec.Source, spec.User, spec.Name)
		c.AddOutput(profile, spec.Target, config.ExpandPath(spec.Path), spec.IncludeMaybe)
		if err := store.Save(c); err != nil {
			return err
		}

		fmt.Printf("Added profile for %s on %s writing %s decks to %s.\n",
			spec.User, spec.Source.Name(), spec.Target.Name(), spec.Path)
		fmt.Println(`Run "decksync sync" to download decks.`)
		return nil
	},
}

// profileSpec builds the profile description from flags, or runs the
// wizard when the non-interactive flags are incomplete.
func profileSpec(cmd *cobra.Command, c *cache.Cache) (*tui.ProfileSpec, error) {
	if addSource == "" || addUser == "" || addTarget == "" || addPath == "" {
		var knownDirs []string
		for _, dir := range c.Dirs {
			knownDirs = append(knownDirs, dir.Path)
		}
		return tui.Run(cmd.Context(), sources.All(), targets.All(), knownDirs)
	}

	source, ok := sources.Get(addSource)
	if !ok {
		return nil, fmt.Errorf("no source named %q exists", addSource)
	}
	target, ok := targets.Get(addTarget)
	if !ok {
		return nil, fmt.Errorf("no target named %q exists", addTarget)
	}

	if !addNoVerify {
		found, err := source.VerifyUser(cmd.Context(), addUser)
		if err != nil {
			return nil, fmt.Errorf("verifying user %s: %w", addUser, err)
		}
		if !found {
			return nil, fmt.Errorf("no public decks found for %q on %s", addUser, source.Name())
		}
	}

	return &tui.ProfileSpec{
		Source:       source,
		User:         addUser,
		Target:       target,
		Path:         addPath,
		IncludeMaybe: addIncludeMaybe,
		Name:         addName,
	}, nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "deck site name or code")
	addCmd.Flags().StringVarP(&addUser, "user", "u", "", "user to sync decks of")
	addCmd.Flags().StringVarP(&addTarget, "target", "t", "", "client name or code")
	addCmd.Flags().StringVarP(&addPath, "path", "p", "", "directory to save deck files to")
	addCmd.Flags().BoolVar(&addIncludeMaybe, "include-maybe", false, "include maybeboard cards in the sideboard")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "display name for the profile")
	addCmd.Flags().BoolVar(&addNoVerify, "no-verify", false, "skip checking the user exists")
}
