package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles and their outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, c, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if len(c.Profiles) == 0 {
			fmt.Println(`No profiles. Run "decksync add" to create one.`)
			return nil
		}

		for _, profile := range c.Profiles {
			if profile.Name != "" {
				fmt.Printf("%s (%s)\n", profile.Name, profile.UserString())
			} else {
				fmt.Println(profile.UserString())
			}
			for _, out := range profile.Outputs {
				maybe := ""
				if out.IncludeMaybe {
					maybe = " (with maybeboard)"
				}
				fmt.Printf("    %s -> %s%s\n", out.Target.Name(), out.Dir.Path, maybe)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
