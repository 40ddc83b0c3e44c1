package cli

import (
	"github.com/spf13/cobra"
)

func newCharactersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List the character catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CharacterList

			if err := client.Get("/api/v1/characters", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
