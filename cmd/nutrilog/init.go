package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local nutrilog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			p, err := service.GetProfile(e.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutrilog database at %s\n", e.DBPath)
			if !p.OnboardingCompleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Next: set up your profile with `nutrilog profile set --age ... --weight ... --height ...`")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
