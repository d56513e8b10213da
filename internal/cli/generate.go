package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/cryptox"
)

func newGenerateCommand(_ *App) *cobra.Command {
	var counter bool
	cmd := &cobra.Command{
		Use:         "generate",
		Short:       "Generate a Base32 secret key",
		Args:        cobra.NoArgs,
		Annotations: noStore(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			size := cryptox.TOTPSecretSize
			if counter {
				size = cryptox.HOTPSecretSize
			}
			fmt.Fprintln(cmd.OutOrStdout(), cryptox.GenerateSecret(size))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&counter, "counter", "c", false, "key for counter-based HOTP (time-based TOTP is default)")
	return cmd
}
