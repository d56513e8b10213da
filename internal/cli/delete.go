package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
)

func newDeleteCommand(app *App) *cobra.Command {
	var in accountInput
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.validator.Struct(in); err != nil {
				return err
			}
			pin, err := app.currentPin(cmd, "PIN")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pin)

			if err := app.svc.Delete(cmd.Context(), pin, in.Account); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account successfully deleted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Account, "account", "a", "", "account name to delete")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
