package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
)

type accountInput struct {
	Account string `validate:"required"`
}

func newGetCommand(app *App) *cobra.Command {
	var in accountInput
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a one-time password",
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

			code, err := app.svc.Get(cmd.Context(), pin, in.Account)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Account, "account", "a", "", "account name to get a one-time password for")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
