package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
)

type validateInput struct {
	Account string `validate:"required"`
	Token   string `validate:"required,otpcode"`
}

func newValidateCommand(app *App) *cobra.Command {
	var in validateInput
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a one-time password",
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

			if err := app.svc.Validate(cmd.Context(), pin, in.Account, in.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s valid\n", in.Token)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Account, "account", "a", "", "account name to validate the one-time password for")
	f.StringVarP(&in.Token, "token", "t", "", "one-time password to validate")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
