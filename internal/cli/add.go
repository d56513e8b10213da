package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/dmitrijs2005/otpkeeper/internal/services"
)

type addInput struct {
	Account string `validate:"required,max=128"`
	Key     string `validate:"required,base32key"`
}

func newAddCommand(app *App) *cobra.Command {
	var (
		in    addInput
		hotp  bool
		rfc   bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.validator.Struct(in); err != nil {
				return err
			}

			req := services.AddRequest{
				Name:      in.Account,
				Key:       in.Key,
				Type:      models.OTPTypeTOTP,
				Overwrite: force,
			}
			if hotp {
				req.Type = models.OTPTypeHOTP
			}
			if rfc {
				req.Encoding = models.EncodingRFC
			}

			pin, err := app.currentPin(cmd, "PIN")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pin)

			if err := app.svc.Add(cmd.Context(), pin, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q successfully created\n", in.Account)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&in.Account, "account", "a", "", "account name to create")
	f.StringVarP(&in.Key, "key", "k", "", "base32 secret key")
	f.BoolVarP(&hotp, "hotp", "c", false, "counter-based HOTP (time-based TOTP is default)")
	f.BoolVar(&rfc, "rfc", false, "compute codes exactly as RFC 4226/6238 authenticator apps do")
	f.BoolVar(&force, "force", false, "replace an existing account of the same name")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
