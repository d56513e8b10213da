package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/dmitrijs2005/otpkeeper/internal/services"
)

type uriInput struct {
	Account string `validate:"required"`
	Issuer  string `validate:"omitempty,max=64,excludes=:"`
	QR      string `validate:"omitempty,endswith=.png"`
}

func newURICommand(app *App) *cobra.Command {
	var in uriInput
	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Print the otpauth:// URI of an account, optionally as a QR code",
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

			key, err := app.svc.URI(cmd.Context(), pin, services.URIRequest{Name: in.Account, Issuer: in.Issuer})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.String())

			if in.QR != "" {
				if err := services.WriteQR(key, in.QR, services.DefaultQRSize); err != nil {
					return err
				}
				app.log.Info(cmd.Context(), "qr code written", "path", in.QR)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Account, "account", "a", "", "account name to export")
	f.StringVar(&in.Issuer, "issuer", "", "issuer shown by authenticator apps")
	f.StringVar(&in.QR, "qr", "", "also write the URI as a PNG QR code to this file")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
