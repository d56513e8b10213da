package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/otpkeeper/internal/config"
)

// NewRootCommand builds the otp command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "otp",
		Short: "Local one-time password manager",
		Long: `otp keeps HOTP and TOTP secrets encrypted behind a PIN and computes
one-time passwords for them.

Codes are printed on stdout; diagnostics go to stderr.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	pf := root.PersistentFlags()
	config.RegisterFlags(pf)
	pf.StringVar(&app.configFile, "config", "", "config file (default is $HOME/.otp/config.yaml)")
	pf.StringVarP(&app.pin, "pin", "p", "", "store PIN (or "+PinEnv+"); prompted when omitted")

	root.AddCommand(
		newInitCommand(app),
		newAddCommand(app),
		newGetCommand(app),
		newListCommand(app),
		newDeleteCommand(app),
		newValidateCommand(app),
		newGenerateCommand(app),
		newURICommand(app),
		newVersionCommand(),
	)
	return root
}

func noStore() map[string]string {
	return map[string]string{annotationNoStore: "true"}
}
