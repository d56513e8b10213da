package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
)

type pinInput struct {
	Pin string `validate:"pin"`
}

func newInitCommand(app *App) *cobra.Command {
	var newPin string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new account store, or change the PIN of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runInit(cmd, newPin)
		},
	}
	cmd.Flags().StringVar(&newPin, "new-pin", "", "new 4-6 character PIN; prompted when omitted")
	return cmd
}

func (a *App) runInit(cmd *cobra.Command, newPinFlag string) error {
	ctx := cmd.Context()
	initialized := a.svc.IsInitialized()

	var current []byte
	if initialized {
		pin, err := a.currentPin(cmd, "Current PIN")
		if err != nil {
			return err
		}
		current = pin
		defer common.WipeByteArray(current)
	}

	var pin []byte
	switch {
	case newPinFlag != "":
		pin = []byte(newPinFlag)
	case !initialized && a.suppliedPin() != nil:
		pin = a.suppliedPin()
	default:
		p, err := confirmedPin(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		pin = p
	}
	defer common.WipeByteArray(pin)

	if err := a.validator.Struct(pinInput{Pin: string(pin)}); err != nil {
		return err
	}
	if err := a.svc.Init(ctx, pin, current); err != nil {
		return err
	}

	if initialized {
		fmt.Fprintln(cmd.OutOrStdout(), "PIN successfully changed")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Client successfully initialized")
	}
	return nil
}
