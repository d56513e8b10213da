// Package cli implements the otp command line: a cobra command tree over
// AccountService, with configuration from viper and PIN entry from the
// terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitrijs2005/otpkeeper/internal/clock"
	"github.com/dmitrijs2005/otpkeeper/internal/config"
	"github.com/dmitrijs2005/otpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/otpkeeper/internal/logging"
	"github.com/dmitrijs2005/otpkeeper/internal/otpcode"
	"github.com/dmitrijs2005/otpkeeper/internal/persist"
	"github.com/dmitrijs2005/otpkeeper/internal/services"
	"github.com/dmitrijs2005/otpkeeper/internal/store"
	"github.com/dmitrijs2005/otpkeeper/internal/validation"
)

// PinEnv is the environment variable consulted when --pin is not given.
const PinEnv = "OTP_PIN"

// annotationNoStore marks commands that run without opening the store.
const annotationNoStore = "otp/no-store"

// App holds the state of one invocation.
type App struct {
	v         *viper.Viper
	cfg       *config.Config
	log       logging.Logger
	backend   persist.Backend
	svc       services.AccountService
	validator *validation.Validator

	clock      clock.Clocker
	newBackend func(ctx context.Context, cfg config.Storage) (persist.Backend, error)
	getenv     func(string) string

	configFile string
	pin        string
}

func NewApp() *App {
	return &App{
		v:          viper.New(),
		log:        logging.Discard(),
		clock:      clock.New(),
		newBackend: persist.New,
		getenv:     os.Getenv,
	}
}

// setup loads configuration, builds the logger and, unless the command is
// annotated otherwise, opens the store.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.log = logger.With("run_id", uuid.NewString(), "cmd", cmd.Name())

	val, err := validation.New()
	if err != nil {
		return err
	}
	a.validator = val

	if _, skip := cmd.Annotations[annotationNoStore]; skip {
		return nil
	}
	return a.openStore(ctx)
}

func (a *App) openStore(ctx context.Context) error {
	scheme, err := cryptox.ParseKeyScheme(a.cfg.Crypto.KDF)
	if err != nil {
		return err
	}

	backend, err := a.newBackend(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", a.cfg.Storage.Backend, err)
	}
	a.backend = backend

	st, err := store.Open(ctx, backend, store.WithLogger(a.log), store.WithKeyScheme(scheme))
	if err != nil {
		return err
	}
	a.log.Debug(ctx, "store ready", "backend", a.cfg.Storage.Backend)

	hotp := otpcode.NewHOTP()
	totp := otpcode.NewTOTP(a.clock, a.cfg.TOTP.Step)
	a.svc = services.NewAccountService(st, hotp, totp, a.log)
	return nil
}

// Close releases the backend.
func (a *App) Close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	return err
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := NewApp()
	defer app.Close()

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
