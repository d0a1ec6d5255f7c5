package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"examplecpi/internal/anchor"
	"examplecpi/internal/app"
	"examplecpi/internal/config"
	"examplecpi/internal/examplecpi"
	"examplecpi/internal/logging"
	"examplecpi/internal/provider"
)

var (
	cfgFile string
	appCtx  *app.Wire
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "examplecpi",
		Short:         "Client for the example-cpi Anchor program",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			logging.SetDefault(log)

			appCtx, err = app.NewWire(app.Config{Settings: cfg, Logger: log})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Default().Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("home", "", "data dir for the encrypted wallet and history (default ~/.examplecpi)")
	pf.String("workspace", "", "directory inside the Anchor workspace (default .)")
	pf.StringP("passphrase", "p", "", "passphrase of the encrypted wallet")
	pf.StringP("url", "u", "", "cluster RPC URL (env ANCHOR_PROVIDER_URL)")
	pf.StringP("wallet", "k", "", "keygen file of the fee payer (env ANCHOR_WALLET)")
	pf.String("commitment", "", "commitment to wait for: processed, confirmed or finalized")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "console or json")

	root.AddCommand(
		initializeCmd(),
		initializeUserCmd(),
		depositCmd(),
		withdrawCmd(),
		wrapperCmd(),
		groupCmd(),
		faucetCmd(),
		airdropCmd(),
		balanceCmd(),
		walletCmd(),
		historyCmd(),
	)
	describeProgramErrors(root)
	return root
}

// describeProgramErrors wraps every RunE below cmd so that failed
// transactions name their program error.
func describeProgramErrors(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		describeProgramErrors(c)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return describeProgramError(run(cmd, args))
	}
}

// describeProgramError appends the name of a custom program error, taken
// from the framework table or the example-cpi IDL.
func describeProgramError(err error) error {
	code, ok := provider.ProgramErrorCode(err)
	if !ok {
		return err
	}
	var idl *anchor.IDL
	if appCtx != nil {
		if program, perr := appCtx.Program(examplecpi.ProgramName); perr == nil {
			idl = program.IDL()
		}
	}
	return fmt.Errorf("%w [%s]", err, anchor.DescribeError(code, idl))
}

// Execute runs the CLI with a background context.
func Execute() error { return ExecuteContext(context.Background()) }

// ExecuteContext runs the CLI; commands observe ctx cancellation.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func printSignature(cmd *cobra.Command, sig fmt.Stringer) {
	fmt.Fprintf(cmd.OutOrStdout(), "Your transaction signature %s\n", sig)
}
