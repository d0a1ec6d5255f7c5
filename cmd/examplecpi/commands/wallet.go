package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"examplecpi/internal/crypto"
)

func requirePassphrase() (string, error) {
	p := appCtx.Settings.Passphrase
	if p == "" {
		return "", errors.New("passphrase required (-p)")
	}
	return p, nil
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the encrypted local wallet",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a keypair and store it encrypted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := requirePassphrase()
				if err != nil {
					return err
				}
				pub, fp, err := appCtx.Wallets.Generate(pass)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wallet created.\nAddress: %s\nFingerprint: %s\n", pub, fp)
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <keygen-file>",
			Short: "Encrypt a Solana CLI keypair file into the local wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := requirePassphrase()
				if err != nil {
					return err
				}
				pub, err := appCtx.Wallets.Import(pass, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wallet imported.\nAddress: %s\n", pub)
				return nil
			},
		},
		&cobra.Command{
			Use:   "address",
			Short: "Print the address and fingerprint of the local wallet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pass, err := requirePassphrase()
				if err != nil {
					return err
				}
				pub, err := appCtx.Wallets.Address(pass)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Address: %s\nFingerprint: %s\n", pub, crypto.Fingerprint(pub))
				return nil
			},
		},
	)
	return cmd
}
