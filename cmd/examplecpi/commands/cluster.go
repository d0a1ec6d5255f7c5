package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"examplecpi/internal/examplecpi"
)

func airdropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdrop <sol>",
		Short: "Request SOL for the wallet (or --to) and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := parseSOL(args[0])
			if err != nil {
				return err
			}
			p, err := appCtx.Provider()
			if err != nil {
				return err
			}
			to, err := pubkeyFlag(cmd, "to", p.Wallet())
			if err != nil {
				return err
			}
			sig, err := p.Airdrop(cmd.Context(), to, lamports)
			if err != nil {
				return err
			}
			printSignature(cmd, sig)
			return nil
		},
	}
	cmd.Flags().String("to", "", "recipient (default: the wallet)")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Print the SOL balance of the wallet or address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.Provider()
			if err != nil {
				return err
			}
			account := p.Wallet()
			if len(args) == 1 {
				if account, err = solana.PublicKeyFromBase58(args[0]); err != nil {
					return fmt.Errorf("address: %w", err)
				}
			}
			lamports, err := p.Balance(cmd.Context(), account)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s SOL\n", formatSOL(lamports))
			return nil
		},
	}
}

func faucetCmd() *cobra.Command {
	var amount uint64
	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "Mint devnet quote tokens into --target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := pubkeyFlag(cmd, "target", solana.PublicKey{})
			if err != nil {
				return err
			}
			ix, err := examplecpi.FaucetToUser(target, amount)
			if err != nil {
				return err
			}
			sender, err := appCtx.Sender()
			if err != nil {
				return err
			}
			sig, err := sender.SendAndConfirm(cmd.Context(), []solana.Instruction{ix})
			if err != nil {
				return err
			}
			printSignature(cmd, sig)
			return nil
		},
	}
	cmd.Flags().String("target", "", "quote token account to credit (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
