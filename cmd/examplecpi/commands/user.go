package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"examplecpi/internal/examplecpi"
)

// userFlags are shared by the commands acting through a wrapper.
type userFlags struct {
	accountNumber uint64
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().String("group", "", "cypher group address (required)")
	cmd.Flags().Uint64Var(&f.accountNumber, "account-number", 0, "cypher user account number")
}

// resolve derives the wrapper and cypher user of the wallet in --group.
func (f *userFlags) resolve(cmd *cobra.Command) (examplecpi.InitializeUserAccounts, uint8, uint8, error) {
	group, err := pubkeyFlag(cmd, "group", solana.PublicKey{})
	if err != nil {
		return examplecpi.InitializeUserAccounts{}, 0, 0, err
	}
	p, err := appCtx.Provider()
	if err != nil {
		return examplecpi.InitializeUserAccounts{}, 0, 0, err
	}
	return examplecpi.NewInitializeUserAccounts(appCtx.Cluster(), group, p.Wallet(), f.accountNumber)
}

// groupVault returns --vault and, when the command has it, --vault-signer.
// Omitted values are read from the cypher group.
func groupVault(cmd *cobra.Command, group solana.PublicKey) (solana.PublicKey, solana.PublicKey, error) {
	flags := cmd.Flags()
	hasSigner := flags.Lookup("vault-signer") != nil
	var vault, signer solana.PublicKey
	if !flags.Changed("vault") || (hasSigner && !flags.Changed("vault-signer")) {
		g, err := fetchGroup(cmd, group)
		if err != nil {
			return vault, signer, err
		}
		vault = g.QuoteVault
		if signer, err = g.VaultSigner(group, appCtx.Cluster().CypherProgramID); err != nil {
			return vault, signer, err
		}
	}
	vault, err := pubkeyFlag(cmd, "vault", vault)
	if err != nil {
		return vault, signer, err
	}
	if hasSigner {
		signer, err = pubkeyFlag(cmd, "vault-signer", signer)
	}
	return vault, signer, err
}

func fetchGroup(cmd *cobra.Command, group solana.PublicKey) (examplecpi.CypherGroup, error) {
	p, err := appCtx.Provider()
	if err != nil {
		return examplecpi.CypherGroup{}, err
	}
	g, err := examplecpi.FetchCypherGroup(cmd.Context(), p.RPC(), group, appCtx.Cluster().CypherProgramID)
	if err != nil {
		return g, fmt.Errorf("read cypher group: %w", err)
	}
	return g, nil
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Show the quote vault and vault signer of a cypher group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := pubkeyFlag(cmd, "group", solana.PublicKey{})
			if err != nil {
				return err
			}
			g, err := fetchGroup(cmd, group)
			if err != nil {
				return err
			}
			signer, err := g.VaultSigner(group, appCtx.Cluster().CypherProgramID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Address: %s\n", group)
			fmt.Fprintf(out, "Quote mint: %s\n", g.QuoteMint)
			fmt.Fprintf(out, "Quote vault: %s\n", g.QuoteVault)
			fmt.Fprintf(out, "Vault signer: %s\n", signer)
			return nil
		},
	}
	cmd.Flags().String("group", "", "cypher group address (required)")
	return cmd
}

func initializeUserCmd() *cobra.Command {
	var uf userFlags
	cmd := &cobra.Command{
		Use:   "initialize-user",
		Short: "Create the wrapper PDA and a cypher user owned by it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, wb, ub, err := uf.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := appCtx.ExampleCPI()
			if err != nil {
				return err
			}
			tx, err := client.InitializeUser(accts, wb, ub, uf.accountNumber).RPC(cmd.Context())
			if err != nil {
				return err
			}
			printSignature(cmd, tx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrapper: %s\n", accts.Wrapper)
			fmt.Fprintf(out, "Cypher user: %s\n", accts.CypherUser)
			return nil
		},
	}
	uf.register(cmd)
	return cmd
}

func depositCmd() *cobra.Command {
	var (
		uf     userFlags
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit quote tokens into the cypher user through the wrapper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, _, _, err := uf.resolve(cmd)
			if err != nil {
				return err
			}
			vault, _, err := groupVault(cmd, accts.CypherGroup)
			if err != nil {
				return err
			}
			source, err := pubkeyFlag(cmd, "source", solana.PublicKey{})
			if err != nil {
				return err
			}
			client, err := appCtx.ExampleCPI()
			if err != nil {
				return err
			}
			tx, err := client.Deposit(examplecpi.DepositAccounts{
				Wrapper:            accts.Wrapper,
				CypherGroup:        accts.CypherGroup,
				CypherUser:         accts.CypherUser,
				CypherPcVault:      vault,
				SourceTokenAccount: source,
				Admin:              accts.Admin,
				CypherProgram:      accts.CypherProgram,
			}, amount).RPC(cmd.Context())
			if err != nil {
				return err
			}
			printSignature(cmd, tx)
			return nil
		},
	}
	uf.register(cmd)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units of the quote token")
	cmd.Flags().String("vault", "", "cypher group quote vault (default: read from the group)")
	cmd.Flags().String("source", "", "quote token account of the wallet (required)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var (
		uf     userFlags
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw quote tokens from the cypher user through the wrapper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, _, _, err := uf.resolve(cmd)
			if err != nil {
				return err
			}
			vault, signer, err := groupVault(cmd, accts.CypherGroup)
			if err != nil {
				return err
			}
			dest, err := pubkeyFlag(cmd, "destination", solana.PublicKey{})
			if err != nil {
				return err
			}
			client, err := appCtx.ExampleCPI()
			if err != nil {
				return err
			}
			tx, err := client.Withdraw(examplecpi.WithdrawAccounts{
				Wrapper:                 accts.Wrapper,
				CypherGroup:             accts.CypherGroup,
				CypherUser:              accts.CypherUser,
				CypherPcVault:           vault,
				VaultSigner:             signer,
				DestinationTokenAccount: dest,
				Admin:                   accts.Admin,
				CypherProgram:           accts.CypherProgram,
			}, amount).RPC(cmd.Context())
			if err != nil {
				return err
			}
			printSignature(cmd, tx)
			return nil
		},
	}
	uf.register(cmd)
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units of the quote token")
	cmd.Flags().String("vault", "", "cypher group quote vault (default: read from the group)")
	cmd.Flags().String("vault-signer", "", "cypher group vault signer (default: derived from the group)")
	cmd.Flags().String("destination", "", "quote token account of the wallet (required)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func wrapperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrapper",
		Short: "Show the wrapper account of the wallet (or --admin) in --group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := pubkeyFlag(cmd, "group", solana.PublicKey{})
			if err != nil {
				return err
			}
			p, err := appCtx.Provider()
			if err != nil {
				return err
			}
			admin, err := pubkeyFlag(cmd, "admin", p.Wallet())
			if err != nil {
				return err
			}
			addr, _, err := examplecpi.DeriveWrapper(group, admin)
			if err != nil {
				return err
			}
			w, err := examplecpi.FetchUserWrapper(cmd.Context(), p.RPC(), addr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Address: %s\n", addr)
			fmt.Fprintf(out, "Admin: %s\n", w.Admin)
			fmt.Fprintf(out, "Bump: %d\n", w.Bump[0])
			return nil
		},
	}
	cmd.Flags().String("group", "", "cypher group address (required)")
	cmd.Flags().String("admin", "", "admin address (default: the wallet)")
	return cmd
}
