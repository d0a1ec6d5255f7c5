package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// pubkeyFlag parses a base58 address flag. An empty value yields def.
func pubkeyFlag(cmd *cobra.Command, name string, def solana.PublicKey) (solana.PublicKey, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if s == "" {
		if def.IsZero() {
			return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
		}
		return def, nil
	}
	pub, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return pub, nil
}

// parseSOL converts a decimal SOL amount to lamports.
func parseSOL(s string) (uint64, error) {
	sol, err := strconv.ParseFloat(s, 64)
	if err != nil || sol <= 0 || math.IsInf(sol, 0) {
		return 0, fmt.Errorf("invalid SOL amount %q", s)
	}
	return uint64(math.Round(sol * float64(solana.LAMPORTS_PER_SOL))), nil
}

func formatSOL(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/float64(solana.LAMPORTS_PER_SOL), 'f', -1, 64)
}
