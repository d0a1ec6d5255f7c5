// Package commands defines the examplecpi CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - initialize        Call example-cpi's initialize and print the signature
//   - initialize-user   Create the wrapper PDA and its cypher user
//   - deposit           Deposit quote tokens through the wrapper
//   - withdraw          Withdraw quote tokens through the wrapper
//   - wrapper           Show the wrapper account of an admin
//   - faucet            Mint devnet quote tokens into a token account
//   - airdrop           Request SOL from the cluster
//   - balance           Print a SOL balance
//   - wallet            Create, import or show the encrypted local wallet
//   - history           List transactions sent from this machine
//
// # Implementation
//
// The root command loads the configuration (file, ANCHOR_* and EXAMPLECPI_*
// environment, flags), builds the logger and an app.Wire before any
// subcommand runs. Cluster clients inside the Wire are built on first use,
// so wallet and history commands work offline.
package commands
