// Package app wires application dependencies for the CLI.
//
// It builds the stores and wallet service from Config up front, and the
// provider, workspace and program handles lazily, since only some commands
// talk to a cluster. Transactions sent through a program handle obtained
// from Wire are recorded in the local signature history.
package app
