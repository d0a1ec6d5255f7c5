// Package examplecpi is a typed client for the example-cpi program, which
// wraps cypher margin accounts behind a program-derived "account wrapper"
// owned by an admin.
//
// It knows the program and cypher addresses per cluster, derives the wrapper
// and cypher user PDAs, builds the initialize, initialize_user, deposit and
// withdraw instructions with the account order the program expects, and
// decodes UserWrapper accounts.
//
// CypherClient builds calls to cypher itself: user accounts, delegation,
// quote collateral and serum open orders. CypherGroup decodes the part of a
// group account that locates the quote vault and its signer.
package examplecpi
