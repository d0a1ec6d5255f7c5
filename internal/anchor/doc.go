// Package anchor is the client side of the Anchor framework conventions.
//
// It computes instruction and account discriminators, locates an Anchor
// workspace (Anchor.toml plus target/idl), resolves programs by name, and
// builds and sends program instructions through a domain.TxSender.
//
// Typical use mirrors the TypeScript client:
//
//	ws, _ := anchor.LoadWorkspace(".")
//	spec, _ := ws.Program("ExampleCpi")
//	sig, err := anchor.NewProgram(spec, provider).Method("initialize").RPC(ctx)
package anchor
