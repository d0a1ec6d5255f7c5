// Package crypto exposes the minimal key primitives used by examplecpi.
//
// Contents
//
//   - Ed25519 keypair generation in the Solana 64-byte layout (NewKeypair,
//     KeypairFromSeed)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for secret material (Wipe, WipeKey)
//
// # Notes
//
// Keys are returned as solana.PrivateKey so they plug straight into
// transaction signing. Callers should wipe keys they no longer need.
package crypto
