package crypto

import (
	"runtime"

	"github.com/gagliardetto/solana-go"
)

// Wipe zeroes b. This is best-effort; the Go runtime may have copied the
// bytes elsewhere.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// WipeKey zeroes a private key in place.
func WipeKey(k solana.PrivateKey) { Wipe(k) }
