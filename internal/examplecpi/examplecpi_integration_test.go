//go:build integration

package examplecpi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExampleCpi_Initialize runs against the cluster named by
// ANCHOR_PROVIDER_URL with the wallet at ANCHOR_WALLET, e.g. under
// `anchor test`.
func TestExampleCpi_Initialize(t *testing.T) {
	tx := initializeFromEnv(t)
	assert.False(t, tx.IsZero())
}
