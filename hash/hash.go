// Package hash computes the headers hash: after tokenizing completes,
// absorb every non-Received header's canonical name in wire order into a
// blake2b-256 digest and hex-encode the result.
package hash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/flashmob/go-mailheader/header"
)

// Finalizer incrementally absorbs header names and finalizes to a
// hex-encoded 32-byte digest.
type Finalizer struct {
	h []byte
	// state accumulates absorbed bytes; blake2b.Sum256 is invoked once at
	// Finalize time since the core's per-task hash runs once per parse.
}

// NewFinalizer returns a ready-to-use Finalizer.
func NewFinalizer() *Finalizer {
	return &Finalizer{}
}

// Absorb appends name's bytes to the pending digest input.
func (f *Finalizer) Absorb(name string) {
	f.h = append(f.h, name...)
}

// Finalize computes the 32-byte unkeyed blake2b digest over everything
// absorbed so far and hex-encodes it.
func (f *Finalizer) Finalize() string {
	sum := blake2b.Sum256(f.h)
	return hex.EncodeToString(sum[:])
}

// ComputeHeadersHash walks table in wire order, absorbing every header
// whose Type does not include header.Received, and returns the finalized
// hex digest. Received is excluded because trace headers are appended by
// intermediate MTAs and would make the hash non-reproducible across hops.
func ComputeHeadersHash(table *header.Table) string {
	f := NewFinalizer()
	for _, h := range table.All() {
		if h.Name == "" || h.Type.Has(header.Received) {
			continue
		}
		f.Absorb(h.Name)
	}
	return f.Finalize()
}
