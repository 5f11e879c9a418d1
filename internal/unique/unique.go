// Package unique provides a referential identity token, the Go rendering
// of simtfl's Unique class: two tokens are equal iff they are the very
// same token, never by structural content. We back it with a
// chainhash.Hash so it is comparable, zero-value-safe to print, and
// exercises the same hash type the teacher uses for block/tx identifiers
// — not because it carries any real cryptographic meaning (it doesn't;
// Non-goals exclude real cryptography).
package unique

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var counter uint64

// Token is a unique, comparable value. The zero Token is not valid; use
// New to mint one.
type Token struct {
	hash chainhash.Hash
}

// New mints a fresh Token, distinct from every other Token ever minted
// in this process.
func New() Token {
	n := atomic.AddUint64(&counter, 1)
	var h chainhash.Hash
	binary.LittleEndian.PutUint64(h[:8], n)
	return Token{hash: h}
}

// Hash returns the token's backing chainhash.Hash.
func (t Token) Hash() chainhash.Hash { return t.hash }

// Equal reports whether two tokens are the same identity.
func (t Token) Equal(o Token) bool { return t.hash == o.hash }

func (t Token) String() string { return t.hash.String()[:12] }
