package bc

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/unique"
)

// Block is a block in a best-chain protocol: a parent link, a score
// relative to the parent, and a sequence of transactions.
type Block struct {
	Parent       *Block
	Score        int64
	Transactions []*Transaction
	Hash         unique.Token
}

// NewBlock constructs a Block with the given parent, score added on top
// of the parent's score, and transactions. Use parent=nil for the
// genesis block. transactions must not be modified after construction
// (copy it first if necessary).
//
// Unless allowInvalid is set, NewBlock panics if the block does not
// satisfy the non-contextual consensus rules — constructing an invalid
// block is a caller bug, not a recoverable condition.
func NewBlock(parent *Block, addedScore int64, transactions []*Transaction, allowInvalid bool) *Block {
	score := addedScore
	if parent != nil {
		score += parent.Score
	}
	b := &Block{
		Parent:       parent,
		Score:        score,
		Transactions: transactions,
		Hash:         unique.New(),
	}
	if !allowInvalid {
		b.AssertNoncontextuallyValid()
	}
	return b
}

// AssertNoncontextuallyValid panics unless the non-contextual consensus
// rules hold: the block has at least one transaction, the first
// transaction is the (only) coinbase transaction, and the transaction
// fees sum to zero.
func (b *Block) AssertNoncontextuallyValid() {
	if len(b.Transactions) == 0 {
		panic("bc: block has no transactions")
	}
	if !b.Transactions[0].IsCoinbase() {
		panic("bc: first transaction in block must be coinbase")
	}
	var feeSum btcutil.Amount
	for i, tx := range b.Transactions {
		if i > 0 && tx.IsCoinbase() {
			panic("bc: only the first transaction in a block may be coinbase")
		}
		feeSum += tx.Fee()
	}
	if feeSum != 0 {
		panic("bc: transaction fees in block must sum to zero")
	}
}

// IsNoncontextuallyValid reports whether the non-contextual consensus
// rules hold for this block.
func (b *Block) IsNoncontextuallyValid() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	b.AssertNoncontextuallyValid()
	return true
}
