// Package bc implements the best-chain ledger model: transactions with
// transparent and shielded halves, a context for contextual validity
// checking, and non-contextually-valid blocks.
package bc

import "github.com/btcsuite/btcd/btcutil"

// TXO is a transparent transaction output, usable as a set element once
// produced by a transaction's constructor. Identity follows the
// producing transaction and output index, matching the frozen dataclass
// the ledger model is grounded on.
type TXO struct {
	Tx    *Transaction
	Index int
	Value btcutil.Amount
}

// Note is a shielded note. Unlike in the real protocol this conflates
// notes, note commitments, and nullifiers — sufficient here because no
// actual privacy property is being modeled. A Note's identity is its
// pointer, mirroring the non-frozen dataclass it is grounded on: two
// notes of equal value are still distinct notes.
type Note struct {
	Value btcutil.Amount
}

// Transaction is a transaction for the best-chain protocol. Construct it
// with New, never directly: its outputs' identities are tied to the
// constructed transaction.
type Transaction struct {
	transparentInputs  []TXO
	transparentOutputs []TXO
	shieldedInputs     []*Note
	shieldedOutputs    []*Note
	fee                btcutil.Amount
	anchor             *Context
	issuance           btcutil.Amount
}

// New constructs a Transaction with the given transparent inputs,
// transparent output values, shielded inputs, shielded output values,
// fee, anchor, and (for a coinbase transaction) issuance.
//
// transparentInputs must be TXOs obtained from another Transaction's
// TransparentOutput, and shieldedInputs must be Notes obtained from
// another Transaction's ShieldedOutput.
//
// anchor must be a Context such that anchor.CanSpend(shieldedInputs); it
// must be nil if there are no shielded inputs. The anchor is not
// retained for mutation — callers must not mutate it after passing it
// in (Copy it first if needed).
//
// For a coinbase transaction, pass nil/empty transparentInputs and
// shieldedInputs, and pass fee as the negative of the total fees paid by
// other transactions in the same block.
//
// New panics if any of the best-chain construction invariants are
// violated: these are caller bugs, not recoverable runtime conditions.
func New(
	transparentInputs []TXO,
	transparentOutputValues []btcutil.Amount,
	shieldedInputs []*Note,
	shieldedOutputValues []btcutil.Amount,
	fee btcutil.Amount,
	anchor *Context,
	issuance btcutil.Amount,
) *Transaction {
	coinbase := len(transparentInputs)+len(shieldedInputs) == 0

	if issuance < 0 {
		panic("bc: issuance must be non-negative")
	}
	if fee < 0 && !coinbase {
		panic("bc: fee must be non-negative for a non-coinbase transaction")
	}
	if issuance != 0 && !coinbase {
		panic("bc: only a coinbase transaction may have nonzero issuance")
	}
	for _, v := range transparentOutputValues {
		if v < 0 {
			panic("bc: transparent output value must be non-negative")
		}
	}
	for _, v := range shieldedOutputValues {
		if v < 0 {
			panic("bc: shielded output value must be non-negative")
		}
	}

	var inSum btcutil.Amount
	for _, txin := range transparentInputs {
		inSum += txin.Value
	}
	for _, note := range shieldedInputs {
		inSum += note.Value
	}
	var outSum btcutil.Amount
	for _, v := range transparentOutputValues {
		outSum += v
	}
	for _, v := range shieldedOutputValues {
		outSum += v
	}
	if inSum+issuance != outSum+fee {
		panic("bc: transaction does not conserve value")
	}

	if len(shieldedInputs) == 0 {
		if anchor != nil {
			panic("bc: anchor must be nil when there are no shielded inputs")
		}
	} else {
		if anchor == nil || !anchor.CanSpend(shieldedInputs) {
			panic("bc: anchor does not permit spending the given shielded inputs")
		}
	}

	tx := &Transaction{
		transparentInputs: transparentInputs,
		shieldedInputs:    shieldedInputs,
		fee:               fee,
		anchor:            anchor,
		issuance:          issuance,
	}
	for i, v := range transparentOutputValues {
		tx.transparentOutputs = append(tx.transparentOutputs, TXO{Tx: tx, Index: i, Value: v})
	}
	for _, v := range shieldedOutputValues {
		tx.shieldedOutputs = append(tx.shieldedOutputs, &Note{Value: v})
	}
	return tx
}

// TransparentInput returns the transparent input TXO at index.
func (tx *Transaction) TransparentInput(index int) TXO { return tx.transparentInputs[index] }

// TransparentOutput returns the transparent output TXO at index.
func (tx *Transaction) TransparentOutput(index int) TXO { return tx.transparentOutputs[index] }

// ShieldedInput returns the shielded input note at index.
func (tx *Transaction) ShieldedInput(index int) *Note { return tx.shieldedInputs[index] }

// ShieldedOutput returns the shielded output note at index.
func (tx *Transaction) ShieldedOutput(index int) *Note { return tx.shieldedOutputs[index] }

// Fee returns the transaction's fee (negative for a coinbase transaction).
func (tx *Transaction) Fee() btcutil.Amount { return tx.fee }

// Issuance returns the amount issued by this transaction (zero unless
// it is a coinbase transaction).
func (tx *Transaction) Issuance() btcutil.Amount { return tx.issuance }

// IsCoinbase reports whether tx has no inputs.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.transparentInputs)+len(tx.shieldedInputs) == 0
}
