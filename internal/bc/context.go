package bc

import "github.com/btcsuite/btcd/btcutil"

// Spentness records whether a shielded note is still spendable.
type Spentness int

const (
	// Unspent means the note has been committed but not yet spent.
	Unspent Spentness = iota + 1
	// Spent means the note has been committed and later spent.
	Spent
)

func (s Spentness) String() string {
	switch s {
	case Unspent:
		return "unspent"
	case Spent:
		return "spent"
	default:
		return "unknown"
	}
}

// NoteEntry pairs a committed note with its current spentness.
type NoteEntry struct {
	Note      *Note
	Spentness Spentness
}

// Context checks transactions for contextual validity in a best-chain
// protocol: it tracks the unspent transparent output set and the
// commitment/spentness of every shielded note seen so far.
type Context struct {
	transactions  []*Transaction
	utxoSet       map[TXO]struct{}
	noteOrder     []*Note
	noteStatus    map[*Note]Spentness
	TotalIssuance btcutil.Amount
}

// NewContext constructs an empty Context.
func NewContext() *Context {
	return &Context{
		utxoSet:    make(map[TXO]struct{}),
		noteStatus: make(map[*Note]Spentness),
	}
}

// Transactions returns the transactions added so far, in commitment
// order.
func (c *Context) Transactions() []*Transaction {
	return append([]*Transaction(nil), c.transactions...)
}

// UTXOCount returns the number of currently unspent transparent outputs.
func (c *Context) UTXOCount() int {
	return len(c.utxoSet)
}

// CommittedNotes returns every note added to this context together with
// its current spentness, in the order the notes were committed.
func (c *Context) CommittedNotes() []NoteEntry {
	entries := make([]NoteEntry, len(c.noteOrder))
	for i, n := range c.noteOrder {
		entries[i] = NoteEntry{Note: n, Spentness: c.noteStatus[n]}
	}
	return entries
}

// CanSpend reports whether every note in toSpend is currently unspent in
// this context.
func (c *Context) CanSpend(toSpend []*Note) bool {
	for _, n := range toSpend {
		if c.noteStatus[n] != Unspent {
			return false
		}
	}
	return true
}

// check reports whether tx is valid in this context, and returns the set
// of its transparent inputs (to avoid recomputing it in AddIfValid).
func (c *Context) check(tx *Transaction) (bool, map[TXO]struct{}) {
	txins := make(map[TXO]struct{}, len(tx.transparentInputs))
	for _, txin := range tx.transparentInputs {
		txins[txin] = struct{}{}
	}
	for txin := range txins {
		if _, ok := c.utxoSet[txin]; !ok {
			return false, txins
		}
	}
	if !c.CanSpend(tx.shieldedInputs) {
		return false, txins
	}
	return true, txins
}

// IsValid reports whether tx is valid in this context.
func (c *Context) IsValid(tx *Transaction) bool {
	valid, _ := c.check(tx)
	return valid
}

// AddIfValid adds tx to the context and returns true if it is valid in
// this context. Otherwise the context is left unchanged and false is
// returned.
func (c *Context) AddIfValid(tx *Transaction) bool {
	valid, txins := c.check(tx)
	if !valid {
		return false
	}

	for txin := range txins {
		delete(c.utxoSet, txin)
	}
	for _, out := range tx.transparentOutputs {
		c.utxoSet[out] = struct{}{}
	}

	for _, note := range tx.shieldedInputs {
		c.noteStatus[note] = Spent
	}
	for _, note := range tx.shieldedOutputs {
		if _, exists := c.noteStatus[note]; exists {
			panic("bc: note already committed")
		}
		c.noteStatus[note] = Unspent
		c.noteOrder = append(c.noteOrder, note)
	}

	c.TotalIssuance += tx.issuance
	c.transactions = append(c.transactions, tx)
	return true
}

// Copy returns an independent copy of this context, suitable for use as
// a shielded-spend anchor that the original context can keep mutating
// without affecting the copy.
func (c *Context) Copy() *Context {
	cp := NewContext()
	cp.transactions = append([]*Transaction(nil), c.transactions...)
	for txo := range c.utxoSet {
		cp.utxoSet[txo] = struct{}{}
	}
	cp.noteOrder = append([]*Note(nil), c.noteOrder...)
	for n, s := range c.noteStatus {
		cp.noteStatus[n] = s
	}
	cp.TotalIssuance = c.TotalIssuance
	return cp
}
