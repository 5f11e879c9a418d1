// Package streamlet implements the adapted-Streamlet chain model and
// node state machine: a permissioned BFT protocol whose finality rule is
// three blocks proposed in three consecutive epochs.
package streamlet

import "github.com/Electric-Coin-Company/simtfl-sim/internal/bft"

// Link is satisfied by every link in a Streamlet chain: the genesis and
// every block built on top of it. It extends bft.Link's shape with the
// epoch/length fields Streamlet's finality rule and tip-selection order
// need.
type Link interface {
	N() int
	T() int
	Parent() Link
	LastFinal() Link
	Epoch() int
	Length() int
}

// Preceq reports whether a is an ancestor of (or equal to) b, walking
// b's parent chain by identity. Two distinct Links are never equal even
// if they otherwise look alike — Link values are always pointers, so Go
// interface equality already gives the referential semantics this needs.
func Preceq(a, b Link) bool {
	for cur := b; cur != nil; cur = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// Genesis is the genesis block for adapted-Streamlet with n nodes.
type Genesis struct {
	n, t int
}

// NewGenesis constructs a genesis block for n nodes.
func NewGenesis(n int) *Genesis {
	return &Genesis{n: n, t: bft.TwoThirdsThreshold(n)}
}

func (g *Genesis) N() int         { return g.n }
func (g *Genesis) T() int         { return g.t }
func (g *Genesis) Parent() Link   { return nil }
func (g *Genesis) LastFinal() Link { return g }
func (g *Genesis) Epoch() int     { return 0 }
func (g *Genesis) Length() int    { return 0 }

// ProposerForEpoch returns the index of the node that proposes in the
// given epoch, rotating through all n nodes.
func (g *Genesis) ProposerForEpoch(epoch int) int {
	if epoch <= 0 {
		panic("streamlet: epoch must be positive")
	}
	return (epoch - 1) % g.n
}

// Proposal is an adapted-Streamlet proposal: a candidate block extending
// parent, for the given epoch, which must be after the parent's epoch.
//
// Notarization bookkeeping (signers, threshold) duplicates
// bft.Proposal's algorithm directly rather than embedding it: Go's
// interface method-return covariance means a Link (streamlet) cannot
// satisfy bft.Link (their Parent/LastFinal return types differ), so
// bft.Proposal cannot be constructed with a streamlet Link as its
// parent.
type Proposal struct {
	parent  Link
	epoch   int
	n, t    int
	signers map[int]struct{}

	// block caches the canonical Block built from this proposal once it
	// is first notarized. Every node handling ballots for this proposal
	// shares the same *Proposal pointer (messages are delivered by
	// reference, not serialized); without this cache, two nodes that
	// independently observe the notarization threshold being reached
	// would each construct their own distinct *Block for the same
	// logical block, and Preceq's identity-based ancestor check would
	// then see them as unrelated, reporting a safety violation that
	// never actually happened.
	block *Block
}

// NewProposal constructs a Proposal extending parent for the given
// epoch. Panics if epoch is not after parent's epoch.
func NewProposal(parent Link, epoch int) *Proposal {
	if epoch <= parent.Epoch() {
		panic("streamlet: proposal epoch must be greater than parent epoch")
	}
	return &Proposal{
		parent:  parent,
		epoch:   epoch,
		n:       parent.N(),
		t:       parent.T(),
		signers: make(map[int]struct{}),
	}
}

func (p *Proposal) Parent() Link { return p.parent }
func (p *Proposal) Epoch() int   { return p.epoch }
func (p *Proposal) N() int       { return p.n }
func (p *Proposal) T() int       { return p.t }

// AddSignature records that the node with the given index has signed
// this proposal. Repeat signatures from the same index are ignored.
func (p *Proposal) AddSignature(index int) {
	p.signers[index] = struct{}{}
	if len(p.signers) > p.n {
		panic("streamlet: more distinct signers than participants")
	}
}

// SignatureCount returns the number of distinct signatures recorded.
func (p *Proposal) SignatureCount() int { return len(p.signers) }

// IsNotarized reports whether the proposal has accumulated at least the
// threshold number of distinct signatures.
func (p *Proposal) IsNotarized() bool { return len(p.signers) >= p.t }

// AssertNotarized panics unless the proposal is notarized.
func (p *Proposal) AssertNotarized() {
	if !p.IsNotarized() {
		panic("streamlet: proposal is not notarized")
	}
}

// Block is an adapted-Streamlet block: a notarized Proposal, taken to be
// notarized and valid by definition (notarization is enforced by the
// constructor).
type Block struct {
	proposal  *Proposal
	epoch     int
	length    int
	parent    Link
	n, t      int
	lastFinal Link
}

// NewBlock returns the canonical Block for proposal, which must already
// be notarized. Calling NewBlock more than once for the same proposal
// (as happens when multiple nodes independently observe it crossing the
// notarization threshold) returns the same *Block every time rather than
// constructing a fresh one — see the doc comment on Proposal.block.
func NewBlock(proposal *Proposal) *Block {
	if proposal.block != nil {
		return proposal.block
	}
	proposal.AssertNotarized()
	b := &Block{
		proposal: proposal,
		epoch:    proposal.epoch,
		parent:   proposal.parent,
		n:        proposal.n,
		t:        proposal.t,
	}
	b.length = b.parent.Length() + 1
	b.lastFinal = b.computeLastFinal()
	proposal.block = b
	return b
}

func (b *Block) N() int          { return b.n }
func (b *Block) T() int          { return b.t }
func (b *Block) Parent() Link    { return b.parent }
func (b *Block) Epoch() int      { return b.epoch }
func (b *Block) Length() int     { return b.length }
func (b *Block) Proposal() *Proposal { return b.proposal }

// LastFinal returns the last final block in this block's ancestor chain:
// the middle block of the last group of three proposed in consecutive
// epochs. Computed once at construction and cached.
func (b *Block) LastFinal() Link { return b.lastFinal }

func (b *Block) computeLastFinal() Link {
	var last Link = b
	if last.Parent() == nil {
		return last
	}
	middle := last.Parent()
	if middle.Parent() == nil {
		return middle
	}
	first := middle.Parent()
	for {
		if first.Parent() == nil {
			return first
		}
		if first.Epoch()+1 == middle.Epoch() && middle.Epoch()+1 == last.Epoch() {
			return middle
		}
		first, middle, last = first.Parent(), first, middle
	}
}
