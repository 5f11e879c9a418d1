// Package bft implements the generic permissioned Byzantine
// Fault-Tolerant abstractions that adapted-Streamlet (package streamlet)
// specializes: a genesis/base, a notarizable proposal, and a block built
// from a notarized proposal.
package bft

// TwoThirdsThreshold computes the notarization threshold used by most
// permissioned BFT protocols: ceiling(n*2/3).
func TwoThirdsThreshold(n int) int {
	return (n*2 + 2) / 3
}

// Link is satisfied by anything that can sit in a BFT ancestor chain:
// the genesis base and every block built on top of it.
type Link interface {
	N() int
	T() int
	Parent() Link
	// LastFinal returns the last final link in this link's ancestor
	// chain. For the genesis link this is itself.
	LastFinal() Link
}

// Base holds the participant count and notarization threshold shared by
// every link in a chain; embed it in genesis/proposal/block types.
type Base struct {
	n int
	t int
}

func (b Base) N() int { return b.n }
func (b Base) T() int { return b.t }

// Genesis is the genesis link for a permissioned BFT protocol with n
// nodes, of which at least t = TwoThirdsThreshold(n) must sign each
// proposal. It is taken to be notarized, and therefore valid, by
// definition.
type Genesis struct {
	Base
}

// NewGenesis constructs a genesis link for n nodes.
func NewGenesis(n int) *Genesis {
	return &Genesis{Base: Base{n: n, t: TwoThirdsThreshold(n)}}
}

func (g *Genesis) Parent() Link    { return nil }
func (g *Genesis) LastFinal() Link { return g }

// Proposal is a proposal for a BFT protocol: a candidate extension of
// parent that accumulates signatures until notarized.
//
// validate, if non-nil, is consulted by AssertValid — this is how a
// protocol built on top of Proposal plugs in additional validity
// conditions without Go inheritance. streamlet.Proposal does not use it:
// it duplicates the notarization bookkeeping instead, since Go's
// interface covariance prevents a specialized Link from satisfying Link
// here.
type Proposal struct {
	Base
	parent   Link
	signers  map[int]struct{}
	validate func() error
}

// NewProposal constructs a Proposal extending parent. validate may be
// nil, meaning no validity condition beyond notarization.
func NewProposal(parent Link, validate func() error) *Proposal {
	return &Proposal{
		Base:     Base{n: parent.N(), t: parent.T()},
		parent:   parent,
		signers:  make(map[int]struct{}),
		validate: validate,
	}
}

func (p *Proposal) Parent() Link    { return p.parent }
func (p *Proposal) LastFinal() Link { return p }

// AssertValid panics if the proposal fails its validity condition. This
// does not assert that it is notarized.
func (p *Proposal) AssertValid() {
	if p.validate != nil {
		if err := p.validate(); err != nil {
			panic(err)
		}
	}
}

// IsValid reports whether the proposal is valid.
func (p *Proposal) IsValid() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	p.AssertValid()
	return true
}

// AssertNotarized panics unless the proposal is valid and has
// accumulated at least the threshold number of distinct signatures.
func (p *Proposal) AssertNotarized() {
	p.AssertValid()
	if len(p.signers) < p.t {
		panic("bft: proposal is not notarized")
	}
}

// IsNotarized reports whether the proposal is notarized.
func (p *Proposal) IsNotarized() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	p.AssertNotarized()
	return true
}

// AddSignature records that the node with the given index has signed
// this proposal. Repeat signatures from the same index are ignored.
func (p *Proposal) AddSignature(index int) {
	p.signers[index] = struct{}{}
	if len(p.signers) > p.n {
		panic("bft: more distinct signers than participants")
	}
}

// SignatureCount returns the number of distinct signatures recorded.
func (p *Proposal) SignatureCount() int { return len(p.signers) }

// Block is a block for a BFT protocol: the proposer's signature over a
// notarized proposal. Blocks are taken to be notarized, and therefore
// valid, by definition; all validity conditions are enforced when the
// underlying proposal is notarized.
type Block struct {
	Base
	proposal *Proposal
	parent   Link
}

// NewBlock constructs a Block for proposal, which must already be
// notarized.
func NewBlock(proposal *Proposal) *Block {
	proposal.AssertNotarized()
	return &Block{
		Base:     Base{n: proposal.n, t: proposal.t},
		proposal: proposal,
		parent:   proposal.parent,
	}
}

func (b *Block) Proposal() *Proposal { return b.proposal }
func (b *Block) Parent() Link        { return b.parent }

// LastFinal returns the last final link in this block's ancestor chain.
// This default implementation just walks to the genesis block;
// finality-aware protocols such as adapted-Streamlet override this with
// a cheaper, protocol-specific rule.
func (b *Block) LastFinal() Link {
	if b.parent == nil {
		return b
	}
	return b.parent.LastFinal()
}
