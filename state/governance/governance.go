// Package governance keeps the proposal book of a company. It only records proposals and
// votes, applying an executed proposal to the cap table is up to the caller.
package governance

import (
	"fmt"

	"equityrocket/engine/library"
)

// Book is the id indexed sequence of proposals. Proposal n lives at index n.
type Book struct {
	Proposals []Proposal `json:"proposals"`
}

func New() *Book {
	return &Book{}
}

func (b *Book) Clone() *Book {
	c := &Book{Proposals: make([]Proposal, len(b.Proposals))}
	for i, p := range b.Proposals {
		c.Proposals[i] = p.clone()
	}
	return c
}

func (b *Book) NextID() int64 {
	return int64(len(b.Proposals))
}

// QuorumReached is true once the yes votes are a strict majority of the current partner count.
func QuorumReached(votes, partners int) bool {
	return 2*votes > partners
}

func (b *Book) CreateAdd(proposer library.Account, add Add, at library.Timestamp) Proposal {
	return b.create(Proposal{Add: &add, Proposer: proposer, CreatedAt: at})
}

func (b *Book) CreateDismiss(proposer library.Account, dismiss Dismiss, at library.Timestamp) Proposal {
	return b.create(Proposal{Dismiss: &dismiss, Proposer: proposer, CreatedAt: at})
}

func (b *Book) create(p Proposal) Proposal {
	p.ID = b.NextID()
	p.VotesFor = make(map[library.Account]struct{})
	b.Proposals = append(b.Proposals, p)
	return p.clone()
}

func (b *Book) Get(id int64) (Proposal, error) {
	if id < 0 || id >= b.NextID() {
		return Proposal{}, fmt.Errorf("proposal %d: %w", id, library.ErrNotFound)
	}
	return b.Proposals[id].clone(), nil
}

// Vote records a yes vote from voter and returns the updated proposal. Eligibility of the voter
// is checked by the caller.
func (b *Book) Vote(id int64, kind Kind, voter library.Account) (Proposal, error) {
	if id < 0 || id >= b.NextID() {
		return Proposal{}, fmt.Errorf("proposal %d: %w", id, library.ErrNotFound)
	}
	p := &b.Proposals[id]
	if p.Kind() != kind {
		return Proposal{}, fmt.Errorf("proposal %d is a %s proposal, not %s: %w", id, p.Kind(), kind, library.ErrWrongProposalKind)
	}
	if p.Executed {
		return Proposal{}, fmt.Errorf("proposal %d: %w", id, library.ErrAlreadyExecuted)
	}
	if p.HasVoted(voter) {
		return Proposal{}, fmt.Errorf("%s on proposal %d: %w", voter, id, library.ErrAlreadyVoted)
	}
	p.VotesFor[voter] = struct{}{}
	return p.clone(), nil
}

func (b *Book) MarkExecuted(id int64, at library.Timestamp) error {
	if id < 0 || id >= b.NextID() {
		return fmt.Errorf("proposal %d: %w", id, library.ErrNotFound)
	}
	if b.Proposals[id].Executed {
		return fmt.Errorf("proposal %d: %w", id, library.ErrAlreadyExecuted)
	}
	b.Proposals[id].Executed = true
	b.Proposals[id].ExecutedAt = at
	return nil
}

// AddProposal returns the add proposal stored under id, or the zero value when id is unknown
// or holds a dismiss proposal.
func (b *Book) AddProposal(id int64) (Add, bool) {
	if id < 0 || id >= b.NextID() || b.Proposals[id].Add == nil {
		return Add{}, false
	}
	return *b.Proposals[id].Add, true
}

// DismissProposal is the dismiss counterpart of AddProposal.
func (b *Book) DismissProposal(id int64) (Dismiss, bool) {
	if id < 0 || id >= b.NextID() || b.Proposals[id].Dismiss == nil {
		return Dismiss{}, false
	}
	return *b.Proposals[id].Dismiss, true
}

// Open lists proposals that have not executed, oldest first.
func (b *Book) Open() (open []Proposal) {
	for _, p := range b.Proposals {
		if !p.Executed {
			open = append(open, p.clone())
		}
	}
	return
}
