package governance

import (
	"equityrocket/engine/library"
)

type Kind string

const (
	KindAdd     Kind = "add"
	KindDismiss Kind = "dismiss"
)

// Add asks to register Target as a partner with a fresh vesting allocation.
type Add struct {
	Target         library.Account `json:"target"`
	Tokens         library.Amount  `json:"tokens"`
	CliffSeconds   int64           `json:"cliff_seconds"`
	VestingSeconds int64           `json:"vesting_seconds"`
}

// Dismiss asks to remove Target from the partners.
type Dismiss struct {
	Target library.Account `json:"target"`
}

// Proposal carries exactly one of Add or Dismiss. Proposals are never deleted and ids are
// never reused.
type Proposal struct {
	ID         int64                        `json:"id"`
	Add        *Add                         `json:"add,omitempty"`
	Dismiss    *Dismiss                     `json:"dismiss,omitempty"`
	Proposer   library.Account              `json:"proposer"`
	CreatedAt  library.Timestamp            `json:"created_at"`
	VotesFor   map[library.Account]struct{} `json:"votes_for"`
	Executed   bool                         `json:"executed"`
	ExecutedAt library.Timestamp            `json:"executed_at,omitempty"`
}

func (p Proposal) Kind() Kind {
	if p.Add != nil {
		return KindAdd
	}
	return KindDismiss
}

func (p Proposal) Target() library.Account {
	if p.Add != nil {
		return p.Add.Target
	}
	if p.Dismiss != nil {
		return p.Dismiss.Target
	}
	return ""
}

func (p Proposal) Votes() int {
	return len(p.VotesFor)
}

func (p Proposal) HasVoted(account library.Account) bool {
	_, ok := p.VotesFor[account]
	return ok
}

func (p Proposal) clone() Proposal {
	c := p
	c.VotesFor = make(map[library.Account]struct{}, len(p.VotesFor))
	for account := range p.VotesFor {
		c.VotesFor[account] = struct{}{}
	}
	return c
}
