package ledger

import (
	"equityrocket/engine/library"
	"equityrocket/state/captable"
	"equityrocket/state/governance"
	"equityrocket/state/marketplace"
	"equityrocket/state/yield"
)

// Company is the identity of a ledger. It never changes after founding.
type Company struct {
	ID        library.CompanyID `json:"id"`
	Ref       library.LedgerRef `json:"ledger_ref"`
	Name      string            `json:"name"`
	Symbol    string            `json:"symbol"`
	Founder   library.Account   `json:"founder"`
	FoundedAt library.Timestamp `json:"founded_at"`
}

// Settlement is the fungible asset trades and yield are paid in.
type Settlement interface {
	Symbol() string
	Decimals() uint8
	BalanceOf(holder library.Account) library.Amount
	Transfer(from, to library.Account, amount library.Amount) error
	TransferFrom(spender, from, to library.Account, amount library.Amount) error
}

// OfferDetails is the public view of an open sell offer.
type OfferDetails struct {
	Seller         library.Account `json:"seller"`
	TokensEscrowed library.Amount  `json:"tokens_escrowed"`
	Price          library.Amount  `json:"price"`
}

// VoteResult reports the proposal after a vote and whether that vote executed it.
type VoteResult struct {
	Proposal governance.Proposal
	Executed bool
}

// Snapshot is a committed, read only view of everything a ledger holds.
type Snapshot struct {
	Company   Company            `json:"company"`
	Clock     library.Timestamp  `json:"clock"`
	Founding  bool               `json:"founding_open"`
	Table     *captable.Table    `json:"cap_table"`
	Proposals *governance.Book   `json:"proposals"`
	Offers    *marketplace.Book  `json:"offers"`
	Yield     *yield.Distributor `json:"yield"`
}

//Kind640802 STATUS:DRAFT
//Used by the founder to allocate equity before governance takes over
type Kind640802 struct {
	Partner        library.Account `json:"partner"`
	Tokens         library.Amount  `json:"tokens"`
	CliffSeconds   int64           `json:"cliff_seconds"`
	VestingSeconds int64           `json:"vesting_seconds"`
}

//Kind640804 STATUS:DRAFT
//Used for proposing a new partner
type Kind640804 struct {
	Target         library.Account `json:"target"`
	Tokens         library.Amount  `json:"tokens"`
	CliffSeconds   int64           `json:"cliff_seconds"`
	VestingSeconds int64           `json:"vesting_seconds"`
}

//Kind640806 STATUS:DRAFT
//Used for proposing the dismissal of a partner
type Kind640806 struct {
	Target library.Account `json:"target"`
}

//Kind640808 STATUS:DRAFT
//Used for voting on an add proposal. Kind640810 is the same for dismiss proposals.
type Kind640808 struct {
	ProposalID int64 `json:"proposal_id"`
}

//Kind640814 STATUS:DRAFT
//Used for escrowing tokens in a sell offer
type Kind640814 struct {
	Tokens library.Amount `json:"tokens"`
	Price  library.Amount `json:"price"`
}

//Kind640816 STATUS:DRAFT
//Used for buying the open offer of a seller
type Kind640816 struct {
	Seller library.Account `json:"seller"`
}

//Kind640820 STATUS:DRAFT
//Used for depositing revenue in the settlement asset
type Kind640820 struct {
	Amount library.Amount `json:"amount"`
}

//Kind640824 STATUS:DRAFT
//Used for transferring free tokens to another account
type Kind640824 struct {
	To     library.Account `json:"to"`
	Amount library.Amount  `json:"amount"`
}
