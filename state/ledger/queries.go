package ledger

import (
	"equityrocket/engine/library"
	"equityrocket/state/captable"
	"equityrocket/state/governance"
)

func (l *Ledger) Name() string {
	return l.company.Name
}

func (l *Ledger) Symbol() string {
	return l.company.Symbol
}

func (l *Ledger) Decimals() uint8 {
	return l.load().Table.Decimals
}

func (l *Ledger) TotalSupply() library.Amount {
	return l.load().Table.TotalSupply
}

func (l *Ledger) BalanceOf(account library.Account) library.Amount {
	return l.load().Table.BalanceOf(account)
}

// FreeBalanceOf is the part of the balance that can be transferred or offered for sale.
func (l *Ledger) FreeBalanceOf(account library.Account) library.Amount {
	return l.load().free(account)
}

// GetPartners lists the current partners in the order they joined.
func (l *Ledger) GetPartners() []library.Account {
	return l.load().Table.PartnerAccounts()
}

func (l *Ledger) Partner(account library.Account) (captable.Partner, bool) {
	return l.load().Table.Partner(account)
}

// Unlockable is how much of the partner's allocation the vesting curve has released at t,
// including what was already claimed.
func (l *Ledger) Unlockable(account library.Account, t library.Timestamp) library.Amount {
	p, ok := l.load().Table.Partner(account)
	if !ok {
		return 0
	}
	return p.Vesting.Unlockable(t)
}

func (l *Ledger) GetAllSellEquityDetails() []OfferDetails {
	offers := l.load().Offers.List()
	details := make([]OfferDetails, 0, len(offers))
	for _, o := range offers {
		details = append(details, OfferDetails{Seller: o.Seller, TokensEscrowed: o.TokensEscrowed, Price: o.PriceTotal})
	}
	return details
}

func (l *Ledger) NextProposalID() int64 {
	return l.load().Proposals.NextID()
}

// AddProposals returns the payload of add proposal id, or the zero value.
func (l *Ledger) AddProposals(id int64) governance.Add {
	add, _ := l.load().Proposals.AddProposal(id)
	return add
}

// DismissProposals returns the payload of dismiss proposal id, or the zero value.
func (l *Ledger) DismissProposals(id int64) governance.Dismiss {
	dismiss, _ := l.load().Proposals.DismissProposal(id)
	return dismiss
}

func (l *Ledger) Proposal(id int64) (governance.Proposal, error) {
	return l.load().Proposals.Get(id)
}

func (l *Ledger) OpenProposals() []governance.Proposal {
	return l.load().Proposals.Open()
}

// Withdrawable is the settlement amount account could withdraw right now.
func (l *Ledger) Withdrawable(account library.Account) library.Amount {
	s := l.load()
	return s.Yield.Withdrawable(account, s.weight(account))
}

// UndistributedPool is the settlement balance held by the ledger for holders.
func (l *Ledger) UndistributedPool() library.Amount {
	return l.load().Yield.Pool
}

// FoundingOpen is true until the first proposal is created.
func (l *Ledger) FoundingOpen() bool {
	return l.load().Founding
}

func (l *Ledger) Clock() library.Timestamp {
	return l.load().Clock
}
