package ledger

import (
	"fmt"

	"equityrocket/engine/library"
	"equityrocket/state/governance"
	"equityrocket/state/marketplace"
	"equityrocket/state/vesting"
)

// FoundingAllocation lets the founder hand out the initial equity. It is only available until
// the first proposal is created, after that every new partner goes through governance.
func (l *Ledger) FoundingAllocation(caller, partner library.Account, tokens library.Amount, cliffSeconds, vestingSeconds int64, at library.Timestamp) error {
	err := l.mutate("foundingAllocation", at, func(s *state, now library.Timestamp) error {
		if caller != l.company.Founder || !s.Founding {
			return fmt.Errorf("%w: founding allocations are closed to %s", library.ErrNotAPartner, caller)
		}
		if err := vesting.ValidateWindow(now, cliffSeconds, vestingSeconds); err != nil {
			return err
		}
		return s.admit(partner, tokens, cliffSeconds, vestingSeconds, now)
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: founder allocated %s tokens to %s", l.company.Symbol, library.FormatAmount(tokens, l.Decimals()), partner), 4)
	}
	return err
}

func (l *Ledger) CreateAddProposal(caller, target library.Account, tokens library.Amount, cliffSeconds, vestingSeconds int64, at library.Timestamp) (id int64, err error) {
	err = l.mutate("createAddProposal", at, func(s *state, now library.Timestamp) error {
		if err := s.requirePartner(caller); err != nil {
			return err
		}
		if s.Table.IsPartner(target) {
			return fmt.Errorf("%w: %s", library.ErrTargetAlreadyPartner, target)
		}
		if _, err := library.AddAmounts(s.Table.TotalSupply, tokens); err != nil {
			return err
		}
		// the window is measured from execution, which is never earlier than now
		if err := vesting.ValidateWindow(now, cliffSeconds, vestingSeconds); err != nil {
			return err
		}
		p := s.Proposals.CreateAdd(caller, governance.Add{
			Target:         target,
			Tokens:         tokens,
			CliffSeconds:   cliffSeconds,
			VestingSeconds: vestingSeconds,
		}, now)
		s.Founding = false
		id = p.ID
		return nil
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: proposal %d to add %s", l.company.Symbol, id, target), 4)
	}
	return
}

func (l *Ledger) CreateDismissProposal(caller, target library.Account, at library.Timestamp) (id int64, err error) {
	err = l.mutate("createDismissProposal", at, func(s *state, now library.Timestamp) error {
		if err := s.requirePartner(caller); err != nil {
			return err
		}
		if !s.Table.IsPartner(target) {
			return fmt.Errorf("%w: %s", library.ErrTargetNotFound, target)
		}
		p := s.Proposals.CreateDismiss(caller, governance.Dismiss{Target: target}, now)
		s.Founding = false
		id = p.ID
		return nil
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: proposal %d to dismiss %s", l.company.Symbol, id, target), 4)
	}
	return
}

func (l *Ledger) VoteAddProposal(caller library.Account, id int64, at library.Timestamp) (VoteResult, error) {
	return l.vote("voteAdd", governance.KindAdd, caller, id, at)
}

func (l *Ledger) VoteDismissProposal(caller library.Account, id int64, at library.Timestamp) (VoteResult, error) {
	return l.vote("voteDismiss", governance.KindDismiss, caller, id, at)
}

// vote records a vote and executes the proposal in the same step once the votes are a strict
// majority of the current partners. If execution fails the vote is not recorded either.
func (l *Ledger) vote(op string, kind governance.Kind, caller library.Account, id int64, at library.Timestamp) (result VoteResult, err error) {
	err = l.mutate(op, at, func(s *state, now library.Timestamp) error {
		if err := s.requirePartner(caller); err != nil {
			return err
		}
		p, err := s.Proposals.Vote(id, kind, caller)
		if err != nil {
			return err
		}
		result.Proposal = p
		if !governance.QuorumReached(p.Votes(), len(s.Table.Partners)) {
			return nil
		}
		if err := s.execute(p, now); err != nil {
			return err
		}
		if err := s.Proposals.MarkExecuted(id, now); err != nil {
			return err
		}
		result.Proposal.Executed, result.Proposal.ExecutedAt = true, now
		result.Executed = true
		return nil
	})
	if err == nil && result.Executed {
		library.LogCLI(fmt.Sprintf("%s: executed %s proposal %d for %s", l.company.Symbol, kind, id, result.Proposal.Target()), 4)
	}
	return
}

func (s *state) execute(p governance.Proposal, now library.Timestamp) error {
	switch p.Kind() {
	case governance.KindAdd:
		return s.admit(p.Add.Target, p.Add.Tokens, p.Add.CliffSeconds, p.Add.VestingSeconds, now)
	case governance.KindDismiss:
		partner, ok := s.Table.Partner(p.Dismiss.Target)
		if !ok {
			return fmt.Errorf("%w: %s", library.ErrTargetNotFound, p.Dismiss.Target)
		}
		// Vested but unclaimed tokens stay with the partner as a free balance.
		if err := s.burn(partner.Account, partner.Vesting.Unvested(now)); err != nil {
			return err
		}
		return s.Table.RemovePartner(partner.Account)
	}
	return fmt.Errorf("proposal %d has no payload", p.ID)
}

// ClaimEquity releases whatever the caller's schedule has unlocked since the last claim.
func (l *Ledger) ClaimEquity(caller library.Account, at library.Timestamp) (claimed library.Amount, err error) {
	err = l.mutate("claimEquity", at, func(s *state, now library.Timestamp) error {
		partner, ok := s.Table.Partner(caller)
		if !ok {
			return fmt.Errorf("%w: %s", library.ErrNotAPartner, caller)
		}
		if claimed, err = partner.Vesting.Claim(now); err != nil {
			return err
		}
		return s.Table.UpdatePartner(partner)
	})
	return
}

// Transfer moves free tokens between accounts.
func (l *Ledger) Transfer(from, to library.Account, amount library.Amount, at library.Timestamp) error {
	return l.mutate("transfer", at, func(s *state, now library.Timestamp) error {
		if to == "" {
			return fmt.Errorf("%w: transfer from %s has no recipient", library.ErrTargetNotFound, from)
		}
		if err := s.requireFree(from, amount); err != nil {
			return err
		}
		return s.transfer(from, to, amount)
	})
}

// SellEquity escrows tokens from the caller's free balance into an offer priced at price units
// of the settlement asset for the whole lot.
func (l *Ledger) SellEquity(caller library.Account, tokens, price library.Amount, at library.Timestamp) (offer marketplace.SellOffer, err error) {
	err = l.mutate("sellEquity", at, func(s *state, now library.Timestamp) error {
		if tokens == 0 {
			return fmt.Errorf("%w: an offer must escrow at least one unit", library.ErrInsufficientBalance)
		}
		if err := s.requireFree(caller, tokens); err != nil {
			return err
		}
		if offer, err = s.Offers.Create(caller, tokens, price, now); err != nil {
			return err
		}
		return s.Table.Debit(caller, tokens)
	})
	return
}

// BuyEquity fills the open offer of seller. The buyer must have approved the ledger for the
// price on the settlement asset beforehand.
func (l *Ledger) BuyEquity(buyer, seller library.Account, at library.Timestamp) (offer marketplace.SellOffer, err error) {
	err = l.mutate("buyEquity", at, func(s *state, now library.Timestamp) error {
		if offer, err = s.Offers.Fill(seller, buyer, now); err != nil {
			return err
		}
		s.Table.Credit(buyer, offer.TokensEscrowed)
		s.Yield.Move(seller, buyer, offer.TokensEscrowed)
		return l.settlement.TransferFrom(l.company.Ref, buyer, seller, offer.PriceTotal)
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: %s bought %s tokens from %s", l.company.Symbol, buyer, library.FormatAmount(offer.TokensEscrowed, l.Decimals()), seller), 4)
	}
	return
}

// CancelSellOffer returns the escrowed tokens to the seller.
func (l *Ledger) CancelSellOffer(seller library.Account, at library.Timestamp) (offer marketplace.SellOffer, err error) {
	err = l.mutate("cancelSellOffer", at, func(s *state, now library.Timestamp) error {
		if offer, err = s.Offers.Cancel(seller, now); err != nil {
			return err
		}
		s.Table.Credit(seller, offer.TokensEscrowed)
		return nil
	})
	return
}

// DepositRevenue pulls amount of the settlement asset from the caller into the yield pool.
func (l *Ledger) DepositRevenue(caller library.Account, amount library.Amount, at library.Timestamp) error {
	err := l.mutate("depositRevenue", at, func(s *state, now library.Timestamp) error {
		if amount == 0 {
			return fmt.Errorf("%w: nothing deposited", library.ErrInsufficientBalance)
		}
		if err := s.Yield.Deposit(amount, s.Table.TotalSupply); err != nil {
			return err
		}
		return l.settlement.TransferFrom(l.company.Ref, caller, l.company.Ref, amount)
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: %s deposited %s %s", l.company.Symbol, caller, library.FormatAmount(amount, l.settlement.Decimals()), l.settlement.Symbol()), 4)
	}
	return err
}

// WithdrawUSDT pays the caller their accumulated share of deposits.
func (l *Ledger) WithdrawUSDT(caller library.Account, at library.Timestamp) (paid library.Amount, err error) {
	err = l.mutate("withdrawUSDT", at, func(s *state, now library.Timestamp) error {
		if paid, err = s.Yield.Withdraw(caller, s.weight(caller)); err != nil {
			return err
		}
		return l.settlement.Transfer(l.company.Ref, caller, paid)
	})
	if err == nil {
		library.LogCLI(fmt.Sprintf("%s: %s withdrew %s %s", l.company.Symbol, caller, library.FormatAmount(paid, l.settlement.Decimals()), l.settlement.Symbol()), 4)
	}
	return
}
