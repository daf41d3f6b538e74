package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"equityrocket/engine/library"
)

const (
	KindFoundingAllocation    = 640802
	KindCreateAddProposal     = 640804
	KindCreateDismissProposal = 640806
	KindVoteAdd               = 640808
	KindVoteDismiss           = 640810
	KindClaimEquity           = 640812
	KindSellEquity            = 640814
	KindBuyEquity             = 640816
	KindCancelSellOffer       = 640818
	KindDepositRevenue        = 640820
	KindWithdrawUSDT          = 640822
	KindTransfer              = 640824
)

// Handles reports whether kind is a ledger transaction.
func Handles(kind int) bool {
	return kind >= KindFoundingAllocation && kind <= KindTransfer && kind%2 == 0
}

// HandleEvent applies a signed transaction addressed to this ledger. The caller has already
// routed it here by its company tag. Signature checks happen before routing.
func (l *Ledger) HandleEvent(event nostr.Event) (s Snapshot, e error) {
	caller, at := event.PubKey, library.Timestamp(event.CreatedAt)
	switch event.Kind {
	case KindFoundingAllocation:
		var u Kind640802
		if e = unmarshal(event, &u); e == nil {
			e = requireAccount(u.Partner)
		}
		if e == nil {
			e = l.FoundingAllocation(caller, u.Partner, u.Tokens, u.CliffSeconds, u.VestingSeconds, at)
		}
	case KindCreateAddProposal:
		var u Kind640804
		if e = unmarshal(event, &u); e == nil {
			e = requireAccount(u.Target)
		}
		if e == nil {
			_, e = l.CreateAddProposal(caller, u.Target, u.Tokens, u.CliffSeconds, u.VestingSeconds, at)
		}
	case KindCreateDismissProposal:
		var u Kind640806
		if e = unmarshal(event, &u); e == nil {
			e = requireAccount(u.Target)
		}
		if e == nil {
			_, e = l.CreateDismissProposal(caller, u.Target, at)
		}
	case KindVoteAdd:
		var u Kind640808
		if e = unmarshal(event, &u); e == nil {
			_, e = l.VoteAddProposal(caller, u.ProposalID, at)
		}
	case KindVoteDismiss:
		var u Kind640808
		if e = unmarshal(event, &u); e == nil {
			_, e = l.VoteDismissProposal(caller, u.ProposalID, at)
		}
	case KindClaimEquity:
		_, e = l.ClaimEquity(caller, at)
	case KindSellEquity:
		var u Kind640814
		if e = unmarshal(event, &u); e == nil {
			_, e = l.SellEquity(caller, u.Tokens, u.Price, at)
		}
	case KindBuyEquity:
		var u Kind640816
		if e = unmarshal(event, &u); e == nil {
			_, e = l.BuyEquity(caller, u.Seller, at)
		}
	case KindCancelSellOffer:
		_, e = l.CancelSellOffer(caller, at)
	case KindDepositRevenue:
		var u Kind640820
		if e = unmarshal(event, &u); e == nil {
			e = l.DepositRevenue(caller, u.Amount, at)
		}
	case KindWithdrawUSDT:
		_, e = l.WithdrawUSDT(caller, at)
	case KindTransfer:
		var u Kind640824
		if e = unmarshal(event, &u); e == nil {
			e = requireAccount(u.To)
		}
		if e == nil {
			e = l.Transfer(caller, u.To, u.Amount, at)
		}
	default:
		return s, fmt.Errorf("event %s: kind %d is not a ledger transaction", event.ID, event.Kind)
	}
	if e != nil {
		return s, e
	}
	return l.Snapshot(), nil
}

func unmarshal(event nostr.Event, v any) error {
	if err := json.Unmarshal([]byte(event.Content), v); err != nil {
		return fmt.Errorf("event %s kind %d: %w", event.ID, event.Kind, err)
	}
	return nil
}

func requireAccount(a library.Account) error {
	if !library.ValidAccount(a) {
		return fmt.Errorf("%w: %q is not an account", library.ErrTargetNotFound, a)
	}
	return nil
}
