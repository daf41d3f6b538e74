package settlement

import (
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"equityrocket/engine/library"
	"golang.org/x/exp/slices"
)

const (
	KindApprove  = 640900
	KindTransfer = 640902
	KindIssue    = 640904
)

//Kind640900 STATUS:DRAFT
//Used for allowing a ledger (or anyone else) to move settlement funds of the signer
type Kind640900 struct {
	Spender library.Account `json:"spender"`
	Amount  library.Amount  `json:"amount"`
}

//Kind640902 STATUS:DRAFT
//Used for moving settlement funds, Kind640904 is the same for the issuer creating funds
type Kind640902 struct {
	To     library.Account `json:"to"`
	Amount library.Amount  `json:"amount"`
}

// Handles reports whether kind is a settlement transaction.
func Handles(kind int) bool {
	return slices.Contains([]int{KindApprove, KindTransfer, KindIssue}, kind)
}

func (t *Token) HandleEvent(event nostr.Event) error {
	switch event.Kind {
	case KindApprove:
		var u Kind640900
		if err := unmarshal(event, &u); err != nil {
			return err
		}
		t.Approve(event.PubKey, u.Spender, u.Amount)
		return nil
	case KindTransfer:
		var u Kind640902
		if err := unmarshal(event, &u); err != nil {
			return err
		}
		return t.Transfer(event.PubKey, u.To, u.Amount)
	case KindIssue:
		var u Kind640902
		if err := unmarshal(event, &u); err != nil {
			return err
		}
		return t.Issue(event.PubKey, u.To, u.Amount)
	}
	return fmt.Errorf("event %s: kind %d is not a settlement transaction", event.ID, event.Kind)
}

func unmarshal(event nostr.Event, v any) error {
	if err := json.Unmarshal([]byte(event.Content), v); err != nil {
		return fmt.Errorf("event %s kind %d: %w", event.ID, event.Kind, err)
	}
	return nil
}
