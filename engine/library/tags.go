package library

import (
	"encoding/hex"

	"github.com/nbd-wtf/go-nostr"
)

func GetFirstTag(e nostr.Event, startsWith string) (string, bool) {
	for _, tag := range e.Tags {
		if tag.StartsWith([]string{startsWith}) {
			if len(tag) > 1 {
				return tag[1], true
			}
		}
	}
	return "", false
}

// GetCompany returns the ledger reference a transaction is addressed to.
func GetCompany(e nostr.Event) (LedgerRef, bool) {
	ref, ok := GetFirstTag(e, "company")
	if !ok || len(ref) != 64 {
		return "", false
	}
	return ref, true
}

// ValidAccount reports whether a is a hex encoded 32 byte public key.
func ValidAccount(a Account) bool {
	if len(a) != 64 {
		return false
	}
	_, err := hex.DecodeString(a)
	return err == nil
}
