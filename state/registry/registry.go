// Package registry assigns sequential ids to companies and owns the ledger of each one.
package registry

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"

	"equityrocket/engine/library"
	"equityrocket/state/ledger"
)

const KindFoundCompany = 640800

//Kind640800 STATUS:DRAFT
//Used for founding a new company, the signer becomes its founder
type Kind640800 struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

const maxNameLength = 64

var symbolFormat = regexp.MustCompile(`^[A-Z0-9]{1,11}$`)

type Registry struct {
	mu         *deadlock.Mutex
	decimals   uint8
	settlement ledger.Settlement
	ledgers    []*ledger.Ledger
	byRef      map[library.LedgerRef]*ledger.Ledger
}

// New returns an empty registry. Every ledger it creates uses decimals for its equity token
// and settles trades and yield in settlement.
func New(decimals uint8, settlement ledger.Settlement) *Registry {
	return &Registry{
		mu:         &deadlock.Mutex{},
		decimals:   decimals,
		settlement: settlement,
		byRef:      make(map[library.LedgerRef]*ledger.Ledger),
	}
}

// ValidateName checks the format of a company name and ticker symbol.
func ValidateName(name, symbol string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 0 || trimmed != name {
		return fmt.Errorf("name %q must be non-empty without surrounding spaces: %w", name, library.ErrDuplicateOrInvalidName)
	}
	if !utf8.ValidString(name) || utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must be valid UTF-8 of at most %d characters: %w", maxNameLength, library.ErrDuplicateOrInvalidName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains control characters: %w", library.ErrDuplicateOrInvalidName)
		}
	}
	if !symbolFormat.MatchString(symbol) {
		return fmt.Errorf("symbol %q must be 1 to 11 upper case letters or digits: %w", symbol, library.ErrDuplicateOrInvalidName)
	}
	return nil
}

// FoundCompany creates a ledger with no supply and no partners and returns its identity.
func (r *Registry) FoundCompany(founder library.Account, name, symbol string, at library.Timestamp) (ledger.Company, error) {
	if err := ValidateName(name, symbol); err != nil {
		return ledger.Company{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := library.CompanyID(len(r.ledgers))
	company := ledger.Company{
		ID:        id,
		Ref:       library.LedgerReference(id, name, symbol, founder),
		Name:      name,
		Symbol:    symbol,
		Founder:   founder,
		FoundedAt: at,
	}
	r.add(ledger.New(company, r.decimals, r.settlement))
	library.LogCLI(fmt.Sprintf("founded company %d %s (%s) at %s", id, name, symbol, company.Ref), 4)
	return company, nil
}

func (r *Registry) add(l *ledger.Ledger) {
	r.ledgers = append(r.ledgers, l)
	r.byRef[l.Ref()] = l
}

// Restore loads ledgers from snapshots ordered by company id.
func (r *Registry) Restore(snapshots []ledger.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snapshot := range snapshots {
		if want := library.CompanyID(len(r.ledgers)); snapshot.Company.ID != want {
			return fmt.Errorf("snapshot of company %d found where %d was expected", snapshot.Company.ID, want)
		}
		r.add(ledger.Restore(snapshot, r.settlement))
	}
	return nil
}

func (r *Registry) GetCompanyAddress(id library.CompanyID) (library.LedgerRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= library.CompanyID(len(r.ledgers)) {
		return "", fmt.Errorf("company %d: %w", id, library.ErrNotFound)
	}
	return r.ledgers[id].Ref(), nil
}

// GetNextId is the id the next founded company will receive.
func (r *Registry) GetNextId() library.CompanyID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return library.CompanyID(len(r.ledgers))
}

func (r *Registry) Ledger(ref library.LedgerRef) (*ledger.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byRef[ref]
	if !ok {
		return nil, fmt.Errorf("ledger %s: %w", ref, library.ErrNotFound)
	}
	return l, nil
}

// Ledgers returns every ledger ordered by company id.
func (r *Registry) Ledgers() []*ledger.Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledgers := make([]*ledger.Ledger, len(r.ledgers))
	copy(ledgers, r.ledgers)
	return ledgers
}

func (r *Registry) Companies() (companies []ledger.Company) {
	for _, l := range r.Ledgers() {
		companies = append(companies, l.Company())
	}
	return
}

// HandleEvent founds a company from a signed event. The signer becomes the founder.
func (r *Registry) HandleEvent(event nostr.Event) (ledger.Company, error) {
	if event.Kind != KindFoundCompany {
		return ledger.Company{}, fmt.Errorf("event %s: kind %d does not found a company", event.ID, event.Kind)
	}
	var unmarshalled Kind640800
	if err := json.Unmarshal([]byte(event.Content), &unmarshalled); err != nil {
		return ledger.Company{}, fmt.Errorf("event %s: %w", event.ID, err)
	}
	return r.FoundCompany(event.PubKey, unmarshalled.Name, unmarshalled.Symbol, library.Timestamp(event.CreatedAt))
}
