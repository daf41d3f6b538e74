package captable

import (
	"fmt"
	"sort"

	"equityrocket/engine/library"
	"golang.org/x/exp/maps"
)

func New(decimals uint8) *Table {
	return &Table{
		Decimals: decimals,
		Balances: make(map[library.Account]library.Amount),
		Partners: make(map[library.Account]Partner),
	}
}

// Clone returns a deep copy that can be mutated without affecting t.
func (t *Table) Clone() *Table {
	c := &Table{
		Decimals:    t.Decimals,
		TotalSupply: t.TotalSupply,
		Balances:    make(map[library.Account]library.Amount, len(t.Balances)),
		Partners:    make(map[library.Account]Partner, len(t.Partners)),
		Joined:      t.Joined,
	}
	for account, balance := range t.Balances {
		c.Balances[account] = balance
	}
	for account, partner := range t.Partners {
		c.Partners[account] = partner
	}
	return c
}

func (t *Table) BalanceOf(account library.Account) library.Amount {
	return t.Balances[account]
}

// Mint creates amount new tokens owned by to.
func (t *Table) Mint(to library.Account, amount library.Amount) error {
	supply, err := library.AddAmounts(t.TotalSupply, amount)
	if err != nil {
		return fmt.Errorf("minting %d to %s: %w", amount, to, err)
	}
	t.TotalSupply = supply
	t.Credit(to, amount)
	return nil
}

// Burn destroys amount tokens owned by from.
func (t *Table) Burn(from library.Account, amount library.Amount) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.TotalSupply -= amount
	return nil
}

func (t *Table) Transfer(from, to library.Account, amount library.Amount) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.Credit(to, amount)
	return nil
}

// Debit removes amount from the balance of an account without touching the supply, the
// caller is responsible for holding the tokens somewhere else (escrow).
func (t *Table) Debit(from library.Account, amount library.Amount) error {
	return t.debit(from, amount)
}

// Credit gives back tokens previously removed with Debit.
func (t *Table) Credit(to library.Account, amount library.Amount) {
	if amount > 0 {
		t.Balances[to] += amount
	}
}

func (t *Table) debit(from library.Account, amount library.Amount) error {
	balance := t.Balances[from]
	if amount > balance {
		return fmt.Errorf("%s holds %d but %d is required: %w", from, balance, amount, library.ErrInsufficientBalance)
	}
	if balance == amount {
		delete(t.Balances, from)
		return nil
	}
	t.Balances[from] = balance - amount
	return nil
}

// AddPartner registers a new partner.
func (t *Table) AddPartner(p Partner) error {
	if _, exists := t.Partners[p.Account]; exists {
		return fmt.Errorf("%s: %w", p.Account, library.ErrTargetAlreadyPartner)
	}
	t.Joined++
	p.Order = t.Joined
	t.Partners[p.Account] = p
	return nil
}

func (t *Table) UpdatePartner(p Partner) error {
	if _, exists := t.Partners[p.Account]; !exists {
		return fmt.Errorf("%s: %w", p.Account, library.ErrTargetNotFound)
	}
	t.Partners[p.Account] = p
	return nil
}

func (t *Table) RemovePartner(account library.Account) error {
	if _, exists := t.Partners[account]; !exists {
		return fmt.Errorf("%s: %w", account, library.ErrTargetNotFound)
	}
	delete(t.Partners, account)
	return nil
}

func (t *Table) Partner(account library.Account) (Partner, bool) {
	p, ok := t.Partners[account]
	return p, ok
}

func (t *Table) IsPartner(account library.Account) bool {
	_, ok := t.Partners[account]
	return ok
}

// PartnerAccounts lists current partners in the order they joined.
func (t *Table) PartnerAccounts() []library.Account {
	accounts := maps.Keys(t.Partners)
	sort.Slice(accounts, func(i, j int) bool {
		return t.Partners[accounts[i]].Order < t.Partners[accounts[j]].Order
	})
	return accounts
}

// Holders lists every account with a non zero balance, sorted.
func (t *Table) Holders() []library.Account {
	accounts := maps.Keys(t.Balances)
	sort.Strings(accounts)
	return accounts
}

// SumOfBalances is used to check sum(balances) <= TotalSupply.
func (t *Table) SumOfBalances() (total library.Amount) {
	for _, balance := range t.Balances {
		total += balance
	}
	return
}
