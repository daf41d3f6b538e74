// Package settlement is an in-process fungible asset with allowance semantics. Ledgers price
// equity and pay out yield in it.
package settlement

import (
	"errors"
	"fmt"
	"sort"

	"equityrocket/engine/library"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/maps"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient settlement funds")
	ErrInsufficientAllowance = errors.New("insufficient settlement allowance")
	ErrNotIssuer             = errors.New("only the issuer can issue")
)

type allowanceKey struct {
	owner   library.Account
	spender library.Account
}

// Token is safe for concurrent use.
type Token struct {
	symbol     string
	decimals   uint8
	issuer     library.Account
	supply     library.Amount
	balances   map[library.Account]library.Amount
	allowances map[allowanceKey]library.Amount
	mu         *deadlock.Mutex
}

func NewToken(symbol string, decimals uint8, issuer library.Account) *Token {
	return &Token{
		symbol:     symbol,
		decimals:   decimals,
		issuer:     issuer,
		balances:   make(map[library.Account]library.Amount),
		allowances: make(map[allowanceKey]library.Amount),
		mu:         &deadlock.Mutex{},
	}
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) Decimals() uint8 {
	return t.decimals
}

func (t *Token) Issuer() library.Account {
	return t.issuer
}

func (t *Token) TotalSupply() library.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply
}

func (t *Token) BalanceOf(holder library.Account) library.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[holder]
}

func (t *Token) Allowance(owner, spender library.Account) library.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowances[allowanceKey{owner, spender}]
}

// Issue creates new units for to. Only the issuer may do this.
func (t *Token) Issue(caller, to library.Account, amount library.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.issuer {
		return fmt.Errorf("%s: %w", caller, ErrNotIssuer)
	}
	supply, err := library.AddAmounts(t.supply, amount)
	if err != nil {
		return fmt.Errorf("issuing %d %s: %w", amount, t.symbol, err)
	}
	t.supply = supply
	t.balances[to] += amount
	return nil
}

// Approve sets (not adds to) the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender library.Account, amount library.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if amount == 0 {
		delete(t.allowances, allowanceKey{owner, spender})
		return
	}
	t.allowances[allowanceKey{owner, spender}] = amount
}

func (t *Token) Transfer(from, to library.Account, amount library.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// TransferFrom moves amount from from to to on behalf of spender and consumes allowance.
func (t *Token) TransferFrom(spender, from, to library.Account, amount library.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := allowanceKey{from, spender}
	allowed := t.allowances[key]
	if allowed < amount {
		return fmt.Errorf("%s allows %s to spend %d %s but %d is required: %w", from, spender, allowed, t.symbol, amount, ErrInsufficientAllowance)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if allowed == amount {
		delete(t.allowances, key)
	} else {
		t.allowances[key] = allowed - amount
	}
	return nil
}

func (t *Token) move(from, to library.Account, amount library.Amount) error {
	balance := t.balances[from]
	if balance < amount {
		return fmt.Errorf("%s holds %d %s but %d is required: %w", from, balance, t.symbol, amount, ErrInsufficientFunds)
	}
	if amount == 0 {
		return nil
	}
	t.balances[from] = balance - amount
	if t.balances[from] == 0 {
		delete(t.balances, from)
	}
	t.balances[to] += amount
	return nil
}

// Holders lists accounts with a non zero balance, sorted.
func (t *Token) Holders() []library.Account {
	t.mu.Lock()
	defer t.mu.Unlock()
	accounts := maps.Keys(t.balances)
	sort.Strings(accounts)
	return accounts
}

// Balances returns a copy of every non zero balance.
func (t *Token) Balances() map[library.Account]library.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	balances := make(map[library.Account]library.Amount, len(t.balances))
	for account, balance := range t.balances {
		balances[account] = balance
	}
	return balances
}
