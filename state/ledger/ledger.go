// Package ledger is the equity ledger of a single company. It composes the cap table, vesting
// schedules, partner governance, the secondary market and the yield pool, and is the only
// place those are mutated.
//
// Writers are serialised by a per ledger mutex. Every mutation works on a clone of the
// committed state and the clone is only published once the whole operation (including the
// settlement transfer, which is always the last step) has succeeded. Readers never take the
// lock, they read whatever state was last published.
package ledger

import (
	"fmt"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"

	"equityrocket/engine/library"
	"equityrocket/state/captable"
	"equityrocket/state/governance"
	"equityrocket/state/marketplace"
	"equityrocket/state/vesting"
	"equityrocket/state/yield"
)

type Ledger struct {
	company    Company
	settlement Settlement
	mu         *deadlock.Mutex
	current    atomic.Value
}

type state struct {
	Clock     library.Timestamp
	Founding  bool
	Table     *captable.Table
	Proposals *governance.Book
	Offers    *marketplace.Book
	Yield     *yield.Distributor
}

// New returns an empty ledger. The founder may allocate equity until the first proposal is
// created.
func New(company Company, decimals uint8, settlement Settlement) *Ledger {
	l := &Ledger{
		company:    company,
		settlement: settlement,
		mu:         &deadlock.Mutex{},
	}
	l.current.Store(&state{
		Clock:     company.FoundedAt,
		Founding:  true,
		Table:     captable.New(decimals),
		Proposals: governance.New(),
		Offers:    marketplace.New(),
		Yield:     yield.New(),
	})
	return l
}

// Restore rebuilds a ledger from a snapshot taken with Snapshot.
func Restore(snapshot Snapshot, settlement Settlement) *Ledger {
	l := &Ledger{
		company:    snapshot.Company,
		settlement: settlement,
		mu:         &deadlock.Mutex{},
	}
	s := &state{
		Clock:     snapshot.Clock,
		Founding:  snapshot.Founding,
		Table:     snapshot.Table,
		Proposals: snapshot.Proposals,
		Offers:    snapshot.Offers,
		Yield:     snapshot.Yield,
	}
	l.current.Store(s.clone())
	return l
}

func (l *Ledger) load() *state {
	return l.current.Load().(*state)
}

func (s *state) clone() *state {
	return &state{
		Clock:     s.Clock,
		Founding:  s.Founding,
		Table:     s.Table.Clone(),
		Proposals: s.Proposals.Clone(),
		Offers:    s.Offers.Clone(),
		Yield:     s.Yield.Clone(),
	}
}

// tick moves the ledger clock forward. Timestamps older than the clock are clamped so that
// time observed by vesting never goes backwards.
func (s *state) tick(at library.Timestamp) library.Timestamp {
	if at > s.Clock {
		s.Clock = at
	}
	return s.Clock
}

// mutate runs fn against a private copy of the state and publishes it if fn succeeds.
func (l *Ledger) mutate(op string, at library.Timestamp, fn func(s *state, now library.Timestamp) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.load().clone()
	now := s.tick(at)
	if err := fn(s, now); err != nil {
		return fmt.Errorf("%s on %s: %w", op, l.company.Symbol, err)
	}
	l.current.Store(s)
	return nil
}

// weight is what yield is distributed over: tokens held plus tokens escrowed in an offer.
func (s *state) weight(account library.Account) library.Amount {
	return s.Table.BalanceOf(account) + s.Offers.Escrowed(account)
}

// locked is the part of a balance still bound to a vesting schedule.
func (s *state) locked(account library.Account) library.Amount {
	if p, ok := s.Table.Partner(account); ok {
		return p.Vesting.Locked()
	}
	return 0
}

func (s *state) free(account library.Account) library.Amount {
	balance, locked := s.Table.BalanceOf(account), s.locked(account)
	if locked >= balance {
		return 0
	}
	return balance - locked
}

func (s *state) requireFree(account library.Account, amount library.Amount) error {
	if free := s.free(account); amount > free {
		return fmt.Errorf("%w: %s has %d free, needs %d", library.ErrInsufficientBalance, account, free, amount)
	}
	return nil
}

func (s *state) requirePartner(account library.Account) error {
	if !s.Table.IsPartner(account) {
		return fmt.Errorf("%w: %s", library.ErrNotAPartner, account)
	}
	return nil
}

func (s *state) mint(to library.Account, amount library.Amount) error {
	if err := s.Table.Mint(to, amount); err != nil {
		return err
	}
	s.Yield.Increase(to, amount)
	s.Yield.Accrue(s.Table.TotalSupply)
	return nil
}

func (s *state) burn(from library.Account, amount library.Amount) error {
	if err := s.Table.Burn(from, amount); err != nil {
		return err
	}
	s.Yield.Decrease(from, amount)
	return nil
}

func (s *state) transfer(from, to library.Account, amount library.Amount) error {
	if err := s.Table.Transfer(from, to, amount); err != nil {
		return err
	}
	s.Yield.Move(from, to, amount)
	return nil
}

// admit registers account as a partner with tokens vesting from now.
func (s *state) admit(account library.Account, tokens library.Amount, cliffSeconds, vestingSeconds int64, now library.Timestamp) error {
	if s.Table.IsPartner(account) {
		return fmt.Errorf("%w: %s", library.ErrTargetAlreadyPartner, account)
	}
	schedule, err := vesting.NewSchedule(tokens, now, cliffSeconds, vestingSeconds)
	if err != nil {
		return err
	}
	if err := s.mint(account, tokens); err != nil {
		return err
	}
	return s.Table.AddPartner(captable.Partner{Account: account, Vesting: schedule, JoinedAt: now})
}

func (l *Ledger) Company() Company {
	return l.company
}

func (l *Ledger) Ref() library.LedgerRef {
	return l.company.Ref
}

// Snapshot returns the committed state. Callers must treat it as read only.
func (l *Ledger) Snapshot() Snapshot {
	s := l.load()
	return Snapshot{
		Company:   l.company,
		Clock:     s.Clock,
		Founding:  s.Founding,
		Table:     s.Table,
		Proposals: s.Proposals,
		Offers:    s.Offers,
		Yield:     s.Yield,
	}
}
