// Package eventconductor takes signed transactions in arrival order, routes each one to the
// registry, the ledger named by its company tag, or the settlement asset, and journals the
// ones that were accepted.
package eventconductor

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"

	"equityrocket/engine/actors"
	"equityrocket/engine/exporter"
	"equityrocket/engine/journal"
	"equityrocket/engine/library"
	"equityrocket/state/ledger"
	"equityrocket/state/registry"
	"equityrocket/state/settlement"
)

type Conductor struct {
	registry   *registry.Registry
	settlement *settlement.Token
	journal    *journal.Journal
	stack      *library.Stack
	mu         *deadlock.Mutex
	// apply is held from the duplicate check until the transaction is journaled
	apply      *deadlock.Mutex
	wake       chan struct{}
}

func New(reg *registry.Registry, token *settlement.Token, j *journal.Journal) *Conductor {
	return &Conductor{
		registry:   reg,
		settlement: token,
		journal:    j,
		stack:      library.NewEventStack(16),
		mu:         &deadlock.Mutex{},
		apply:      &deadlock.Mutex{},
		wake:       make(chan struct{}, 1),
	}
}

func (c *Conductor) Registry() *registry.Registry {
	return c.registry
}

func (c *Conductor) Settlement() *settlement.Token {
	return c.settlement
}

// Replay rebuilds state from the journal. Transactions are not journaled again.
func (c *Conductor) Replay() error {
	c.apply.Lock()
	defer c.apply.Unlock()
	err := c.journal.Replay(func(seq uint64, e nostr.Event) error {
		exporter.IncReplayed()
		return c.route(e)
	})
	exporter.SetCompanies(len(c.registry.Ledgers()))
	return err
}

// Submit queues e behind every transaction submitted before it.
func (c *Conductor) Submit(e nostr.Event) {
	c.mu.Lock()
	c.stack.Push(e)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Conductor) pop() (nostr.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stack.Pop()
}

// Drain handles every queued transaction and returns how many were rejected.
func (c *Conductor) Drain() (rejected int) {
	for {
		e, ok := c.pop()
		if !ok {
			return
		}
		if err := c.HandleEvent(e); err != nil {
			library.LogCLI(err.Error(), 2)
			rejected++
		}
	}
}

// Start handles queued transactions until the terminate channel is closed.
func (c *Conductor) Start() {
	actors.GetWaitGroup().Add(1)
	go func() {
		defer actors.GetWaitGroup().Done()
		for {
			c.Drain()
			select {
			case <-c.wake:
			case <-actors.GetTerminateChan():
				return
			}
		}
	}()
}

// HandleEvent verifies, applies and journals a single transaction.
func (c *Conductor) HandleEvent(e nostr.Event) (err error) {
	defer library.ValidateSaneExecutionTime()()
	defer func() {
		exporter.IncTransaction(e.Kind, err)
	}()
	if e.ID != e.GetID() {
		return fmt.Errorf("event %s: id does not match its content", e.ID)
	}
	if ok, err := e.CheckSignature(); !ok {
		return fmt.Errorf("event %s: invalid signature %v", e.ID, err)
	}
	c.apply.Lock()
	defer c.apply.Unlock()
	if c.journal.Contains(e.ID) {
		return fmt.Errorf("event %s: %w", e.ID, journal.ErrDuplicate)
	}
	library.LogCLI(fmt.Sprintf("handling kind %d event %s from %s", e.Kind, e.ID, e.PubKey), 3)
	if err = c.route(e); err != nil {
		return err
	}
	if _, err = c.journal.Append(e); err != nil {
		library.LogCLI(fmt.Sprintf("event %s was applied but could not be journaled: %s", e.ID, err), 1)
		return err
	}
	return nil
}

func (c *Conductor) route(e nostr.Event) error {
	switch k := e.Kind; {
	case k == registry.KindFoundCompany:
		_, err := c.registry.HandleEvent(e)
		if err == nil {
			exporter.SetCompanies(len(c.registry.Ledgers()))
		}
		return err
	case ledger.Handles(k):
		ref, ok := library.GetCompany(e)
		if !ok {
			return fmt.Errorf("event %s has no valid company tag", e.ID)
		}
		l, err := c.registry.Ledger(ref)
		if err != nil {
			return err
		}
		_, err = l.HandleEvent(e)
		return err
	case settlement.Handles(k):
		return c.settlement.HandleEvent(e)
	}
	return fmt.Errorf("no handler for kind %d", e.Kind)
}
