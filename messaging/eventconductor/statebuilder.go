package eventconductor

import (
	"equityrocket/engine/actors"
	"equityrocket/engine/library"
	"equityrocket/state/ledger"
)

const (
	dumpMind = "state"
	dumpDb   = "current"
)

// CurrentState is everything the engine holds, as written to the flat file dump.
type CurrentState struct {
	Companies  []ledger.Snapshot `json:"companies"`
	Settlement SettlementState   `json:"settlement"`
}

type SettlementState struct {
	Symbol   string                             `json:"symbol"`
	Decimals uint8                              `json:"decimals"`
	Supply   library.Amount                     `json:"supply"`
	Balances map[library.Account]library.Amount `json:"balances"`
}

func (c *Conductor) CurrentState() (s CurrentState) {
	for _, l := range c.registry.Ledgers() {
		s.Companies = append(s.Companies, l.Snapshot())
	}
	s.Settlement = SettlementState{
		Symbol:   c.settlement.Symbol(),
		Decimals: c.settlement.Decimals(),
		Supply:   c.settlement.TotalSupply(),
		Balances: c.settlement.Balances(),
	}
	return
}

// Dump writes the current state to the flat file dir.
func (c *Conductor) Dump() error {
	return actors.WriteJSON(dumpMind, dumpDb, c.CurrentState())
}

// LoadDump reads a state written by Dump.
func LoadDump() (s CurrentState, err error) {
	err = actors.ReadJSON(dumpMind, dumpDb, &s)
	return
}
