// Package yield distributes settlement asset deposits pro rata to token holders.
//
// Every deposit raises a magnified points-per-share figure. Each holder carries a signed
// correction that is adjusted whenever their weight changes, so a holder only earns on
// deposits made while they held the tokens. Withdrawals are recorded per holder, which is what
// keeps a deposit from being paid twice.
package yield

import (
	"fmt"
	"math/big"

	"equityrocket/engine/library"
)

var magnitude = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)

type Distributor struct {
	PointsPerShare *big.Int                           `json:"points_per_share"`
	Corrections    map[library.Account]*big.Int       `json:"corrections"`
	Withdrawn      map[library.Account]library.Amount `json:"withdrawn"`
	// Pool is the settlement balance deposited and not yet withdrawn.
	Pool library.Amount `json:"pool"`
	// Pending holds deposits made while there was no supply to distribute over.
	Pending        library.Amount `json:"pending"`
	TotalDeposited library.Amount `json:"total_deposited"`
}

func New() *Distributor {
	return &Distributor{
		PointsPerShare: new(big.Int),
		Corrections:    make(map[library.Account]*big.Int),
		Withdrawn:      make(map[library.Account]library.Amount),
	}
}

func (d *Distributor) Clone() *Distributor {
	c := &Distributor{
		PointsPerShare: new(big.Int).Set(d.PointsPerShare),
		Corrections:    make(map[library.Account]*big.Int, len(d.Corrections)),
		Withdrawn:      make(map[library.Account]library.Amount, len(d.Withdrawn)),
		Pool:           d.Pool,
		Pending:        d.Pending,
		TotalDeposited: d.TotalDeposited,
	}
	for account, correction := range d.Corrections {
		c.Corrections[account] = new(big.Int).Set(correction)
	}
	for account, amount := range d.Withdrawn {
		c.Withdrawn[account] = amount
	}
	return c
}

// Deposit adds amount to the pool and spreads it over totalSupply.
func (d *Distributor) Deposit(amount, totalSupply library.Amount) error {
	pool, err := library.AddAmounts(d.Pool, amount)
	if err != nil {
		return fmt.Errorf("yield pool: %w", err)
	}
	deposited, err := library.AddAmounts(d.TotalDeposited, amount)
	if err != nil {
		return fmt.Errorf("yield deposits: %w", err)
	}
	d.Pool = pool
	d.TotalDeposited = deposited
	d.Pending += amount
	d.Accrue(totalSupply)
	return nil
}

// Accrue distributes pending deposits once there is a supply to distribute them over.
func (d *Distributor) Accrue(totalSupply library.Amount) {
	if d.Pending == 0 || totalSupply == 0 {
		return
	}
	points := new(big.Int).SetUint64(d.Pending)
	points.Mul(points, magnitude)
	points.Quo(points, new(big.Int).SetUint64(totalSupply))
	d.PointsPerShare.Add(d.PointsPerShare, points)
	d.Pending = 0
}

// Increase records that account's weight grew by amount.
func (d *Distributor) Increase(account library.Account, amount library.Amount) {
	d.adjust(account, amount, false)
}

// Decrease records that account's weight shrank by amount.
func (d *Distributor) Decrease(account library.Account, amount library.Amount) {
	d.adjust(account, amount, true)
}

// Move is a Decrease of from and an Increase of to.
func (d *Distributor) Move(from, to library.Account, amount library.Amount) {
	d.Decrease(from, amount)
	d.Increase(to, amount)
}

func (d *Distributor) adjust(account library.Account, amount library.Amount, decrease bool) {
	if amount == 0 || d.PointsPerShare.Sign() == 0 {
		return
	}
	delta := new(big.Int).SetUint64(amount)
	delta.Mul(delta, d.PointsPerShare)
	correction, ok := d.Corrections[account]
	if !ok {
		correction = new(big.Int)
		d.Corrections[account] = correction
	}
	if decrease {
		correction.Add(correction, delta)
	} else {
		correction.Sub(correction, delta)
	}
}

func (d *Distributor) accumulated(account library.Account, weight library.Amount) library.Amount {
	total := new(big.Int).SetUint64(weight)
	total.Mul(total, d.PointsPerShare)
	if correction, ok := d.Corrections[account]; ok {
		total.Add(total, correction)
	}
	if total.Sign() <= 0 {
		return 0
	}
	total.Quo(total, magnitude)
	if !total.IsUint64() {
		return d.TotalDeposited
	}
	return total.Uint64()
}

// Withdrawable is what account may withdraw right now given its current weight.
func (d *Distributor) Withdrawable(account library.Account, weight library.Amount) library.Amount {
	accumulated := d.accumulated(account, weight)
	withdrawn := d.Withdrawn[account]
	if accumulated <= withdrawn {
		return 0
	}
	share := accumulated - withdrawn
	if share > d.Pool {
		share = d.Pool
	}
	return share
}

// Withdraw books the share of account as paid and removes it from the pool.
func (d *Distributor) Withdraw(account library.Account, weight library.Amount) (library.Amount, error) {
	share := d.Withdrawable(account, weight)
	if share == 0 {
		return 0, fmt.Errorf("%s has no yield to withdraw: %w", account, library.ErrNothingToClaim)
	}
	d.Withdrawn[account] += share
	d.Pool -= share
	return share, nil
}
