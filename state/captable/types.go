package captable

import (
	"equityrocket/engine/library"
	"equityrocket/state/vesting"
)

// Partner is an account that takes part in governance and holds a vesting allocation.
type Partner struct {
	Account  library.Account   `json:"account"`
	Vesting  vesting.Schedule  `json:"vesting"`
	JoinedAt library.Timestamp `json:"joined_at"`
	Order    int64             `json:"order"`
}

// Table is the cap table of one company. The zero value is not usable, see New.
type Table struct {
	Decimals    uint8                              `json:"decimals"`
	TotalSupply library.Amount                     `json:"total_supply"`
	Balances    map[library.Account]library.Amount `json:"balances"`
	Partners    map[library.Account]Partner        `json:"partners"`
	// Joined counts every partner admission, it orders PartnerAccounts.
	Joined int64 `json:"joined"`
}
