package library

type Wallet struct {
	PrivateKey string
	SeedWords  string
	Account    Account
}

// Account is the hex encoded pubkey of whoever signed a transaction.
type Account = string

// CompanyID is the sequential id handed out by the registry.
type CompanyID = int64

// LedgerRef is the opaque reference a company ledger is reached by.
type LedgerRef = Sha256

type Sha256 = string

// Amount is an unsigned fixed point quantity. The number of decimals depends on the asset.
type Amount = uint64

// Timestamp is unix seconds as reported by the substrate clock.
type Timestamp = int64
