package library

import (
	"crypto/sha256"
	"fmt"
)

func Sha256Sum(data interface{}) Sha256 {
	var b []byte
	switch d := data.(type) {
	case string:
		b = []byte(d)
	case []byte:
		b = d
	default:
		b = []byte(fmt.Sprint(d))
	}
	h := sha256.New()
	h.Write(b)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// LedgerReference derives the opaque reference for a newly founded company.
func LedgerReference(id CompanyID, name, symbol string, founder Account) LedgerRef {
	return Sha256Sum(fmt.Sprintf("company:%d:%s:%s:%s", id, name, symbol, founder))
}
