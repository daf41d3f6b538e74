package library

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
)

// AddAmounts returns a+b or ErrOverflow.
func AddAmounts(a, b Amount) (Amount, error) {
	if a > ^Amount(0)-b {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrOverflow)
	}
	return a + b, nil
}

// MulDiv returns floor(a*b/c) computed without intermediate overflow. c must not be zero.
func MulDiv(a, b, c Amount) (Amount, error) {
	r := new(big.Int).SetUint64(a)
	r.Mul(r, new(big.Int).SetUint64(b))
	r.Quo(r, new(big.Int).SetUint64(c))
	if !r.IsUint64() {
		return 0, fmt.Errorf("%d * %d / %d: %w", a, b, c, ErrOverflow)
	}
	return r.Uint64(), nil
}

// FormatAmount renders a fixed point amount with thousands separators, e.g. 123456 with 2 decimals is "1,234.56".
func FormatAmount(a Amount, decimals uint8) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(new(big.Int).SetUint64(a), scale, new(big.Int))
	s := humanize.BigComma(whole)
	if decimals == 0 {
		return s
	}
	f := frac.String()
	return s + "." + strings.Repeat("0", int(decimals)-len(f)) + f
}
