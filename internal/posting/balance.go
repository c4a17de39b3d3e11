package posting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeBalance derives the running balance for a new row from the
// previous balance of the same ledger. The magnitude accumulates the
// same way on either side of zero; once an account has gone net
// negative the accumulation continues on the negative side until it is
// overcome (sign-carry).
func ComputeBalance(previous decimal.Decimal, side Side, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	wasNegative := previous.IsNegative()
	magnitude := previous.Abs()

	var next decimal.Decimal
	switch side {
	case SideDebit:
		next = magnitude.Add(debit)
	case SideCredit:
		next = magnitude.Sub(credit)
	default:
		return decimal.Decimal{}, fmt.Errorf("posting: unrecognized debit/credit discriminator %q", side)
	}

	if wasNegative {
		next = next.Abs().Neg()
	}
	return next, nil
}
