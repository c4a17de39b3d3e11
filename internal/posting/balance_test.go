package posting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func TestComputeBalance(t *testing.T) {
	cases := []struct {
		name     string
		previous string
		side     Side
		debit    string
		credit   string
		want     string
	}{
		{"first debit on empty ledger", "0", SideDebit, "100.00", "0", "100.00"},
		{"first credit on empty ledger", "0", SideCredit, "0", "100.00", "-100.00"},
		{"debit accumulates on positive balance", "100.00", SideDebit, "50.00", "0", "150.00"},
		{"credit draws down positive balance", "100.00", SideCredit, "0", "30.00", "70.00"},
		{"credit overdraws positive balance", "100.00", SideCredit, "0", "150.00", "-50.00"},
		{"debit deepens negative balance", "-100.00", SideDebit, "50.00", "0", "-150.00"},
		{"credit shrinks negative balance", "-100.00", SideCredit, "0", "30.00", "-70.00"},
		{"credit past negative magnitude stays negative", "-100.00", SideCredit, "0", "150.00", "-50.00"},
		{"zero previous treated as positive side", "0", SideCredit, "0", "0.01", "-0.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeBalance(d(tc.previous), tc.side, d(tc.debit), d(tc.credit))
			require.NoError(t, err)
			assert.True(t, d(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestComputeBalanceRejectsUnknownSide(t *testing.T) {
	_, err := ComputeBalance(decimal.Zero, Side("both"), d("1"), d("0"))
	require.Error(t, err)
}
