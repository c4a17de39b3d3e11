package posting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBundleRequestPayIn(t *testing.T) {
	// Callers mix quoted and bare numbers for amounts.
	body := `{
		"transaction_type": "payin",
		"transaction1": {"ledger_id": 1, "particulars_id": 2, "date": "2026-03-01",
			"debit_amount": "500.00", "debit_credit": "debit"},
		"transaction2": {"ledger_id": 2, "particulars_id": 1, "date": "2026-03-01",
			"credit_amount": 500, "debit_credit": "credit"}
	}`

	var req createBundleRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	bundle, err := req.toBundle()
	require.NoError(t, err)
	assert.Equal(t, BundlePayIn, bundle.Kind())

	legs := bundle.Legs()
	require.Len(t, legs, 2)
	assert.True(t, d("500.00").Equal(legs[0].DebitAmount))
	assert.True(t, d("500").Equal(legs[1].CreditAmount))
	assert.Equal(t, SideDebit, legs[0].DebitCredit)
	assert.Equal(t, SideCredit, legs[1].DebitCredit)
}

func TestCreateBundleRequestMissingLeg(t *testing.T) {
	var req createBundleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"transaction_type": "payout",
		"transaction1": {"ledger_id": 1, "particulars_id": 2, "date": "2026-03-01",
			"credit_amount": "10.00", "debit_credit": "credit"}}`), &req))

	_, err := req.toBundle()
	require.ErrorIs(t, err, ErrInvalidBundle)
}

func TestCreateBundleRequestSalesEntryRequiresAllSixLegs(t *testing.T) {
	leg := `{"ledger_id": 1, "particulars_id": 2, "date": "2026-03-05",
		"debit_amount": "10.00", "debit_credit": "debit"}`
	body := `{
		"transaction_type": "salesentry",
		"salescashtransaction1": ` + leg + `,
		"salescashtransaction2": ` + leg + `,
		"salesbanktransaction1": ` + leg + `,
		"salesbanktransaction2": ` + leg + `,
		"purchasetransaction1": ` + leg + `
	}`

	var req createBundleRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	_, err := req.toBundle()
	require.ErrorIs(t, err, ErrInvalidBundle)
}

func TestCreateBundleRequestUnknownType(t *testing.T) {
	req := createBundleRequest{TransactionType: "journal"}

	_, err := req.toBundle()
	require.ErrorIs(t, err, ErrInvalidBundle)
}

func TestCreateBundleRequestBadDate(t *testing.T) {
	bad := &legPayload{LedgerID: 1, ParticularsID: 2, Date: "03/01/2026", DebitAmount: d("1"), DebitCredit: "debit"}
	good := &legPayload{LedgerID: 2, ParticularsID: 1, Date: "2026-03-01", CreditAmount: d("1"), DebitCredit: "credit"}
	req := createBundleRequest{TransactionType: "payin", Transaction1: bad, Transaction2: good}

	_, err := req.toBundle()
	require.ErrorIs(t, err, ErrInvalidBundle)
}
