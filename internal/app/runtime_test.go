package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/ledgerline/ledgerline/testing"
)

func TestInTestMode(t *testing.T) {
	// The blank import sets LEDGERLINE_TEST_MODE=1 before the once fires.
	assert.True(t, InTestMode())
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("LEDGERLINE_TEST_MODE", "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	_ = os.Setenv("LEDGERLINE_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}
