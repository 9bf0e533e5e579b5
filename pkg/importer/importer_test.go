package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

func newTestImporter() *Importer {
	return New(tokens.NewRegistry())
}

// Five rows where the third has a malformed wallet: four intents import and
// the single error points at spreadsheet row 4 (1-indexed with the header).
func TestParsePartialAccept(t *testing.T) {
	csv := `name,email,wallet,amount,currency
Alice,alice@example.com,0x1111111111111111111111111111111111111111,3200,pathUSD
Bob,bob@example.com,0x2222222222222222222222222222222222222222,2800,AlphaUSD
Carol,carol@example.com,not-a-wallet,1500,pathUSD
Dave,dave@example.com,0x4444444444444444444444444444444444444444,2100,BetaUSD
Eve,eve@example.com,0x5555555555555555555555555555555555555555,1900,pathUSD
`
	result, err := newTestImporter().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Len(t, result.Intents, 4)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 4")
	assert.Contains(t, result.Errors[0], "wallet")

	// Accepted rows keep their input order and get sequential IDs.
	assert.Equal(t, "Alice", result.Intents[0].Name)
	assert.Equal(t, "Dave", result.Intents[2].Name)
	for i, intent := range result.Intents {
		assert.Equal(t, i+1, intent.EmployeeID)
	}
}

func TestParseHeaderAliases(t *testing.T) {
	csv := `Full Name,E-mail,Wallet Address,Salary,Token
Alice,alice@example.com,0x1111111111111111111111111111111111111111,"$3,200.50",AlphaUSD
`
	result, err := newTestImporter().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Intents, 1)

	got := result.Intents[0]
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "3200.50", got.Amount)
	assert.Equal(t, "AlphaUSD", got.Currency)
}

func TestParseUnknownCurrencyNormalizes(t *testing.T) {
	csv := `name,email,wallet,amount,currency
Alice,alice@example.com,0x1111111111111111111111111111111111111111,100,DOGE
Bob,bob@example.com,0x2222222222222222222222222222222222222222,100,
`
	result, err := newTestImporter().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Intents, 2)
	assert.Equal(t, tokens.DefaultSymbol, result.Intents[0].Currency)
	assert.Equal(t, tokens.DefaultSymbol, result.Intents[1].Currency)
}

func TestParseRowValidation(t *testing.T) {
	cases := []struct {
		name string
		row  string
		want string
	}{
		{"missing name", `,alice@example.com,0x1111111111111111111111111111111111111111,100,pathUSD`, "name"},
		{"bad email", `Alice,nobody,0x1111111111111111111111111111111111111111,100,pathUSD`, "email"},
		{"short wallet", `Alice,alice@example.com,0x1234,100,pathUSD`, "wallet"},
		{"zero amount", `Alice,alice@example.com,0x1111111111111111111111111111111111111111,0,pathUSD`, "amount"},
		{"negative amount", `Alice,alice@example.com,0x1111111111111111111111111111111111111111,-10,pathUSD`, "amount"},
		{"missing amount", `Alice,alice@example.com,0x1111111111111111111111111111111111111111,,pathUSD`, "amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			csv := "name,email,wallet,amount,currency\n" + tc.row + "\n"
			result, err := newTestImporter().Parse(strings.NewReader(csv))
			require.NoError(t, err)
			assert.Empty(t, result.Intents)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "Row 2")
			assert.Contains(t, result.Errors[0], tc.want)
		})
	}
}

func TestParseMissingRequiredColumn(t *testing.T) {
	csv := `name,amount,currency
Alice,100,pathUSD
`
	_, err := newTestImporter().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestParseEmptyFile(t *testing.T) {
	_, err := newTestImporter().Parse(strings.NewReader(""))
	assert.Error(t, err)
}
