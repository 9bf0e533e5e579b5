package tokens

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Decimals is the fixed-point precision used by all payroll tokens.
const Decimals = 6

// Token describes one entry of the token registry.
type Token struct {
	Symbol   string
	Name     string
	Address  common.Address
	Decimals int
}

// Registry maps currency symbols to their on-chain tokens. Unknown symbols
// resolve to the default token rather than failing, matching the settlement
// contract's expectations.
type Registry struct {
	tokens        map[string]Token
	defaultSymbol string
	order         []string
}

// DefaultSymbol is the currency every unknown symbol normalizes to.
const DefaultSymbol = "pathUSD"

// NewRegistry builds a registry with the standard testnet token set.
func NewRegistry() *Registry {
	r := &Registry{
		tokens:        make(map[string]Token),
		defaultSymbol: DefaultSymbol,
	}
	r.Add(Token{Symbol: "pathUSD", Name: "Path USD", Address: common.HexToAddress("0x20c0000000000000000000000000000000000000"), Decimals: Decimals})
	r.Add(Token{Symbol: "AlphaUSD", Name: "Alpha USD", Address: common.HexToAddress("0x20c0000000000000000000000000000000000001"), Decimals: Decimals})
	r.Add(Token{Symbol: "BetaUSD", Name: "Beta USD", Address: common.HexToAddress("0x20c0000000000000000000000000000000000002"), Decimals: Decimals})
	r.Add(Token{Symbol: "ThetaUSD", Name: "Theta USD", Address: common.HexToAddress("0x20c0000000000000000000000000000000000003"), Decimals: Decimals})
	return r
}

// Add registers a token, overwriting any previous entry for the symbol.
func (r *Registry) Add(t Token) {
	if _, exists := r.tokens[t.Symbol]; !exists {
		r.order = append(r.order, t.Symbol)
	}
	r.tokens[t.Symbol] = t
}

// Resolve returns the token for a currency symbol, normalizing unknown
// symbols to the default token.
func (r *Registry) Resolve(symbol string) Token {
	if t, ok := r.tokens[symbol]; ok {
		return t
	}
	return r.tokens[r.defaultSymbol]
}

// Known reports whether the symbol resolves without normalization.
func (r *Registry) Known(symbol string) bool {
	_, ok := r.tokens[symbol]
	return ok
}

// Default returns the default token.
func (r *Registry) Default() Token {
	return r.tokens[r.defaultSymbol]
}

// List returns all tokens in registration order.
func (r *Registry) List() []Token {
	out := make([]Token, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, r.tokens[sym])
	}
	return out
}

// SymbolFor returns the symbol registered for an address, or the empty string.
func (r *Registry) SymbolFor(addr common.Address) string {
	for _, sym := range r.order {
		if r.tokens[sym].Address == addr {
			return sym
		}
	}
	return ""
}

// ParseAmount converts a decimal amount string ("3200", "1500.50") into token
// base units at 6-decimal precision.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", s, Decimals)
	}
	frac = frac + strings.Repeat("0", Decimals-len(frac))

	units, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	if neg || units.Sign() < 0 {
		return nil, fmt.Errorf("amount must be positive: %s", s)
	}
	return units, nil
}

// FormatAmount renders token base units as a decimal string with the full
// 6-decimal precision, e.g. 1500000 -> "1.500000".
func FormatAmount(units *big.Int) string {
	if units == nil {
		return "0.000000"
	}
	div := big.NewInt(1)
	for i := 0; i < Decimals; i++ {
		div.Mul(div, big.NewInt(10))
	}
	q, m := new(big.Int).QuoRem(units, div, new(big.Int))
	return fmt.Sprintf("%s.%06d", q.String(), m.Abs(m).Int64())
}
