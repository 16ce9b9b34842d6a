// internal/token/token.go
package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownToken is returned when a symbol is not in the registry.
var ErrUnknownToken = errors.New("unknown token")

// Token describes a coin type known to the bot.
// Decimals == 0 means "resolve from chain".
type Token struct {
	Symbol          string `yaml:"symbol"`
	ContractAddress string `yaml:"contract_address"`
	Decimals        uint8  `yaml:"decimals"`
}

// Owner returns the account part of the coin type tag, e.g. "0x1" for
// "0x1::aptos_coin::AptosCoin".
func (t Token) Owner() string {
	owner, _, _ := strings.Cut(t.ContractAddress, "::")
	return owner
}

func (t Token) String() string {
	return strings.ToUpper(t.Symbol)
}

// Registry is a read-only symbol lookup table.
type Registry struct {
	tokens map[string]Token
}

// defaultTokens mirrors the coins PancakeSwap on Aptos trades against.
var defaultTokens = []Token{
	{Symbol: "aptos", ContractAddress: "0x1::aptos_coin::AptosCoin", Decimals: 8},
	{Symbol: "usdc", ContractAddress: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDC", Decimals: 6},
	{Symbol: "usdt", ContractAddress: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDT", Decimals: 6},
}

// NewRegistry builds a registry from the given tokens.
func NewRegistry(tokens []Token) *Registry {
	r := &Registry{tokens: make(map[string]Token, len(tokens))}
	for _, t := range tokens {
		r.tokens[strings.ToLower(t.Symbol)] = t
	}
	return r
}

// DefaultRegistry returns the built-in token list.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultTokens)
}

// Get looks a token up by symbol, case-insensitively.
func (r *Registry) Get(symbol string) (Token, error) {
	t, ok := r.tokens[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
	}
	return t, nil
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	return len(r.tokens)
}

type registryFile struct {
	Tokens []Token `yaml:"tokens"`
}

// LoadRegistry reads a YAML token list and layers it over the defaults.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	tokens := append([]Token{}, defaultTokens...)
	for _, t := range file.Tokens {
		if t.Symbol == "" || !strings.Contains(t.ContractAddress, "::") {
			return nil, fmt.Errorf("invalid token entry %q", t.Symbol)
		}
		tokens = append(tokens, t)
	}
	return NewRegistry(tokens), nil
}
