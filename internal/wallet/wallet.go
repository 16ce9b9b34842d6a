// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v3"
)

// ed25519Scheme is the single-signer authentication key scheme byte.
const ed25519Scheme = 0x00

// Wallet is an Aptos account backed by a single ed25519 key.
type Wallet struct {
	Name       string
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Address    string
}

// NewWallet builds a wallet from a hex encoded 32-byte private key seed.
// "0x" and "ed25519-priv-" prefixes are accepted.
func NewWallet(name, privateKeyHex string) (*Wallet, error) {
	raw := strings.TrimSpace(privateKeyHex)
	raw = strings.TrimPrefix(raw, "ed25519-priv-")
	raw = strings.TrimPrefix(raw, "0x")

	seed, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	return &Wallet{
		Name:       name,
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    DeriveAddress(pub),
	}, nil
}

// DeriveAddress returns the account address of a single-key ed25519 account:
// sha3-256(public_key || 0x00).
func DeriveAddress(pub ed25519.PublicKey) string {
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{ed25519Scheme})
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Sign signs a raw signing message.
func (w *Wallet) Sign(message []byte) []byte {
	return ed25519.Sign(w.PrivateKey, message)
}

// SignHex decodes a 0x-prefixed hex signing message and signs it.
func (w *Wallet) SignHex(message string) ([]byte, error) {
	msg, err := hex.DecodeString(strings.TrimPrefix(message, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing message: %w", err)
	}
	return w.Sign(msg), nil
}

// PublicKeyHex returns the 0x-prefixed public key.
func (w *Wallet) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(w.PublicKey)
}

// ShortAddress is used in log lines.
func (w *Wallet) ShortAddress() string {
	if len(w.Address) <= 12 {
		return w.Address
	}
	return w.Address[:6] + "..." + w.Address[len(w.Address)-4:]
}

// String returns the wallet address.
func (w *Wallet) String() string {
	return w.Address
}

// Config represents the structure of the wallets YAML file.
type Config struct {
	Wallets []struct {
		Name       string `yaml:"name"`
		PrivateKey string `yaml:"private_key"`
	} `yaml:"wallets"`
}

// LoadWallets reads named wallets from a YAML file. Entries with an empty
// name or an unparsable key are rejected.
func LoadWallets(path string) (map[string]*Wallet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cfg.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in configuration")
	}

	wallets := make(map[string]*Wallet, len(cfg.Wallets))
	for i, entry := range cfg.Wallets {
		if entry.Name == "" {
			return nil, fmt.Errorf("wallet #%d has no name", i+1)
		}
		if _, dup := wallets[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate wallet name %q", entry.Name)
		}
		w, err := NewWallet(entry.Name, entry.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", entry.Name, err)
		}
		wallets[entry.Name] = w
	}

	return wallets, nil
}
