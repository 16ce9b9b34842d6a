// internal/blockchain/aptos/types.go
package aptos

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Resource is a Move resource read from account storage.
type Resource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the resource data into v.
func (r *Resource) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidResponse, r.Type, err)
	}
	return nil
}

// U64 is a Move u64/u128 encoded by the node as a decimal string.
type U64 string

// Big parses the value; an empty string is an error.
func (u U64) Big() (*big.Int, error) {
	v, ok := new(big.Int).SetString(string(u), 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad integer %q", ErrInvalidResponse, string(u))
	}
	return v, nil
}

// EntryFunctionPayload is the JSON form of a Move entry function call.
type EntryFunctionPayload struct {
	Type          string        `json:"type"`
	Function      string        `json:"function"`
	TypeArguments []string      `json:"type_arguments"`
	Arguments     []interface{} `json:"arguments"`
}

// NewEntryFunctionPayload builds a payload for module::function with the
// given type tags and arguments. u64 arguments must be passed as strings.
func NewEntryFunctionPayload(module, function string, typeArgs []string, args ...interface{}) *EntryFunctionPayload {
	return &EntryFunctionPayload{
		Type:          "entry_function_payload",
		Function:      module + "::" + function,
		TypeArguments: typeArgs,
		Arguments:     args,
	}
}

// Signature is an ed25519 transaction authenticator.
type Signature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// TransactionRequest is the body of encode_submission and submit calls.
type TransactionRequest struct {
	Sender                  string                `json:"sender"`
	SequenceNumber          string                `json:"sequence_number"`
	MaxGasAmount            string                `json:"max_gas_amount"`
	GasUnitPrice            string                `json:"gas_unit_price"`
	ExpirationTimestampSecs string                `json:"expiration_timestamp_secs"`
	Payload                 *EntryFunctionPayload `json:"payload"`
	Signature               *Signature            `json:"signature,omitempty"`
}

// Transaction is the subset of a node transaction the bot inspects.
type Transaction struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Version  string `json:"version,omitempty"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

// IsPending reports whether the transaction is still in the mempool.
func (t *Transaction) IsPending() bool {
	return t.Type == "pending_transaction"
}

type accountData struct {
	SequenceNumber    U64    `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

type coinStore struct {
	Coin struct {
		Value U64 `json:"value"`
	} `json:"coin"`
}

type coinInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}
