// internal/blockchain/aptos/coin.go
package aptos

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/token"
)

// CoinStoreType returns the resource type holding a wallet's coinType balance.
func CoinStoreType(coinType string) string {
	return fmt.Sprintf("0x1::coin::CoinStore<%s>", coinType)
}

// CoinInfoType returns the resource type holding coinType metadata.
func CoinInfoType(coinType string) string {
	return fmt.Sprintf("0x1::coin::CoinInfo<%s>", coinType)
}

// GetCoinBalance returns the raw balance of coinType held by address.
// An unregistered CoinStore is a zero balance, not an error.
func (c *Client) GetCoinBalance(ctx context.Context, address, coinType string) (*big.Int, error) {
	res, err := c.GetAccountResource(ctx, address, CoinStoreType(coinType))
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) || errors.Is(err, ErrAccountNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("get %s balance: %w", coinType, err)
	}

	var store coinStore
	if err := res.Decode(&store); err != nil {
		return nil, err
	}
	return store.Coin.Value.Big()
}

// GetCoinDecimals reads the decimals of coinType from its CoinInfo, which
// lives under the account that published the coin module.
func (c *Client) GetCoinDecimals(ctx context.Context, coinType string) (uint8, error) {
	owner := token.Token{ContractAddress: coinType}.Owner()
	if owner == coinType {
		return 0, fmt.Errorf("invalid coin type %q", coinType)
	}

	res, err := c.GetAccountResource(ctx, owner, CoinInfoType(coinType))
	if err != nil {
		return 0, fmt.Errorf("get %s coin info: %w", coinType, err)
	}

	var info coinInfo
	if err := res.Decode(&info); err != nil {
		return 0, err
	}
	return info.Decimals, nil
}
