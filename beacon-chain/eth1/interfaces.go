package eth1

import (
	"context"
	"math/big"

	gethTypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
)

// ChainClient defines the queries the tracking core performs against a remote
// eth1 node. Implementations apply a per-call timeout and distinguish
// network failures (ErrRemoteUnavailable), schema violations
// (ErrMalformedResponse) and absent blocks (ErrBlockUnavailable).
type ChainClient interface {
	// BlockNumber returns the current head height of the eth1 chain.
	BlockNumber(ctx context.Context) (uint64, error)
	// HeaderByNumber returns block metadata at the given height.
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.HeaderInfo, error)
	// DepositRoot returns the deposit contract's Merkle root at the given height.
	DepositRoot(ctx context.Context, blockNumber uint64) ([32]byte, error)
	// DepositCount returns the deposit contract's deposit count at the given height.
	DepositCount(ctx context.Context, blockNumber uint64) (uint64, error)
	// DepositLogs returns the ordered raw DepositEvent logs emitted in the
	// given inclusive block range.
	DepositLogs(ctx context.Context, start, end uint64) ([]gethTypes.Log, error)
}
