package eth1

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethRPC "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	"github.com/gballet/lighthouse/config/params"
	contracts "github.com/gballet/lighthouse/contracts/deposit"
	"github.com/gballet/lighthouse/encoding/bytesutil"
)

// RPCClient talks to an eth1 node over json-rpc and reads the deposit
// contract with read-only eth_call queries. Every outgoing request carries a
// bounded deadline derived from the caller's context.
type RPCClient struct {
	client       *ethclient.Client
	contractAddr common.Address
	contractABI  abi.ABI
	timeout      time.Duration
}

var _ ChainClient = (*RPCClient)(nil)

// NewRPCClient dials the given endpoint and binds the deposit contract at
// addr for read-only queries.
func NewRPCClient(ctx context.Context, endpoint string, addr common.Address) (*RPCClient, error) {
	rpcClient, err := gethRPC.DialContext(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "could not dial eth1 node at %s: %v", endpoint, err)
	}
	contractABI, err := contracts.ParsedABI()
	if err != nil {
		return nil, err
	}
	return &RPCClient{
		client:       ethclient.NewClient(rpcClient),
		contractAddr: addr,
		contractABI:  contractABI,
		timeout:      params.BeaconConfig().DefaultEth1RPCTimeout,
	}, nil
}

// BlockNumber returns the current chain head height.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrapf(ErrRemoteUnavailable, "could not get block number: %v", err)
	}
	return head, nil
}

// HeaderByNumber returns the header at the given height, or the latest header
// when number is nil.
func (c *RPCClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.HeaderInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	header, err := c.client.HeaderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrapf(ErrBlockUnavailable, "block %v does not exist", number)
		}
		return nil, errors.Wrapf(ErrRemoteUnavailable, "could not get header for block %v: %v", number, err)
	}
	info, err := types.HeaderToHeaderInfo(header)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "could not convert header: %v", err)
	}
	return info, nil
}

// DepositRoot calls get_deposit_root on the deposit contract at the given
// block height.
func (c *RPCClient) DepositRoot(ctx context.Context, blockHeight uint64) ([32]byte, error) {
	res, err := c.callContract(ctx, "get_deposit_root", blockHeight)
	if err != nil {
		return [32]byte{}, err
	}
	if len(res) != 32 {
		return [32]byte{}, errors.Wrapf(ErrMalformedResponse, "deposit root has %d bytes, wanted 32", len(res))
	}
	return bytesutil.ToBytes32(res), nil
}

// DepositCount calls get_deposit_count on the deposit contract at the given
// block height. The contract encodes the count as 8 little-endian bytes.
func (c *RPCClient) DepositCount(ctx context.Context, blockHeight uint64) (uint64, error) {
	res, err := c.callContract(ctx, "get_deposit_count", blockHeight)
	if err != nil {
		return 0, err
	}
	unpacked, err := c.contractABI.Unpack("get_deposit_count", res)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedResponse, "could not unpack deposit count: %v", err)
	}
	count, ok := unpacked[0].([]byte)
	if !ok || len(count) != 8 {
		return 0, errors.Wrapf(ErrMalformedResponse, "deposit count has unexpected encoding %#x", unpacked[0])
	}
	return bytesutil.FromBytes8(count), nil
}

// DepositLogs returns the DepositEvent logs emitted by the deposit contract
// in the inclusive block range [startHeight, endHeight].
func (c *RPCClient) DepositLogs(ctx context.Context, startHeight, endHeight uint64) ([]gethTypes.Log, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.contractAddr},
		FromBlock: new(big.Int).SetUint64(startHeight),
		ToBlock:   new(big.Int).SetUint64(endHeight),
		Topics:    [][]common.Hash{{contracts.EventTopic}},
	}
	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "could not filter deposit logs in range [%d, %d]: %v", startHeight, endHeight, err)
	}
	return logs, nil
}

// callContract performs a read-only eth_call of a zero-argument contract
// method pinned at the given block height.
func (c *RPCClient) callContract(ctx context.Context, method string, blockHeight uint64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	data, err := c.contractABI.Pack(method)
	if err != nil {
		return nil, errors.Wrapf(err, "could not pack %s call", method)
	}
	res, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contractAddr,
		Data: data,
	}, new(big.Int).SetUint64(blockHeight))
	if err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "%s call failed at height %d: %v", method, blockHeight, err)
	}
	return res, nil
}
