// Package testing provides an in-memory chain client double for eth1
// deposit tracking tests.
package testing

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	"github.com/gballet/lighthouse/encoding/bytesutil"
)

// ChainClient is a fake eth1 node. Blocks are registered up front with
// InsertBlock; per-height errors can be injected to exercise failure paths.
// Call counters are mutex-guarded since cache updates query concurrently.
type ChainClient struct {
	mu          sync.Mutex
	head        uint64
	hashes      map[uint64]common.Hash
	times       map[uint64]uint64
	roots       map[uint64][32]byte
	counts      map[uint64]uint64
	errs        map[uint64]error
	logs        []gethTypes.Log
	HeaderCalls int
	RootCalls   int
	CountCalls  int
	LogCalls    int
	HeadCalls   int
}

// New returns an empty fake chain.
func New() *ChainClient {
	return &ChainClient{
		hashes: make(map[uint64]common.Hash),
		times:  make(map[uint64]uint64),
		roots:  make(map[uint64][32]byte),
		counts: make(map[uint64]uint64),
		errs:   make(map[uint64]error),
	}
}

// InsertBlock registers a block at the given height with a synthetic hash and
// the given deposit contract state, advancing the head if needed.
func (m *ChainClient) InsertBlock(height uint64, depositRoot [32]byte, depositCount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[height] = common.BytesToHash(bytesutil.Uint64ToBytesLittleEndian(height))
	m.times[height] = height * 14
	m.roots[height] = depositRoot
	m.counts[height] = depositCount
	if height > m.head {
		m.head = height
	}
}

// SetHead moves the chain head without registering block data.
func (m *ChainClient) SetHead(height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = height
}

// InjectError makes every query at the given height fail with err.
func (m *ChainClient) InjectError(height uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[height] = err
}

// ClearError removes an injected failure.
func (m *ChainClient) ClearError(height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, height)
}

// AddLog appends a raw contract log to the fake filter backend.
func (m *ChainClient) AddLog(l gethTypes.Log) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
}

// Calls returns how many per-height data queries have been made in total.
func (m *ChainClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HeaderCalls + m.RootCalls + m.CountCalls
}

// BlockNumber returns the current fake head.
func (m *ChainClient) BlockNumber(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeadCalls++
	return m.head, nil
}

// HeaderByNumber returns the registered header at the given height.
func (m *ChainClient) HeaderByNumber(_ context.Context, number *big.Int) (*types.HeaderInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeaderCalls++
	height := m.head
	if number != nil {
		height = number.Uint64()
	}
	if err := m.errs[height]; err != nil {
		return nil, err
	}
	hash, ok := m.hashes[height]
	if !ok {
		return nil, errors.Errorf("no block registered at height %d", height)
	}
	return &types.HeaderInfo{
		Number: new(big.Int).SetUint64(height),
		Hash:   hash,
		Time:   m.times[height],
	}, nil
}

// DepositRoot returns the registered deposit root at the given height.
func (m *ChainClient) DepositRoot(_ context.Context, blockHeight uint64) ([32]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RootCalls++
	if err := m.errs[blockHeight]; err != nil {
		return [32]byte{}, err
	}
	root, ok := m.roots[blockHeight]
	if !ok {
		return [32]byte{}, errors.Errorf("no block registered at height %d", blockHeight)
	}
	return root, nil
}

// DepositCount returns the registered deposit count at the given height.
func (m *ChainClient) DepositCount(_ context.Context, blockHeight uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountCalls++
	if err := m.errs[blockHeight]; err != nil {
		return 0, err
	}
	count, ok := m.counts[blockHeight]
	if !ok {
		return 0, errors.Errorf("no block registered at height %d", blockHeight)
	}
	return count, nil
}

// DepositLogs returns the registered logs whose block number falls in the
// inclusive range [startHeight, endHeight].
func (m *ChainClient) DepositLogs(_ context.Context, startHeight, endHeight uint64) ([]gethTypes.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogCalls++
	var out []gethTypes.Log
	for _, l := range m.logs {
		if l.BlockNumber >= startHeight && l.BlockNumber <= endHeight {
			out = append(out, l)
		}
	}
	return out, nil
}
