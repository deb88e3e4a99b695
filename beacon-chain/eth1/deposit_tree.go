package eth1

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	"github.com/gballet/lighthouse/config/params"
	"github.com/gballet/lighthouse/container/trie"
)

// DepositTree is an append-only accumulator over the ordered deposit log
// stream. It mirrors the deposit contract's Merkle accounting exactly, so
// roots and proofs computed here are byte-identical to the ones the contract
// reports. Logs must arrive in strictly increasing, gapless index order.
type DepositTree struct {
	lock         sync.RWMutex
	depositTrie  *trie.SparseMerkleTrie
	leaves       [][]byte
	logs         []*types.DepositLog
	rootsByCount *lru.Cache
}

// NewDepositTree instantiates an empty deposit tree for a tracking session.
func NewDepositTree() (*DepositTree, error) {
	depositTrie, err := trie.NewTrie(params.BeaconConfig().DepositContractTreeDepth)
	if err != nil {
		return nil, err
	}
	rootsByCount, err := lru.New(params.BeaconConfig().MaxCachedDepositRoots)
	if err != nil {
		return nil, err
	}
	return &DepositTree{
		depositTrie:  depositTrie,
		rootsByCount: rootsByCount,
	}, nil
}

// Count returns the number of deposit logs ingested so far.
func (dt *DepositTree) Count() uint64 {
	dt.lock.RLock()
	defer dt.lock.RUnlock()
	return uint64(len(dt.leaves))
}

// HashTreeRoot returns the current deposit root, including the deposit count
// mix-in, exactly as the deposit contract would report it.
func (dt *DepositTree) HashTreeRoot() ([32]byte, error) {
	dt.lock.RLock()
	defer dt.lock.RUnlock()
	return dt.depositTrie.HashTreeRoot()
}

// InsertLog appends the next deposit log to the tree. The log's index must
// equal the current leaf count; otherwise ErrOutOfOrderInsert is returned and
// the tree is left untouched.
func (dt *DepositTree) InsertLog(ctx context.Context, depositLog *types.DepositLog) error {
	_, span := trace.StartSpan(ctx, "eth1.DepositTree.InsertLog")
	defer span.End()

	if depositLog == nil || depositLog.Data == nil {
		return errors.New("nil deposit log inserted into the tree")
	}
	leaf, err := depositLog.Data.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "unable to determine hashed value of deposit")
	}

	dt.lock.Lock()
	defer dt.lock.Unlock()

	index := uint64(len(dt.leaves))
	if depositLog.Index != index {
		return errors.Wrapf(ErrOutOfOrderInsert, "wanted index %d but got %d", index, depositLog.Index)
	}
	if err := dt.depositTrie.Insert(leaf[:], int(index)); err != nil {
		return err
	}
	dt.leaves = append(dt.leaves, leaf[:])
	dt.logs = append(dt.logs, depositLog)
	validDepositsCount.Inc()
	return nil
}

// GetDeposits returns the deposit root at the given historical deposit count
// together with the deposits in [start, end), each carrying a Merkle proof
// into that root. The root is reconstructed purely from the locally stored
// leaves, independent of any leaves appended after depositCount was reached.
// This is a pure read.
func (dt *DepositTree) GetDeposits(ctx context.Context, start, end, depositCount uint64) ([32]byte, []*types.Deposit, error) {
	_, span := trace.StartSpan(ctx, "eth1.DepositTree.GetDeposits")
	defer span.End()

	dt.lock.RLock()
	defer dt.lock.RUnlock()

	if depositCount > uint64(len(dt.leaves)) {
		return [32]byte{}, nil, errors.Wrapf(ErrInsufficientHistory, "wanted deposit count %d but only %d logs ingested", depositCount, len(dt.leaves))
	}
	if start > end {
		return [32]byte{}, nil, errors.Errorf("invalid deposit range: start %d is greater than end %d", start, end)
	}
	if end > depositCount {
		return [32]byte{}, nil, errors.Errorf("deposit range [%d, %d) exceeds deposit count %d", start, end, depositCount)
	}

	// A root-only query can be served from the memoized historical roots
	// without rebuilding the trie.
	if start == end {
		if cached, ok := dt.rootsByCount.Get(depositCount); ok {
			return cached.([32]byte), []*types.Deposit{}, nil
		}
	}

	historical, err := dt.trieAtCount(depositCount)
	if err != nil {
		return [32]byte{}, nil, err
	}
	root, err := historical.HashTreeRoot()
	if err != nil {
		return [32]byte{}, nil, err
	}
	dt.rootsByCount.Add(depositCount, root)

	deposits := make([]*types.Deposit, 0, end-start)
	for i := start; i < end; i++ {
		proof, err := historical.MerkleProof(int(i))
		if err != nil {
			return [32]byte{}, nil, errors.Wrapf(err, "unable to generate merkle proof for deposit %d", i)
		}
		deposits = append(deposits, &types.Deposit{
			Data:  dt.logs[i].Data,
			Proof: proof,
		})
	}
	return root, deposits, nil
}

// trieAtCount regenerates the deposit trie as it stood when the contract's
// deposit count equaled the given value. Caller holds at least a read lock.
func (dt *DepositTree) trieAtCount(depositCount uint64) (*trie.SparseMerkleTrie, error) {
	depth := params.BeaconConfig().DepositContractTreeDepth
	if depositCount == 0 {
		return trie.NewTrie(depth)
	}
	return trie.GenerateTrieFromItems(dt.leaves[:depositCount], depth)
}
