package eth1

import (
	"context"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/tools/cache"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	"github.com/gballet/lighthouse/config/params"
)

// ErrNotEth1DataSnapshot will be returned when a cache object is not a
// pointer to an eth1DataSnapshot struct.
var ErrNotEth1DataSnapshot = errors.New("object is not an eth1 data snapshot")

// eth1DataSnapshot is the unit stored in the block cache: the deposit
// contract summary observed at one block height.
type eth1DataSnapshot struct {
	Height uint64
	Data   *types.Eth1Data
}

// heightKeyFn takes the string representation of the block height as the key
// for an eth1DataSnapshot.
func heightKeyFn(obj interface{}) (string, error) {
	snap, ok := obj.(*eth1DataSnapshot)
	if !ok {
		return "", ErrNotEth1DataSnapshot
	}
	return heightKey(snap.Height), nil
}

func heightKey(height uint64) string {
	return strconv.FormatUint(height, 10)
}

// BlockCache is a height-indexed cache of eth1 data snapshots. Entries are
// write-once per height; the cache never serves a partially committed batch.
// Retention is bounded: after every commit the cache is trimmed to
// MaxCachedEth1Data entries, oldest heights first.
type BlockCache struct {
	client    ChainClient
	cache     *cache.FIFO
	lastBlock uint64
	lock      sync.RWMutex
}

// NewBlockCache instantiates an empty eth1 data cache around the given client.
func NewBlockCache(client ChainClient) *BlockCache {
	return &BlockCache{
		client: client,
		cache:  cache.NewFIFO(heightKeyFn),
	}
}

// LastBlock returns the watermark: the highest head height known to be fully
// cached by a successful UpdateCache call.
func (c *BlockCache) LastBlock() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lastBlock
}

// UpdateCache populates the cache with eth1 data for every height within
// `distance` of the current head. Per-height fetches run concurrently with a
// bounded fan-out and results are attributed by height regardless of
// completion order. The commit is all-or-nothing: if any single height fails,
// the whole update fails and no entry is inserted.
func (c *BlockCache) UpdateCache(ctx context.Context, distance uint64) error {
	ctx, span := trace.StartSpan(ctx, "eth1.BlockCache.UpdateCache")
	defer span.End()
	start := time.Now()
	defer func() {
		updateCacheLatency.Observe(float64(time.Since(start).Milliseconds()))
	}()

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return errors.Wrap(err, "could not get current block number")
	}
	lower := uint64(0)
	if distance < head {
		lower = head - distance
	}

	snaps := make([]*eth1DataSnapshot, head-lower+1)
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, params.BeaconConfig().MaxConcurrentEth1Requests)
	for i := range snaps {
		i := i
		height := lower + uint64(i)
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			data, err := c.fetchEth1Data(gctx, height)
			if err != nil {
				return errors.Wrapf(err, "could not fetch eth1 data at height %d", height)
			}
			snaps[i] = &eth1DataSnapshot{Height: height, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		updateCacheFailures.Inc()
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	for _, snap := range snaps {
		// Heights are write-once; a pre-existing entry wins.
		if err := c.cache.AddIfNotPresent(snap); err != nil {
			return err
		}
	}
	if head > c.lastBlock {
		c.lastBlock = head
	}
	trim(c.cache, params.BeaconConfig().MaxCachedEth1Data)
	return nil
}

// Eth1DataAtDistance returns the eth1 data snapshot `distance` blocks behind
// the current head. The head is re-queried on every call so a stale watermark
// can never redirect the lookup. Cached heights are served without any
// network traffic; a miss performs exactly one synchronous fetch and caches
// the result.
func (c *BlockCache) Eth1DataAtDistance(ctx context.Context, distance uint64) (*types.Eth1Data, error) {
	ctx, span := trace.StartSpan(ctx, "eth1.BlockCache.Eth1DataAtDistance")
	defer span.End()

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not get current block number")
	}
	height := uint64(0)
	if distance < head {
		height = head - distance
	}

	c.lock.RLock()
	obj, exists, err := c.cache.GetByKey(heightKey(height))
	c.lock.RUnlock()
	if err != nil {
		return nil, err
	}
	if exists {
		eth1DataCacheHit.Inc()
		snap, ok := obj.(*eth1DataSnapshot)
		if !ok {
			return nil, ErrNotEth1DataSnapshot
		}
		return snap.Data.Copy(), nil
	}
	eth1DataCacheMiss.Inc()

	// The fetch deliberately happens outside the lock; the exclusive lock is
	// only held for the in-memory insertion below.
	data, err := c.fetchEth1Data(ctx, height)
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch eth1 data at height %d", height)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.cache.AddIfNotPresent(&eth1DataSnapshot{Height: height, Data: data}); err != nil {
		return nil, err
	}
	trim(c.cache, params.BeaconConfig().MaxCachedEth1Data)

	// Serve the committed entry so concurrent callers observe one canonical
	// value per height.
	obj, exists, err = c.cache.GetByKey(heightKey(height))
	if err != nil {
		return nil, err
	}
	if exists {
		if snap, ok := obj.(*eth1DataSnapshot); ok {
			return snap.Data.Copy(), nil
		}
	}
	return data.Copy(), nil
}

// Eth1DataInRange maps Eth1DataAtDistance over the half-open distance range
// [start, end). Heights whose individual fetch failed are omitted rather than
// failing the whole call: each lookup is independently retryable and
// idempotent, so a short result is expected, not an error.
func (c *BlockCache) Eth1DataInRange(ctx context.Context, start, end uint64) []*types.Eth1Data {
	ctx, span := trace.StartSpan(ctx, "eth1.BlockCache.Eth1DataInRange")
	defer span.End()

	if end <= start {
		return []*types.Eth1Data{}
	}
	data := make([]*types.Eth1Data, 0, end-start)
	for distance := start; distance < end; distance++ {
		d, err := c.Eth1DataAtDistance(ctx, distance)
		if err != nil {
			log.WithError(err).WithField("distance", distance).Debug("Skipping unavailable eth1 data")
			continue
		}
		data = append(data, d)
	}
	return data
}

// fetchEth1Data retrieves the deposit root, deposit count and block hash at
// the given height. The three queries are driven concurrently under one
// group; the first failure cancels the remaining ones.
func (c *BlockCache) fetchEth1Data(ctx context.Context, height uint64) (*types.Eth1Data, error) {
	var (
		root   [32]byte
		count  uint64
		header *types.HeaderInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		root, err = c.client.DepositRoot(gctx, height)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = c.client.DepositCount(gctx, height)
		return err
	})
	g.Go(func() error {
		var err error
		header, err = c.client.HeaderByNumber(gctx, new(big.Int).SetUint64(height))
		if err != nil {
			return err
		}
		if header == nil {
			return errors.Wrapf(ErrBlockUnavailable, "block %d does not exist", height)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &types.Eth1Data{
		DepositRoot:  root,
		DepositCount: count,
		BlockHash:    header.Hash,
	}, nil
}

// trim pops the oldest entries until the cache is within maxSize. Caller
// holds the exclusive lock.
func trim(queue *cache.FIFO, maxSize int) {
	for s := len(queue.ListKeys()); s > maxSize; s-- {
		if _, err := queue.Pop(popProcessNoopFunc); err != nil {
			log.WithError(err).Error("Failed to trim eth1 data cache")
			return
		}
	}
}

// popProcessNoopFunc is a no-op function that never returns an error.
func popProcessNoopFunc(_ interface{}) error {
	return nil
}
