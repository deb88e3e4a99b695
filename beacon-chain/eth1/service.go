// Package eth1 tracks the eth1 deposit contract from a beacon node: it
// ingests DepositEvent logs into an incremental Merkle tree whose roots and
// proofs match the contract bit-for-bit, and caches per-height Eth1Data
// snapshots used by block proposers when voting.
package eth1

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/gballet/lighthouse/config/params"
)

type config struct {
	client                 ChainClient
	httpEndpoint           string
	depositContractAddr    common.Address
	followDistance         uint64
	depositLogRequestLimit uint64
	cacheUpdateInterval    time.Duration
	deploymentBlock        uint64
}

// Service owns one deposit tracking session: the deposit tree, the eth1 data
// cache and the client they are fed from. It is handed to call sites
// explicitly; there is no process-wide instance.
type Service struct {
	cfg         *config
	ctx         context.Context
	cancel      context.CancelFunc
	depositTree *DepositTree
	blockCache  *BlockCache
	// nextBlock is the first eth1 block whose logs have not been requested
	// yet. Only the ingestion loop advances it.
	nextBlock uint64
}

// NewService sets up a new deposit tracking session. Callers provide either a
// ready ChainClient or an http endpoint to dial on Start.
func NewService(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		ctx:    ctx,
		cancel: cancel,
		cfg: &config{
			followDistance:         params.BeaconConfig().Eth1FollowDistance,
			depositLogRequestLimit: params.BeaconConfig().DepositLogRequestLimit,
			cacheUpdateInterval:    time.Duration(params.BeaconConfig().SecondsPerETH1Block) * time.Second,
		},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			cancel()
			return nil, err
		}
	}
	if s.cfg.client == nil && s.cfg.httpEndpoint == "" {
		cancel()
		return nil, errors.New("eth1 service requires a chain client or an http endpoint")
	}
	depositTree, err := NewDepositTree()
	if err != nil {
		cancel()
		return nil, err
	}
	s.depositTree = depositTree
	s.nextBlock = s.cfg.deploymentBlock
	if s.cfg.client != nil {
		s.blockCache = NewBlockCache(s.cfg.client)
	}
	return s, nil
}

// Start the deposit tracking loop.
func (s *Service) Start() {
	if s.cfg.client == nil {
		client, err := NewRPCClient(s.ctx, s.cfg.httpEndpoint, s.cfg.depositContractAddr)
		if err != nil {
			log.WithError(err).Error("Could not connect to eth1 node")
			return
		}
		s.cfg.client = client
		s.blockCache = NewBlockCache(client)
	}
	log.WithField("endpoint", s.cfg.httpEndpoint).Info("Starting eth1 deposit tracking")
	go s.run(s.ctx.Done())
}

// Stop the deposit tracking loop and associated goroutines.
func (s *Service) Stop() error {
	s.cancel()
	return nil
}

// DepositTree exposes the session's deposit tree.
func (s *Service) DepositTree() *DepositTree {
	return s.depositTree
}

// BlockCache exposes the session's eth1 data cache.
func (s *Service) BlockCache() *BlockCache {
	return s.blockCache
}

func (s *Service) run(done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.cacheUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.sync(s.ctx); err != nil {
				if IsRetryable(err) {
					log.WithError(err).Debug("Transient eth1 failure, retrying on next tick")
				} else {
					log.WithError(err).Error("Could not sync with eth1 chain")
				}
			}
		}
	}
}

// sync ingests deposit logs up to the follow height and refreshes the eth1
// data cache. Log ingestion runs in a single logical task; cache readers stay
// unblocked throughout.
func (s *Service) sync(ctx context.Context) error {
	head, err := s.cfg.client.BlockNumber(ctx)
	if err != nil {
		return errors.Wrap(err, "could not get current block number")
	}
	followHeight := uint64(0)
	if s.cfg.followDistance < head {
		followHeight = head - s.cfg.followDistance
	}
	if followHeight >= s.nextBlock {
		if err := s.ProcessDepositLogs(ctx, s.nextBlock, followHeight); err != nil {
			return err
		}
		s.nextBlock = followHeight + 1
	}
	return s.blockCache.UpdateCache(ctx, s.cfg.followDistance)
}
