package eth1

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Option modifies a Service under construction.
type Option func(s *Service) error

// WithHttpEndpoint sets the eth1 node endpoint to dial on Start.
func WithHttpEndpoint(endpoint string) Option {
	return func(s *Service) error {
		s.cfg.httpEndpoint = endpoint
		return nil
	}
}

// WithChainClient injects a ready chain client, bypassing the endpoint dial.
func WithChainClient(client ChainClient) Option {
	return func(s *Service) error {
		s.cfg.client = client
		return nil
	}
}

// WithDepositContractAddress for the deposit contract.
func WithDepositContractAddress(addr common.Address) Option {
	return func(s *Service) error {
		s.cfg.depositContractAddr = addr
		return nil
	}
}

// WithFollowDistance overrides the configured eth1 follow distance.
func WithFollowDistance(distance uint64) Option {
	return func(s *Service) error {
		s.cfg.followDistance = distance
		return nil
	}
}

// WithDepositLogRequestLimit bounds the block span of a single log query.
func WithDepositLogRequestLimit(limit uint64) Option {
	return func(s *Service) error {
		s.cfg.depositLogRequestLimit = limit
		return nil
	}
}

// WithCacheUpdateInterval sets how often the tracking loop refreshes the
// eth1 data cache.
func WithCacheUpdateInterval(interval time.Duration) Option {
	return func(s *Service) error {
		s.cfg.cacheUpdateInterval = interval
		return nil
	}
}

// WithDeploymentBlock sets the eth1 block the deposit contract was deployed
// at, so log ingestion does not scan earlier blocks.
func WithDeploymentBlock(block uint64) Option {
	return func(s *Service) error {
		s.cfg.deploymentBlock = block
		return nil
	}
}
