// Package params defines important configuration options for the eth1
// tracking core, such as the deposit contract tree depth and the follow
// distance applied to eth1 chain queries.
package params

import "time"

// BeaconChainConfig contains the parameters needed to follow the eth1 chain
// and reproduce the deposit contract's Merkle accounting.
type BeaconChainConfig struct {
	// Deposit contract constants.
	DepositContractTreeDepth uint64 // DepositContractTreeDepth depth of the Merkle trie of deposits in the eth1 deposit contract.

	// Eth1 chain following.
	Eth1FollowDistance  uint64 // Eth1FollowDistance is the number of eth1 blocks to wait before considering a block stable enough to vote on.
	SecondsPerETH1Block uint64 // SecondsPerETH1Block is the approximate time for a single eth1 block to be produced.

	// Remote node interaction.
	DefaultEth1RPCTimeout     time.Duration // DefaultEth1RPCTimeout is the timeout applied to every single eth1 node query.
	MaxConcurrentEth1Requests int           // MaxConcurrentEth1Requests bounds the fan-out of concurrent per-height fetches.
	DepositLogRequestLimit    uint64        // DepositLogRequestLimit is the maximum block span of a single deposit log query.

	// Caching.
	MaxCachedEth1Data     int // MaxCachedEth1Data bounds the number of eth1 data snapshots retained in the block cache.
	MaxCachedDepositRoots int // MaxCachedDepositRoots bounds the number of memoized historical deposit roots.
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the beacon chain config.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call this with a modified copy of MainnetConfig(), then restore it via the
// cleanup registered by SetupTestConfigCleanup.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}

// Copy returns a deep copy of the config.
func (c *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *c
	return &config
}
