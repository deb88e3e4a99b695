package params

import "time"

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig.Copy()
}

var mainnetBeaconConfig = &BeaconChainConfig{
	DepositContractTreeDepth: 32,

	Eth1FollowDistance:  2048,
	SecondsPerETH1Block: 14,

	DefaultEth1RPCTimeout:     6 * time.Second,
	MaxConcurrentEth1Requests: 16,
	DepositLogRequestLimit:    10000,

	MaxCachedEth1Data:     4096,
	MaxCachedDepositRoots: 64,
}
