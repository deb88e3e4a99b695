package params

import "testing"

// SetupTestConfigCleanup preserves the global config and registers a test
// cleanup to restore it, so tests may freely override parameters.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := BeaconConfig().Copy()
	t.Cleanup(func() {
		OverrideBeaconConfig(prevConfig)
	})
}
