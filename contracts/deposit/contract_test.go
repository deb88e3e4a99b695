package deposit_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gballet/lighthouse/contracts/deposit"
	"github.com/gballet/lighthouse/encoding/bytesutil"
	"github.com/gballet/lighthouse/testing/assert"
	"github.com/gballet/lighthouse/testing/require"
)

func TestPackUnpackDepositLogData(t *testing.T) {
	pubkey := make([]byte, 48)
	pubkey[0] = 1
	credentials := make([]byte, 32)
	credentials[0] = 2
	amount := bytesutil.Uint64ToBytesLittleEndian(32e9)
	sig := make([]byte, 96)
	sig[0] = 3
	index := bytesutil.Uint64ToBytesLittleEndian(7)

	data, err := deposit.PackDepositLogData(pubkey, credentials, amount, sig, index)
	require.NoError(t, err)

	gotPubkey, gotCredentials, gotAmount, gotSig, gotIndex, err := deposit.UnpackDepositLogData(data)
	require.NoError(t, err)
	assert.DeepEqual(t, pubkey, gotPubkey)
	assert.DeepEqual(t, credentials, gotCredentials)
	assert.Equal(t, uint64(32e9), bytesutil.FromBytes8(gotAmount))
	assert.DeepEqual(t, sig, gotSig)
	assert.Equal(t, uint64(7), bytesutil.FromBytes8(gotIndex))
}

func TestUnpackDepositLogData_BadData(t *testing.T) {
	_, _, _, _, _, err := deposit.UnpackDepositLogData([]byte{1, 2, 3})
	require.ErrorContains(t, "unable to unpack deposit event logs", err)
}

func TestIsDepositEvent(t *testing.T) {
	assert.Equal(t, true, deposit.IsDepositEvent(deposit.EventTopic))
	assert.Equal(t, false, deposit.IsDepositEvent(common.HexToHash("0xdeadbeef")))
}
