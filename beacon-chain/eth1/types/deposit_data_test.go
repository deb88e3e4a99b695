package types_test

import (
	"math/big"
	"testing"

	gethTypes "github.com/ethereum/go-ethereum/core/types"
	ssz "github.com/ferranbt/fastssz"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	"github.com/gballet/lighthouse/testing/assert"
	"github.com/gballet/lighthouse/testing/require"
)

func validDepositData() *types.DepositData {
	pubkey := make([]byte, 48)
	pubkey[0] = 0xaa
	credentials := make([]byte, 32)
	credentials[0] = 0xbb
	sig := make([]byte, 96)
	sig[0] = 0xcc
	return &types.DepositData{
		PublicKey:             pubkey,
		WithdrawalCredentials: credentials,
		Amount:                32e9,
		Signature:             sig,
	}
}

func TestDepositData_MarshalUnmarshal(t *testing.T) {
	data := validDepositData()
	enc, err := data.MarshalSSZ()
	require.NoError(t, err)
	require.Equal(t, data.SizeSSZ(), len(enc))

	decoded := &types.DepositData{}
	require.NoError(t, decoded.UnmarshalSSZ(enc))
	require.DeepEqual(t, data, decoded)
}

func TestDepositData_MarshalBadFieldLength(t *testing.T) {
	data := validDepositData()
	data.PublicKey = data.PublicKey[:47]
	_, err := data.MarshalSSZ()
	require.ErrorIs(t, err, ssz.ErrBytesLength)

	data = validDepositData()
	data.Signature = append(data.Signature, 0)
	_, err = data.MarshalSSZ()
	require.ErrorIs(t, err, ssz.ErrBytesLength)
}

func TestDepositData_UnmarshalWrongSize(t *testing.T) {
	decoded := &types.DepositData{}
	require.ErrorIs(t, decoded.UnmarshalSSZ(make([]byte, 100)), ssz.ErrSize)
}

func TestDepositData_HashTreeRoot(t *testing.T) {
	data := validDepositData()
	root, err := data.HashTreeRoot()
	require.NoError(t, err)
	again, err := data.HashTreeRoot()
	require.NoError(t, err)
	assert.DeepEqual(t, root, again)

	// Any field change must move the root.
	other := validDepositData()
	other.Amount++
	otherRoot, err := other.HashTreeRoot()
	require.NoError(t, err)
	assert.DeepNotEqual(t, root, otherRoot)
}

func TestDepositData_Copy(t *testing.T) {
	data := validDepositData()
	cp := data.Copy()
	require.DeepEqual(t, data, cp)
	cp.PublicKey[0] = 0xff
	assert.NotEqual(t, data.PublicKey[0], cp.PublicKey[0])
}

func TestHeaderToHeaderInfo(t *testing.T) {
	hdr := &gethTypes.Header{
		Number: big.NewInt(500),
		Time:   2345,
	}
	info, err := types.HeaderToHeaderInfo(hdr)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), info.Number.Uint64())
	assert.Equal(t, uint64(2345), info.Time)
	assert.Equal(t, hdr.Hash(), info.Hash)
}

func TestHeaderToHeaderInfo_NilNumber(t *testing.T) {
	_, err := types.HeaderToHeaderInfo(&gethTypes.Header{Time: 2345})
	require.ErrorContains(t, "nil block number", err)
}

func TestHeaderInfo_Copy(t *testing.T) {
	info, err := types.HeaderToHeaderInfo(&gethTypes.Header{
		Number: big.NewInt(500),
		Time:   2345,
	})
	require.NoError(t, err)

	cp := info.Copy()
	require.DeepEqual(t, info, cp)

	// The copy must not share the big.Int with the original.
	cp.Number.SetUint64(9999)
	assert.Equal(t, uint64(500), info.Number.Uint64())
}
