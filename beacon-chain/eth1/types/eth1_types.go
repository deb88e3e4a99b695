// Package types declares the data structures exchanged between the eth1
// tracking core and its consumers: deposit records parsed from contract logs
// and per-height summaries of the deposit contract state.
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Eth1Data is a snapshot of the deposit contract's state at one eth1 block
// height, voted on by block proposers.
type Eth1Data struct {
	DepositRoot  [32]byte
	DepositCount uint64
	BlockHash    [32]byte
}

// Copy sends out a copy of the current eth1 data snapshot.
func (e *Eth1Data) Copy() *Eth1Data {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// Deposit pairs deposit data with its Merkle proof into a historical deposit
// root. The proof carries DepositContractTreeDepth+1 elements, the last one
// being the little-endian deposit count mix-in.
type Deposit struct {
	Data  *DepositData
	Proof [][]byte
}

// DepositLog is a DepositEvent parsed from a raw deposit contract log.
type DepositLog struct {
	Index       uint64
	BlockNumber uint64
	Data        *DepositData
}

// HeaderInfo specifies the block header information in the ETH 1.0 chain.
type HeaderInfo struct {
	Number *big.Int
	Hash   common.Hash
	Time   uint64
}

// Copy sends out a copy of the current headerInfo.
func (h *HeaderInfo) Copy() *HeaderInfo {
	return &HeaderInfo{
		Hash:   common.BytesToHash(h.Hash[:]),
		Number: new(big.Int).Set(h.Number),
		Time:   h.Time,
	}
}

// HeaderToHeaderInfo converts an eth1 header to a header metadata type.
func HeaderToHeaderInfo(hdr *gethTypes.Header) (*HeaderInfo, error) {
	if hdr.Number == nil {
		// A nil number will panic when calling *big.Int.Set(...)
		return nil, errors.New("cannot convert block header with nil block number")
	}

	return &HeaderInfo{
		Hash:   hdr.Hash(),
		Number: new(big.Int).Set(hdr.Number),
		Time:   hdr.Time,
	}, nil
}
