// Package deposit contains the ABI surface of the eth1 validator deposit
// contract needed to follow it remotely: the DepositEvent log layout and the
// two read-only queries for the contract's Merkle root and deposit count.
package deposit

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ContractABI is the subset of the deposit contract ABI exercised by the
// tracking core.
const ContractABI = `[
  {
    "name": "DepositEvent",
    "type": "event",
    "anonymous": false,
    "inputs": [
      {"name": "pubkey", "type": "bytes", "indexed": false},
      {"name": "withdrawal_credentials", "type": "bytes", "indexed": false},
      {"name": "amount", "type": "bytes", "indexed": false},
      {"name": "signature", "type": "bytes", "indexed": false},
      {"name": "index", "type": "bytes", "indexed": false}
    ]
  },
  {
    "name": "get_deposit_root",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "name": "get_deposit_count",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "bytes"}]
  }
]`

// EventTopic is the topic hash identifying DepositEvent logs.
var EventTopic = crypto.Keccak256Hash([]byte("DepositEvent(bytes,bytes,bytes,bytes,bytes)"))

var (
	parsedABI abi.ABI
	parseErr  error
	parseOnce sync.Once
)

// ParsedABI returns the parsed deposit contract ABI.
func ParsedABI() (abi.ABI, error) {
	parseOnce.Do(func() {
		parsedABI, parseErr = abi.JSON(strings.NewReader(ContractABI))
	})
	return parsedABI, parseErr
}

// UnpackDepositLogData unpacks the data from a deposit log using the ABI decoder.
func UnpackDepositLogData(data []byte) (pubkey, withdrawalCredentials, amount, signature, index []byte, err error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, nil, nil, nil, nil, errors.Wrap(err, "unable to parse deposit contract ABI")
	}
	unpackedLogs, err := parsed.Unpack("DepositEvent", data)
	if err != nil {
		return nil, nil, nil, nil, nil, errors.Wrap(err, "unable to unpack deposit event logs")
	}
	if len(unpackedLogs) != 5 {
		return nil, nil, nil, nil, nil, errors.Errorf("incorrect number of unpacked values: wanted 5 but got %d", len(unpackedLogs))
	}

	return unpackedLogs[0].([]byte), unpackedLogs[1].([]byte), unpackedLogs[2].([]byte), unpackedLogs[3].([]byte), unpackedLogs[4].([]byte), nil
}

// PackDepositLogData is the inverse of UnpackDepositLogData. It is used by
// test doubles that synthesize raw contract logs.
func PackDepositLogData(pubkey, withdrawalCredentials, amount, signature, index []byte) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse deposit contract ABI")
	}
	return parsed.Events["DepositEvent"].Inputs.Pack(pubkey, withdrawalCredentials, amount, signature, index)
}

// IsDepositEvent returns true when the given log topic belongs to a DepositEvent.
func IsDepositEvent(topic common.Hash) bool {
	return topic == EventTopic
}
