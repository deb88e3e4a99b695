package eth1

import (
	"context"
	"fmt"

	gethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gballet/lighthouse/beacon-chain/eth1/types"
	contracts "github.com/gballet/lighthouse/contracts/deposit"
	"github.com/gballet/lighthouse/encoding/bytesutil"
)

// ProcessDepositLogs requests the deposit contract logs in the inclusive
// block range [from, to] and feeds them into the deposit tree, batching the
// requests so a single query never spans more blocks than the configured
// limit.
func (s *Service) ProcessDepositLogs(ctx context.Context, from, to uint64) error {
	batchSize := s.cfg.depositLogRequestLimit
	if batchSize == 0 {
		return errors.New("batch size is zero")
	}
	for start := from; start <= to; {
		end := to
		if start+batchSize-1 < to {
			end = start + batchSize - 1
		}
		logs, err := s.cfg.client.DepositLogs(ctx, start, end)
		if err != nil {
			return errors.Wrapf(err, "could not query deposit logs in range [%d, %d]", start, end)
		}
		for _, filterLog := range logs {
			if err := s.ProcessLog(ctx, filterLog); err != nil {
				return errors.Wrap(err, "could not process log")
			}
		}
		if end == to {
			break
		}
		start = end + 1
	}
	return nil
}

// ProcessLog dispatches a raw contract log according to its event signature.
// Logs that are not DepositEvents are ignored.
func (s *Service) ProcessLog(ctx context.Context, depositLog gethTypes.Log) error {
	if len(depositLog.Topics) == 0 || !contracts.IsDepositEvent(depositLog.Topics[0]) {
		log.WithField("signature", fmt.Sprintf("%#x", depositLog.Topics)).Debug("Not a valid event signature")
		return nil
	}
	return s.processDepositLog(ctx, depositLog)
}

// processDepositLog parses a DepositEvent and appends it to the deposit tree.
func (s *Service) processDepositLog(ctx context.Context, depositLog gethTypes.Log) error {
	pubkey, withdrawalCredentials, amount, signature, merkleTreeIndex, err := contracts.UnpackDepositLogData(depositLog.Data)
	if err != nil {
		return errors.Wrapf(ErrMalformedResponse, "could not unpack deposit log: %v", err)
	}
	index := bytesutil.FromBytes8(merkleTreeIndex)

	// The same log can be delivered twice by the eth1 network. Skipping
	// already-ingested indexes keeps the trie consistent.
	if index < s.depositTree.Count() {
		return nil
	}

	parsed := &types.DepositLog{
		Index:       index,
		BlockNumber: depositLog.BlockNumber,
		Data: &types.DepositData{
			PublicKey:             pubkey,
			WithdrawalCredentials: withdrawalCredentials,
			Amount:                bytesutil.FromBytes8(amount),
			Signature:             signature,
		},
	}
	if err := s.depositTree.InsertLog(ctx, parsed); err != nil {
		if errors.Is(err, ErrOutOfOrderInsert) {
			missedDepositLogsCount.Inc()
		}
		return err
	}
	log.WithFields(logrus.Fields{
		"eth1Block":       depositLog.BlockNumber,
		"publicKey":       fmt.Sprintf("%#x", bytesutil.Trunc(pubkey)),
		"merkleTreeIndex": index,
	}).Debug("Deposit registered from deposit contract")
	return nil
}
