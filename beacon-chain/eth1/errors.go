package eth1

import "github.com/pkg/errors"

var (
	// ErrOutOfOrderInsert is returned when a deposit log is inserted with an
	// index that does not equal the current leaf count. The caller must
	// re-sync from the correct index; the tree is left unmodified.
	ErrOutOfOrderInsert = errors.New("deposit log does not follow the current deposit count")

	// ErrInsufficientHistory is returned when deposits are requested at a
	// deposit count greater than the number of ingested logs. The caller must
	// ingest more logs before retrying.
	ErrInsufficientHistory = errors.New("requested deposit count exceeds ingested deposit logs")

	// ErrRemoteUnavailable indicates a network or timeout failure talking to
	// the eth1 node. Retryable.
	ErrRemoteUnavailable = errors.New("eth1 node is unavailable")

	// ErrMalformedResponse indicates the eth1 node answered with data that
	// violates the expected schema. Surfaced to the caller, never silently
	// retried.
	ErrMalformedResponse = errors.New("malformed response from eth1 node")

	// ErrBlockUnavailable indicates the eth1 node does not have a block at
	// the requested height yet. Treated as transient.
	ErrBlockUnavailable = errors.New("eth1 block is unavailable at the requested height")
)

// IsRetryable reports whether the error stems from a transient condition on
// the remote node, as opposed to a schema violation or a caller mistake.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrBlockUnavailable)
}
