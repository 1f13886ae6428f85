package txflow

import "fmt"

// SimulationRejectedError is a deterministic contract-side rejection
// surfaced by the dry run. It is terminal for the attempt and never
// retried; no fee was spent and the order definitely did not happen.
type SimulationRejectedError struct {
	Method     string
	Diagnostic string
}

func (e *SimulationRejectedError) Error() string {
	return fmt.Sprintf("simulation rejected %s: %s", e.Method, e.Diagnostic)
}

// PrepareFailedError records a transient failure attaching resource and
// fee metadata. The lifecycle does not abort on it; it falls back to a
// materially higher flat fee and proceeds.
type PrepareFailedError struct {
	Cause error
}

func (e *PrepareFailedError) Error() string {
	return fmt.Sprintf("prepare failed: %v", e.Cause)
}

func (e *PrepareFailedError) Unwrap() error { return e.Cause }

// SubmissionRejectedError is a network-level rejection of the signed
// envelope. Nothing was queued; the order definitely did not happen.
type SubmissionRejectedError struct {
	Status     string
	Diagnostic string
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("submission rejected (%s): %s", e.Status, e.Diagnostic)
}

// TransactionFailedError is a terminal on-chain failure, including a
// ledger-level expiry before inclusion. Raw carries the network's
// diagnostic payload verbatim.
type TransactionFailedError struct {
	Hash string
	Raw  string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed on-chain: %s", e.Hash, e.Raw)
}
