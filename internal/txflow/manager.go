package txflow

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/rpc"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/signer"
)

// LedgerRPC is the node boundary the lifecycle drives. Implemented by
// rpc.Client; replaced by mocks in tests.
type LedgerRPC interface {
	SimulateTransaction(ctx context.Context, envelope string) (*rpc.SimulateResponse, error)
	SendTransaction(ctx context.Context, envelope string) (*rpc.SendResponse, error)
	GetTransaction(ctx context.Context, hash string) (*rpc.GetTransactionResponse, error)
	GetAccount(ctx context.Context, address string) (*rpc.Account, error)
}

// State names a position in the lifecycle:
// Built -> Simulated -> Prepared -> Signed -> Submitted ->
// {Confirmed | Failed | Abandoned}.
type State int

const (
	StateBuilt State = iota
	StateSimulated
	StatePrepared
	StateSigned
	StateSubmitted
	StateConfirmed
	StateFailed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSimulated:
		return "simulated"
	case StatePrepared:
		return "prepared"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Pending is the ephemeral per-submission state tracked while polling.
type Pending struct {
	Hash               string
	SubmittedAt        time.Time
	Attempt            uint32
	LastObservedStatus string
}

// Outcome distinguishes how waiting ended. Unconfirmed is not a
// failure: the transaction may still land after the client stops
// watching, so callers must reconcile rather than double-submit.
type Outcome int

const (
	OutcomeConfirmed Outcome = iota
	OutcomeUnconfirmed
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeUnconfirmed:
		return "unconfirmed"
	case OutcomeAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Result is the terminal product of one Invoke.
type Result struct {
	Outcome   Outcome
	Hash      string
	Return    wire.Value
	HasReturn bool
	// FallbackID is non-zero when the transaction confirmed but its
	// return value could not be decoded and the caller asked for a
	// synthesized placeholder identifier.
	FallbackID uint64
}

// Options tunes the lifecycle. Zero values take the documented defaults.
type Options struct {
	// PollInterval between getTransaction attempts.
	PollInterval time.Duration
	// PollBudget is the bounded number of poll attempts.
	PollBudget int
	// BaseFee is the conservative placeholder fee attached at build.
	BaseFee uint64
	// FallbackFee is the materially higher flat fee used when prepare
	// fails transiently.
	FallbackFee uint64
	// TimeoutSeconds is the ledger-level expiration window.
	TimeoutSeconds uint32
}

func (o *Options) fillDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.PollBudget <= 0 {
		o.PollBudget = 20
	}
	if o.BaseFee == 0 {
		o.BaseFee = 100
	}
	if o.FallbackFee == 0 {
		o.FallbackFee = o.BaseFee * 100
	}
	if o.TimeoutSeconds == 0 {
		o.TimeoutSeconds = 30
	}
}

// InvokeOption adjusts a single Invoke.
type InvokeOption func(*invokeConfig)

type invokeConfig struct {
	fallbackOrderID bool
}

// WithFallbackOrderID lets a create-order call succeed with a
// locally-unique placeholder identifier when the transaction confirmed
// on-chain but its return value would not decode. Never applied to
// reads, and never to a call that did not reach the network.
func WithFallbackOrderID() InvokeOption {
	return func(c *invokeConfig) { c.fallbackOrderID = true }
}

// Manager owns the transaction lifecycle for one signing identity and
// network. Concurrent Invokes on the same account serialize through the
// submit phase so they cannot race on the sequence number; polling runs
// unlocked.
type Manager struct {
	rpc     LedgerRPC
	signer  signer.Signer
	network string
	opts    Options
	journal *Journal
	log     *zap.Logger

	mu       sync.Mutex
	accounts map[string]*sync.Mutex
}

// NewManager builds a lifecycle manager. journal may be nil, in which
// case unconfirmed submissions are not persisted for reconciliation.
func NewManager(client LedgerRPC, sg signer.Signer, networkPassphrase string, opts Options, journal *Journal, log *zap.Logger) *Manager {
	opts.fillDefaults()
	return &Manager{
		rpc:      client,
		signer:   sg,
		network:  networkPassphrase,
		opts:     opts,
		journal:  journal,
		log:      log,
		accounts: make(map[string]*sync.Mutex),
	}
}

// Invoke runs one contract call through the full lifecycle and waits
// for its fate within the polling budget.
func (m *Manager) Invoke(ctx context.Context, call ContractCall, opts ...InvokeOption) (*Result, error) {
	var cfg invokeConfig
	for _, o := range opts {
		o(&cfg)
	}
	hash, err := m.submit(ctx, call)
	if err != nil {
		return nil, err
	}
	return m.poll(ctx, call, hash, cfg)
}

// submit carries the lifecycle from Built through Submitted under the
// per-account lock.
func (m *Manager) submit(ctx context.Context, call ContractCall) (string, error) {
	addr := m.signer.Address()
	lock := m.accountLock(addr)
	lock.Lock()
	defer lock.Unlock()

	acct, err := m.rpc.GetAccount(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("fetch account %s: %w", addr, err)
	}

	tx := &Transaction{
		Source:         addr,
		Sequence:       acct.Sequence + 1,
		Fee:            m.opts.BaseFee,
		TimeoutSeconds: m.opts.TimeoutSeconds,
		Call:           call,
	}

	unsigned, err := (&Envelope{Tx: tx}).Base64()
	if err != nil {
		return "", err
	}
	sim, err := m.rpc.SimulateTransaction(ctx, unsigned)
	if err != nil {
		return "", fmt.Errorf("simulate %s: %w", call.Method, err)
	}
	if sim.Error != "" {
		return "", &SimulationRejectedError{Method: call.Method, Diagnostic: sim.Error}
	}

	// Prepare: attach the resource fee the simulation computed. A
	// transient failure here falls back to a flat fee instead of
	// aborting a transaction the contract already accepted in dry run.
	if fee, perr := strconv.ParseUint(sim.MinResourceFee, 10, 64); perr == nil && sim.MinResourceFee != "" {
		tx.ResourceFee = fee
	} else {
		prepErr := &PrepareFailedError{Cause: fmt.Errorf("unusable minResourceFee %q", sim.MinResourceFee)}
		m.log.Warn("prepare failed, using fallback flat fee",
			zap.String("method", call.Method),
			zap.Uint64("fallback_fee", m.opts.FallbackFee),
			zap.Error(prepErr))
		tx.Fee = m.opts.FallbackFee
	}

	payload, err := tx.SigningPayload(m.network)
	if err != nil {
		return "", err
	}
	sig, err := m.signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", call.Method, err)
	}

	signed, err := (&Envelope{Tx: tx, Signature: sig}).Base64()
	if err != nil {
		return "", err
	}
	sent, err := m.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("send %s: %w", call.Method, err)
	}
	if sent.Status == rpc.SendStatusError {
		return "", &SubmissionRejectedError{Status: sent.Status, Diagnostic: sent.ErrorResult}
	}

	hash := sent.Hash
	if hash == "" {
		if hash, err = tx.Hash(m.network); err != nil {
			return "", err
		}
	}
	m.journalPut(Record{
		Hash:        hash,
		Account:     addr,
		Contract:    call.Contract,
		Method:      call.Method,
		SubmittedAt: time.Now().Unix(),
		LastStatus:  rpc.TxStatusNotFound,
	})
	m.log.Info("transaction submitted",
		zap.String("method", call.Method),
		zap.String("hash", hash))
	return hash, nil
}

// poll watches a submitted hash until a terminal status, the polling
// budget runs out, or the caller abandons via ctx.
func (m *Manager) poll(ctx context.Context, call ContractCall, hash string, cfg invokeConfig) (*Result, error) {
	pending := Pending{Hash: hash, SubmittedAt: time.Now()}
	timer := time.NewTimer(m.opts.PollInterval)
	defer timer.Stop()

	for pending.Attempt = 1; int(pending.Attempt) <= m.opts.PollBudget; pending.Attempt++ {
		select {
		case <-ctx.Done():
			// Abandonment is client-local bookkeeping; the network-side
			// outcome is unaffected and the journal keeps the record.
			m.log.Info("abandoned waiting on transaction", zap.String("hash", hash))
			return &Result{Outcome: OutcomeAbandoned, Hash: hash}, nil
		case <-timer.C:
		}
		timer.Reset(m.opts.PollInterval)

		resp, err := m.rpc.GetTransaction(ctx, hash)
		if err != nil {
			// Transient wire or transport trouble while polling is not
			// a verdict on the transaction; keep watching.
			m.log.Debug("poll attempt failed",
				zap.String("hash", hash),
				zap.Uint32("attempt", pending.Attempt),
				zap.Error(err))
			continue
		}
		pending.LastObservedStatus = resp.Status

		switch resp.Status {
		case rpc.TxStatusSuccess:
			m.journalDelete(hash)
			return m.confirmed(call, hash, resp, cfg)
		case rpc.TxStatusFailed:
			m.journalDelete(hash)
			return nil, &TransactionFailedError{Hash: hash, Raw: resp.ResultXDR}
		default:
			// NOT_FOUND or an unknown status: keep polling.
		}
	}

	// Budget exhausted without a terminal status. This is not a
	// failure claim: the transaction may still land.
	m.journalPut(Record{
		Hash:        hash,
		Account:     m.signer.Address(),
		Contract:    call.Contract,
		Method:      call.Method,
		SubmittedAt: pending.SubmittedAt.Unix(),
		Attempts:    pending.Attempt - 1,
		LastStatus:  pending.LastObservedStatus,
	})
	m.log.Warn("poll budget exhausted, transaction unconfirmed", zap.String("hash", hash))
	return &Result{Outcome: OutcomeUnconfirmed, Hash: hash}, nil
}

// confirmed decodes the contract's return value out of a SUCCESS
// response. A decode gap on an otherwise-successful transaction is
// cosmetic: the call did land, so creates may fall back to a
// synthesized identifier instead of blocking on it.
func (m *Manager) confirmed(call ContractCall, hash string, resp *rpc.GetTransactionResponse, cfg invokeConfig) (*Result, error) {
	res := &Result{Outcome: OutcomeConfirmed, Hash: hash}
	if resp.ReturnValue == "" {
		if cfg.fallbackOrderID {
			res.FallbackID = fallbackID()
		}
		return res, nil
	}
	ret, err := wire.UnmarshalBase64(resp.ReturnValue)
	if err != nil {
		m.log.Warn("confirmed transaction return value did not decode",
			zap.String("method", call.Method),
			zap.String("hash", hash),
			zap.Error(err))
		if cfg.fallbackOrderID {
			res.FallbackID = fallbackID()
		}
		return res, nil
	}
	res.Return = ret
	res.HasReturn = true
	return res, nil
}

// fallbackID synthesizes a locally-unique placeholder order identifier.
func fallbackID() uint64 { return uint64(time.Now().UnixNano()) }

// SimulateCall performs a read: a simulate-only invocation whose return
// value is decoded and returned without spending a fee. Satisfies
// oracle.SimCaller.
func (m *Manager) SimulateCall(ctx context.Context, contract, method string, args []wire.Value) (wire.Value, error) {
	tx := &Transaction{
		Source:         m.signer.Address(),
		Fee:            m.opts.BaseFee,
		TimeoutSeconds: m.opts.TimeoutSeconds,
		Call:           ContractCall{Contract: contract, Method: method, Args: args},
	}
	unsigned, err := (&Envelope{Tx: tx}).Base64()
	if err != nil {
		return wire.Void(), err
	}
	sim, err := m.rpc.SimulateTransaction(ctx, unsigned)
	if err != nil {
		return wire.Void(), fmt.Errorf("simulate %s: %w", method, err)
	}
	if sim.Error != "" {
		return wire.Void(), &SimulationRejectedError{Method: method, Diagnostic: sim.Error}
	}
	encoded, ok := sim.ReturnValue()
	if !ok {
		return wire.Void(), nil
	}
	return wire.UnmarshalBase64(encoded)
}

// ReconcileOutcome reports the current fate of one journaled record.
type ReconcileOutcome struct {
	Record    Record
	Status    string
	Return    wire.Value
	HasReturn bool
}

// Reconcile re-polls every journaled submission once. Terminal
// statuses drop the record; still-unknown ones keep it.
func (m *Manager) Reconcile(ctx context.Context) ([]ReconcileOutcome, error) {
	if m.journal == nil {
		return nil, nil
	}
	records, err := m.journal.Pending()
	if err != nil {
		return nil, err
	}
	out := make([]ReconcileOutcome, 0, len(records))
	for _, rec := range records {
		resp, err := m.rpc.GetTransaction(ctx, rec.Hash)
		if err != nil {
			out = append(out, ReconcileOutcome{Record: rec, Status: rec.LastStatus})
			continue
		}
		oc := ReconcileOutcome{Record: rec, Status: resp.Status}
		switch resp.Status {
		case rpc.TxStatusSuccess:
			if resp.ReturnValue != "" {
				if ret, derr := wire.UnmarshalBase64(resp.ReturnValue); derr == nil {
					oc.Return = ret
					oc.HasReturn = true
				}
			}
			m.journalDelete(rec.Hash)
		case rpc.TxStatusFailed:
			m.journalDelete(rec.Hash)
		}
		out = append(out, oc)
	}
	return out, nil
}

func (m *Manager) accountLock(addr string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.accounts[addr]
	if !ok {
		l = &sync.Mutex{}
		m.accounts[addr] = l
	}
	return l
}

func (m *Manager) journalPut(rec Record) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Put(rec); err != nil {
		m.log.Warn("journal write failed", zap.String("hash", rec.Hash), zap.Error(err))
	}
}

func (m *Manager) journalDelete(hash string) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Delete(hash); err != nil {
		m.log.Warn("journal delete failed", zap.String("hash", hash), zap.Error(err))
	}
}
