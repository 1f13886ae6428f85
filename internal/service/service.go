// Package service is the composition root for the client core: it wires
// the order codec and the transaction lifecycle for writes, and the
// oracle router, price decoder and cache for reads.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/config"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/orders"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/txflow"
)

// Invoker is the slice of the lifecycle manager the service drives.
type Invoker interface {
	Invoke(ctx context.Context, call txflow.ContractCall, opts ...txflow.InvokeOption) (*txflow.Result, error)
	SimulateCall(ctx context.Context, contract, method string, args []wire.Value) (wire.Value, error)
	Reconcile(ctx context.Context) ([]txflow.ReconcileOutcome, error)
}

// Service exposes create/cancel/query operations for protective orders
// and normalized price reads.
type Service struct {
	env    config.Environment
	tx     Invoker
	router oracle.Resolver
	cache  *oracle.Cache
	log    *zap.Logger
}

// New builds a service. router is typically the static oracle router,
// or the live variant when the environment names a router contract.
// cache may be nil to disable price caching.
func New(env config.Environment, tx Invoker, router oracle.Resolver, cache *oracle.Cache, log *zap.Logger) *Service {
	return &Service{env: env, tx: tx, router: router, cache: cache, log: log}
}

// CreateResult reports how an order creation ended. Confirmed false
// with a non-empty Hash means the outcome is unknown: the caller must
// reconcile later, not resubmit.
type CreateResult struct {
	OrderID    uint64
	Confirmed  bool
	Hash       string
	FallbackID bool
}

// CreateOrder validates and submits any order spec, waiting for its
// fate within the polling budget.
func (s *Service) CreateOrder(ctx context.Context, spec orders.Spec) (CreateResult, error) {
	method, params, err := orders.EncodeCreate(spec)
	if err != nil {
		return CreateResult{}, err
	}
	call := txflow.ContractCall{Contract: s.env.OrderContract, Method: method, Args: params}
	res, err := s.tx.Invoke(ctx, call, txflow.WithFallbackOrderID())
	if err != nil {
		return CreateResult{}, err
	}
	switch res.Outcome {
	case txflow.OutcomeConfirmed:
		out := CreateResult{Confirmed: true, Hash: res.Hash}
		if res.HasReturn {
			id, derr := orders.DecodeOrderID(res.Return)
			if derr == nil {
				out.OrderID = id
				return out, nil
			}
			s.log.Warn("order id did not decode from confirmed return",
				zap.String("method", method), zap.Error(derr))
		}
		// The order landed on-chain; surface the synthesized id rather
		// than blocking on a cosmetic decode gap.
		out.OrderID = res.FallbackID
		out.FallbackID = true
		return out, nil
	default:
		// Unconfirmed or abandoned: outcome unknown.
		return CreateResult{Hash: res.Hash}, nil
	}
}

// CancelOrder cancels an active order owned by the signing account.
func (s *Service) CancelOrder(ctx context.Context, owner string, orderID uint64) error {
	method, params := orders.EncodeCancel(owner, orderID)
	call := txflow.ContractCall{Contract: s.env.OrderContract, Method: method, Args: params}
	res, err := s.tx.Invoke(ctx, call)
	if err != nil {
		return err
	}
	if res.Outcome != txflow.OutcomeConfirmed {
		return fmt.Errorf("cancel of order %d is %s (tx %s); reconcile before retrying", orderID, res.Outcome, res.Hash)
	}
	return nil
}

// CheckAndExecute asks the contract to evaluate one order against the
// current oracle price, executing it when triggered.
func (s *Service) CheckAndExecute(ctx context.Context, orderID uint64) (bool, error) {
	call := txflow.ContractCall{
		Contract: s.env.OrderContract,
		Method:   "check_and_execute",
		Args:     []wire.Value{wire.U64Val(orderID)},
	}
	return s.invokeBool(ctx, call, orderID)
}

// CheckAndExecuteTWAP evaluates an order against the TWAP over the
// given periods instead of the spot price.
func (s *Service) CheckAndExecuteTWAP(ctx context.Context, orderID uint64, periods uint32) (bool, error) {
	call := txflow.ContractCall{
		Contract: s.env.OrderContract,
		Method:   "check_and_execute_twap",
		Args:     []wire.Value{wire.U64Val(orderID), wire.U32Val(periods)},
	}
	return s.invokeBool(ctx, call, orderID)
}

func (s *Service) invokeBool(ctx context.Context, call txflow.ContractCall, orderID uint64) (bool, error) {
	res, err := s.tx.Invoke(ctx, call)
	if err != nil {
		return false, err
	}
	if res.Outcome != txflow.OutcomeConfirmed {
		return false, fmt.Errorf("%s of order %d is %s (tx %s)", call.Method, orderID, res.Outcome, res.Hash)
	}
	if b, ok := res.Return.AsBool(); ok {
		return b, nil
	}
	return false, nil
}

// GetOrder reads one order record. Reads are simulate-only: no fee is
// spent and nothing is submitted.
func (s *Service) GetOrder(ctx context.Context, orderID uint64) (orders.Order, error) {
	ret, err := s.tx.SimulateCall(ctx, s.env.OrderContract, "get_order_details",
		[]wire.Value{wire.U64Val(orderID)})
	if err != nil {
		return orders.Order{}, err
	}
	return orders.DecodeOrder(orderID, ret)
}

// UserOrders lists the order ids owned by an account.
func (s *Service) UserOrders(ctx context.Context, owner string) ([]uint64, error) {
	ret, err := s.tx.SimulateCall(ctx, s.env.OrderContract, "get_user_orders",
		[]wire.Value{wire.AddressVal(owner)})
	if err != nil {
		return nil, err
	}
	return orders.DecodeOrderIDs(ret)
}

// AllOrders reads the full order book snapshot.
func (s *Service) AllOrders(ctx context.Context) ([]orders.Order, error) {
	ret, err := s.tx.SimulateCall(ctx, s.env.OrderContract, "get_all_orders", nil)
	if err != nil {
		return nil, err
	}
	return orders.DecodeOrderMap(ret)
}

// Reconcile re-polls journaled submissions whose outcome was unknown
// when the client stopped watching.
func (s *Service) Reconcile(ctx context.Context) ([]txflow.ReconcileOutcome, error) {
	return s.tx.Reconcile(ctx)
}
