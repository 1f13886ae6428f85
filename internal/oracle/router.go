package oracle

import (
	"context"

	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// Kind names one of the three oracle roles a network carries.
type Kind int

const (
	// External prices crypto and stablecoin assets from off-chain feeds.
	External Kind = iota
	// NativeChain prices assets issued on the ledger itself.
	NativeChain
	// Forex prices fiat currency pairs.
	Forex
)

func (k Kind) String() string {
	switch k {
	case External:
		return "external"
	case NativeChain:
		return "native-chain"
	case Forex:
		return "forex"
	}
	return "unknown"
}

// Table holds the static oracle contract addresses for one environment.
// It is load-bearing: the live router falls back to it on any call
// failure, so every role must be populated.
type Table struct {
	External    string
	NativeChain string
	Forex       string
}

// Address returns the contract address serving the given role.
func (t Table) Address(k Kind) string {
	switch k {
	case NativeChain:
		return t.NativeChain
	case Forex:
		return t.Forex
	default:
		return t.External
	}
}

// Resolver maps an asset and its class to an oracle contract.
type Resolver interface {
	Resolve(ctx context.Context, asset AssetID, class AssetClass) (Kind, string)
}

// Router resolves asset classes against a static table. Resolve never
// fails; an unmapped class falls back to the External oracle.
type Router struct {
	table Table
}

// NewRouter builds a static router over the given table.
func NewRouter(table Table) *Router { return &Router{table: table} }

// RoleFor maps an asset class to the oracle role that services it.
func RoleFor(class AssetClass) Kind {
	switch class {
	case ClassNativeChainAsset:
		return NativeChain
	case ClassForex:
		return Forex
	case ClassCrypto, ClassStablecoin:
		return External
	}
	return External
}

// Resolve returns the oracle role and contract address for the class.
func (r *Router) Resolve(_ context.Context, _ AssetID, class AssetClass) (Kind, string) {
	k := RoleFor(class)
	return k, r.table.Address(k)
}

// Table returns the router's static table.
func (r *Router) Table() Table { return r.table }

// SimCaller performs a simulate-only contract call and returns the
// decoded wire value. Satisfied by the transaction lifecycle manager.
type SimCaller interface {
	SimulateCall(ctx context.Context, contract, method string, args []wire.Value) (wire.Value, error)
}

// LiveRouter asks an on-chain router contract first and falls back to
// the static table on any failure or unusable answer.
type LiveRouter struct {
	static   *Router
	contract string
	call     SimCaller
	log      *zap.Logger
}

// NewLiveRouter wraps the static router with an on-chain lookup against
// the given router contract.
func NewLiveRouter(static *Router, contract string, call SimCaller, log *zap.Logger) *LiveRouter {
	return &LiveRouter{static: static, contract: contract, call: call, log: log}
}

// Resolve queries get_oracle_for_asset on the router contract; any
// error, or a non-address answer, falls back to the static table.
func (lr *LiveRouter) Resolve(ctx context.Context, asset AssetID, class AssetClass) (Kind, string) {
	kind, fallback := lr.static.Resolve(ctx, asset, class)
	ret, err := lr.call.SimulateCall(ctx, lr.contract, "get_oracle_for_asset", []wire.Value{asset.WireArg()})
	if err != nil {
		lr.log.Debug("router contract lookup failed, using static table",
			zap.String("asset", asset.String()), zap.Error(err))
		return kind, fallback
	}
	addr, ok := ret.AsAddress()
	if !ok {
		lr.log.Debug("router contract returned non-address value, using static table",
			zap.String("asset", asset.String()), zap.Stringer("kind", ret.Kind()))
		return kind, fallback
	}
	return kind, addr
}
