package orders

import (
	"fmt"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// DecodeError reports a malformed order record field. Missing optional
// fields are not errors; a missing required field is.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode order: field %q: %s", e.Field, e.Reason)
}

// EncodeCreate validates spec and produces the contract method name and
// its ordered parameter list.
func EncodeCreate(spec Spec) (string, []wire.Value, error) {
	if err := spec.Validate(); err != nil {
		return "", nil, err
	}
	return spec.method(), spec.params(), nil
}

// EncodeCancel produces the cancel_order call parameters.
func EncodeCancel(owner string, orderID uint64) (string, []wire.Value) {
	return "cancel_order", []wire.Value{wire.AddressVal(owner), wire.U64Val(orderID)}
}

// DecodeOrder maps a returned order record onto the domain model. The
// record is a map keyed by symbols; trailing_percent and
// take_profit_price may be absent or void, which decodes to
// not-present rather than an error.
func DecodeOrder(id uint64, v wire.Value) (Order, error) {
	if _, ok := v.AsMap(); !ok {
		return Order{}, &DecodeError{Field: "record", Reason: fmt.Sprintf("expected map, got %s", v.Kind())}
	}
	o := Order{ID: id}

	owner, ok := v.MapGet("owner")
	if !ok {
		return Order{}, &DecodeError{Field: "owner", Reason: "missing"}
	}
	if o.Owner, ok = owner.AsAddress(); !ok {
		return Order{}, &DecodeError{Field: "owner", Reason: fmt.Sprintf("expected address, got %s", owner.Kind())}
	}

	asset, ok := v.MapGet("asset")
	if !ok {
		return Order{}, &DecodeError{Field: "asset", Reason: "missing"}
	}
	if o.Asset, ok = asset.AsSymbol(); !ok {
		// Natively-issued assets come back as contract addresses.
		if o.Asset, ok = asset.AsAddress(); !ok {
			return Order{}, &DecodeError{Field: "asset", Reason: fmt.Sprintf("expected symbol or address, got %s", asset.Kind())}
		}
	}

	var err error
	if o.Amount, err = requiredI128(v, "amount"); err != nil {
		return Order{}, err
	}
	if o.StopPrice, err = requiredI128(v, "stop_price"); err != nil {
		return Order{}, err
	}
	// highest_price is absent on some older records; default to the
	// stop level rather than failing.
	if hp, ok := v.MapGet("highest_price"); ok {
		if o.HighestPrice, ok = hp.AsI128(); !ok && !hp.IsVoid() {
			return Order{}, &DecodeError{Field: "highest_price", Reason: fmt.Sprintf("expected i128, got %s", hp.Kind())}
		}
	} else {
		o.HighestPrice = o.StopPrice
	}

	if tp, ok := v.MapGet("trailing_percent"); ok && !tp.IsVoid() {
		pct, ok := tp.AsU32()
		if !ok {
			return Order{}, &DecodeError{Field: "trailing_percent", Reason: fmt.Sprintf("expected u32, got %s", tp.Kind())}
		}
		o.TrailingPercent = pct
		o.HasTrailing = true
	}
	if tpp, ok := v.MapGet("take_profit_price"); ok && !tpp.IsVoid() {
		p, ok := tpp.AsI128()
		if !ok {
			return Order{}, &DecodeError{Field: "take_profit_price", Reason: fmt.Sprintf("expected i128, got %s", tpp.Kind())}
		}
		o.TakeProfitPrice = p
		o.HasTakeProfit = true
	}

	if created, ok := v.MapGet("created_at"); ok {
		if o.CreatedAt, ok = created.AsU64(); !ok {
			return Order{}, &DecodeError{Field: "created_at", Reason: fmt.Sprintf("expected u64, got %s", created.Kind())}
		}
	}

	status, ok := v.MapGet("status")
	if !ok {
		return Order{}, &DecodeError{Field: "status", Reason: "missing"}
	}
	if o.Status, err = decodeStatus(status); err != nil {
		return Order{}, err
	}
	return o, nil
}

func requiredI128(v wire.Value, field string) (wire.Int128, error) {
	entry, ok := v.MapGet(field)
	if !ok {
		return wire.Int128{}, &DecodeError{Field: field, Reason: "missing"}
	}
	x, ok := entry.AsI128()
	if !ok {
		return wire.Int128{}, &DecodeError{Field: field, Reason: fmt.Sprintf("expected i128, got %s", entry.Kind())}
	}
	return x, nil
}

// decodeStatus accepts both encodings seen on the wire: a bare symbol
// and a unit enum variant boxed in a one-element vector.
func decodeStatus(v wire.Value) (Status, error) {
	name, ok := v.AsSymbol()
	if !ok {
		if elems, vecOK := v.AsVec(); vecOK && len(elems) > 0 {
			name, ok = elems[0].AsSymbol()
		}
	}
	if !ok {
		return 0, &DecodeError{Field: "status", Reason: fmt.Sprintf("expected symbol or vec, got %s", v.Kind())}
	}
	switch name {
	case "Active":
		return StatusActive, nil
	case "Executed":
		return StatusExecuted, nil
	case "Cancelled":
		return StatusCancelled, nil
	}
	return 0, &DecodeError{Field: "status", Reason: fmt.Sprintf("unknown variant %q", name)}
}

// DecodeOrderIDs parses the Vec<u64> returned by get_user_orders.
func DecodeOrderIDs(v wire.Value) ([]uint64, error) {
	elems, ok := v.AsVec()
	if !ok {
		if v.IsVoid() {
			return nil, nil
		}
		return nil, &DecodeError{Field: "order_ids", Reason: fmt.Sprintf("expected vec, got %s", v.Kind())}
	}
	ids := make([]uint64, 0, len(elems))
	for i, el := range elems {
		id, ok := el.AsU64()
		if !ok {
			return nil, &DecodeError{Field: "order_ids", Reason: fmt.Sprintf("element %d: expected u64, got %s", i, el.Kind())}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DecodeOrderMap parses the Map<u64, record> returned by get_all_orders.
// Individual records that fail to decode are skipped; a wholly
// unexpected shape is an error.
func DecodeOrderMap(v wire.Value) ([]Order, error) {
	ents, ok := v.AsMap()
	if !ok {
		if v.IsVoid() {
			return nil, nil
		}
		return nil, &DecodeError{Field: "orders", Reason: fmt.Sprintf("expected map, got %s", v.Kind())}
	}
	out := make([]Order, 0, len(ents))
	for _, e := range ents {
		id, ok := e.Key.AsU64()
		if !ok {
			continue
		}
		o, err := DecodeOrder(id, e.Val)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// DecodeOrderID parses the u64 order id a create call returns.
func DecodeOrderID(v wire.Value) (uint64, error) {
	if id, ok := v.AsU64(); ok {
		return id, nil
	}
	// Some revisions box the id.
	if elems, ok := v.AsVec(); ok && len(elems) == 1 {
		if id, ok := elems[0].AsU64(); ok {
			return id, nil
		}
	}
	return 0, &DecodeError{Field: "order_id", Reason: fmt.Sprintf("expected u64, got %s", v.Kind())}
}
