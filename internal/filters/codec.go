package filters

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire is the JSON form of a predicate.
type Wire struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Low   any    `json:"low,omitempty"`
	High  any    `json:"high,omitempty"`
	Point []any  `json:"point,omitempty"`
	From  any    `json:"from,omitempty"`
	To    any    `json:"to,omitempty"`
	Path  []any  `json:"path,omitempty"`
}

// ToWire converts a predicate into its JSON form.
func ToWire(f Filter) (Wire, error) {
	switch p := f.(type) {
	case Exact:
		return Wire{Type: KindExact.String(), Value: p.Value}, nil
	case Ranged:
		return Wire{Type: KindRanged.String(), Low: p.Low, High: p.High}, nil
	case TwoDimensional:
		if !p.Valid() {
			return Wire{}, fmt.Errorf("two-dimensional filter has no point")
		}
		return Wire{Type: KindTwoDimensional.String(), Point: []any{p.X, p.Y}}, nil
	case RangedTwoDimensional:
		if p.xOnly {
			return Wire{Type: KindRangedTwoDimensional.String(), From: p.X1, To: p.X2}, nil
		}
		return Wire{
			Type: KindRangedTwoDimensional.String(),
			From: []any{p.X1, p.Y1},
			To:   []any{p.X2, p.Y2},
		}, nil
	case Hierarchy:
		return Wire{Type: KindHierarchy.String(), Path: p.Path}, nil
	default:
		return Wire{}, fmt.Errorf("unsupported filter type %T", f)
	}
}

// FromWire rebuilds a predicate from its JSON form. Strings in RFC 3339 form come back as
// time.Time, matching how times are marshaled.
func FromWire(w Wire) (Filter, error) {
	w.Value, w.Low, w.High = Restore(w.Value), Restore(w.Low), Restore(w.High)
	w.From, w.To = Restore(w.From), Restore(w.To)
	w.Point, w.Path = restoreAll(w.Point), restoreAll(w.Path)

	switch w.Type {
	case KindExact.String(), "":
		return Exact{Value: w.Value}, nil
	case KindRanged.String():
		return Ranged{Low: w.Low, High: w.High}, nil
	case KindTwoDimensional.String():
		if len(w.Point) != 2 {
			return nil, fmt.Errorf("two-dimensional filter needs a 2-element point, got %d", len(w.Point))
		}
		return TwoDimensional{X: w.Point[0], Y: w.Point[1]}, nil
	case KindRangedTwoDimensional.String():
		return NewRangedTwoDimensional(w.From, w.To), nil
	case KindHierarchy.String():
		return NewHierarchy(w.Path...), nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", w.Type)
	}
}

// Restore converts a value decoded from JSON back into a key: RFC 3339 strings become
// time.Time, recursively through slices.
func Restore(v any) any {
	switch x := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t
		}
	case []any:
		return restoreAll(x)
	}
	return v
}

func restoreAll(vs []any) []any {
	if vs == nil {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = Restore(v)
	}
	return out
}

// Encode marshals predicates as a JSON array.
func Encode(fs []Filter) ([]byte, error) {
	wires := make([]Wire, 0, len(fs))
	for _, f := range fs {
		w, err := ToWire(f)
		if err != nil {
			return nil, err
		}
		wires = append(wires, w)
	}
	return json.Marshal(wires)
}

// Decode unmarshals a JSON array produced by Encode.
func Decode(data []byte) ([]Filter, error) {
	var wires []Wire
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("failed to parse filters: %w", err)
	}
	return FromWires(wires)
}

// FromWires rebuilds every predicate in ws.
func FromWires(ws []Wire) ([]Filter, error) {
	out := make([]Filter, 0, len(ws))
	for i, w := range ws {
		f, err := FromWire(w)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
