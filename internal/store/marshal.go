package store

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/radolang/rado/ast"
)

// marshalConfig converts a resolved configuration into canonical JSON TEXT
// for storage. Values are tagged by kind so decoding is unambiguous:
// {"path": {"num": "3/2"}} round-trips exactly, never through floats.
func marshalConfig(cfg map[ast.Path]ast.Value) (string, error) {
	obj := make(ast.Obj, len(cfg))
	for p, v := range cfg {
		switch val := v.(type) {
		case ast.NumValue:
			obj[string(p)] = ast.Obj{"num": val.String()}
		case ast.BoolValue:
			obj[string(p)] = ast.Obj{"bool": bool(val)}
		case ast.PathValue:
			obj[string(p)] = ast.Obj{"path": string(val)}
		default:
			return "", fmt.Errorf("marshal config: unsupported value %T at %s", v, p)
		}
	}
	data, err := ast.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses canonical JSON TEXT back into a configuration map.
func unmarshalConfig(data string) (map[ast.Path]ast.Value, error) {
	out := make(map[ast.Path]ast.Value)
	if data == "" || data == "{}" {
		return out, nil
	}
	var raw map[string]map[string]any
	if err := decodeJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for p, tagged := range raw {
		switch {
		case tagged["num"] != nil:
			s, ok := tagged["num"].(string)
			if !ok {
				return nil, fmt.Errorf("unmarshal config: num at %s is not a string", p)
			}
			r, ok := new(big.Rat).SetString(s)
			if !ok {
				return nil, fmt.Errorf("unmarshal config: bad rational %q at %s", s, p)
			}
			out[ast.Path(p)] = ast.Num(r)
		case tagged["bool"] != nil:
			b, ok := tagged["bool"].(bool)
			if !ok {
				return nil, fmt.Errorf("unmarshal config: bool at %s is not a bool", p)
			}
			out[ast.Path(p)] = ast.BoolValue(b)
		case tagged["path"] != nil:
			s, ok := tagged["path"].(string)
			if !ok {
				return nil, fmt.Errorf("unmarshal config: path at %s is not a string", p)
			}
			out[ast.Path(p)] = ast.PathValue(s)
		default:
			return nil, fmt.Errorf("unmarshal config: unknown value tag at %s", p)
		}
	}
	return out, nil
}

// marshalInventory converts an inventory multiset into canonical JSON TEXT.
func marshalInventory(inv map[ast.Path]int64) (string, error) {
	obj := make(ast.Obj, len(inv))
	for p, n := range inv {
		obj[string(p)] = n
	}
	data, err := ast.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal inventory: %w", err)
	}
	return string(data), nil
}

// unmarshalInventory parses canonical JSON TEXT back into an inventory map.
// Counts decode via json.Number to avoid float64 precision loss.
func unmarshalInventory(data string) (map[ast.Path]int64, error) {
	out := make(map[ast.Path]int64)
	if data == "" || data == "{}" {
		return out, nil
	}
	var raw map[string]json.Number
	if err := decodeJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}
	for p, num := range raw {
		n, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("unmarshal inventory: count at %s: %w", p, err)
		}
		out[ast.Path(p)] = n
	}
	return out, nil
}

// marshalPlacement converts a location-to-item assignment into canonical
// JSON TEXT.
func marshalPlacement(placement map[ast.Path]ast.Path) (string, error) {
	obj := make(ast.Obj, len(placement))
	for loc, item := range placement {
		obj[string(loc)] = string(item)
	}
	data, err := ast.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal placement: %w", err)
	}
	return string(data), nil
}

// unmarshalPlacement parses canonical JSON TEXT back into a placement map.
func unmarshalPlacement(data string) (map[ast.Path]ast.Path, error) {
	out := make(map[ast.Path]ast.Path)
	if data == "" || data == "{}" {
		return out, nil
	}
	var raw map[string]string
	if err := decodeJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal placement: %w", err)
	}
	for loc, item := range raw {
		out[ast.Path(loc)] = ast.Path(item)
	}
	return out, nil
}

// decodeJSON decodes with UseNumber so integers never pass through floats.
func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
