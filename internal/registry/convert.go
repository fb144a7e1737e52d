package registry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// fromWireValue converts one decoded-JSON wire value into its storage
// representation per the field's kind.
func fromWireValue(f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch f.Kind {
	case KindString, KindJSON:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}

		return s, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}

		return b, nil
	case KindNumber:
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", v)
		}

		return decimal.NewFromFloat(n), nil
	case KindNullableTimestamp:
		millis, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected millisecond timestamp, got %T", v)
		}

		t := time.UnixMilli(int64(millis)).UTC()

		return &t, nil
	default:
		return nil, fmt.Errorf("unknown field kind %d", f.Kind)
	}
}

// toWireValue converts one storage value back into its wire representation.
func toWireValue(f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch f.Kind {
	case KindString, KindJSON, KindBool:
		return v, nil
	case KindNumber:
		switch n := v.(type) {
		case decimal.Decimal:
			f64, _ := n.Float64()
			return f64, nil
		case float64:
			return n, nil
		default:
			return nil, fmt.Errorf("expected decimal, got %T", v)
		}
	case KindNullableTimestamp:
		switch t := v.(type) {
		case time.Time:
			return t.UnixMilli(), nil
		case *time.Time:
			if t == nil {
				return nil, nil
			}

			return t.UnixMilli(), nil
		default:
			return nil, fmt.Errorf("expected time, got %T", v)
		}
	default:
		return nil, fmt.Errorf("unknown field kind %d", f.Kind)
	}
}
