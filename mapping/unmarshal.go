package mapping

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
)

const (
	fieldTag     = "fit"
	tagTime      = "time"
	tagTimestamp = "timestamp"
)

// plan lists the keys a struct type accepts.
type plan struct {
	fields       [256]bool
	hasFields    bool
	timeOffset   bool
	hasTimestamp bool
}

var plans sync.Map // reflect.Type -> *plan

var timeType = reflect.TypeOf(time.Time{})

// fieldKeys caches the map keys of all field numbers.
var fieldKeys = func() [256]string {
	var keys [256]string
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}

	return keys
}()

// Unmarshal copies the values of a data record into the fit-tagged fields of target.
//
// Parameters:
//   - ev: The data record, typically from decoder.Decoder.Next
//   - target: Pointer to a struct with fit tags
//
// Returns:
//   - error: errs.ErrInvalidTarget for a non-struct target or a malformed tag,
//     or a conversion error from mapstructure
func Unmarshal(ev *decoder.DataEvent, target any) error {
	p, err := planFor(target)
	if err != nil {
		return err
	}

	input := make(map[string]any, len(ev.Values)+2)
	if p.hasFields {
		for _, v := range ev.Values {
			key := fieldKeys[v.Number]
			if !p.fields[v.Number] || !v.Valid() {
				continue
			}
			if _, dup := input[key]; dup {
				continue
			}
			input[key] = v.Any()
		}
	}

	if p.timeOffset && ev.Compressed {
		input[tagTime] = ev.TimeOffset
	}
	if p.hasTimestamp && ev.HasTimestamp {
		input[tagTimestamp] = ev.Timestamp
	}

	if len(input) == 0 {
		return nil
	}

	// mapstructure flattens hook errors into strings, so the first range
	// failure is kept aside to preserve errs.ErrInvalidTarget.
	var overflow error
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:              fieldTag,
		IgnoreUntaggedFields: true,
		WeaklyTypedInput:     true,
		DecodeHook:           mapstructure.ComposeDecodeHookFunc(fitTimeHook, rangeHook(&overflow)),
		Result:               target,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidTarget, err)
	}

	if err := dec.Decode(input); err != nil {
		if overflow != nil {
			return fmt.Errorf("map global message %d: %w", ev.Global(), overflow)
		}

		return fmt.Errorf("map global message %d: %w", ev.Global(), err)
	}

	return nil
}

// fitTimeHook turns FIT timestamps into time.Time.
func fitTimeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	if ts, ok := data.(uint32); ok {
		return format.TimeFromFIT(ts), nil
	}

	return data, nil
}

// rangeHook rejects numeric values that do not fit the target field type.
// The first failure is stored in *first.
func rangeHook(first *error) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if fitsKind(reflect.ValueOf(data), to) {
			return data, nil
		}

		err := fmt.Errorf("%w: value %v does not fit %s", errs.ErrInvalidTarget, data, to)
		if *first == nil {
			*first = err
		}

		return nil, err
	}
}

// fitsKind reports whether v converts to type to without wrapping or truncation
// of its integer part. Non-numeric pairs always fit.
func fitsKind(v reflect.Value, to reflect.Type) bool {
	if !v.IsValid() {
		return true
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		zero := reflect.Zero(to)
		switch {
		case v.CanInt():
			return !zero.OverflowInt(v.Int())
		case v.CanUint():
			return v.Uint() <= math.MaxInt64 && !zero.OverflowInt(int64(v.Uint()))
		case v.CanFloat():
			f := v.Float()
			return f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		zero := reflect.Zero(to)
		switch {
		case v.CanInt():
			return v.Int() >= 0 && !zero.OverflowUint(uint64(v.Int()))
		case v.CanUint():
			return !zero.OverflowUint(v.Uint())
		case v.CanFloat():
			f := v.Float()
			return f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
		}
	case reflect.Float32:
		if v.CanFloat() {
			return !reflect.Zero(to).OverflowFloat(v.Float())
		}
	}

	return true
}

func planFor(target any) (*plan, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: need a non-nil pointer to a struct, got %T", errs.ErrInvalidTarget, target)
	}

	t := rv.Elem().Type()
	if cached, ok := plans.Load(t); ok {
		return cached.(*plan), nil
	}

	p := &plan{}
	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(fieldTag)
		if !ok || tag == "-" {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: field %s.%s is unexported", errs.ErrInvalidTarget, t.Name(), sf.Name)
		}

		switch tag {
		case tagTime:
			p.timeOffset = true
		case tagTimestamp:
			p.hasTimestamp = true
		default:
			n, err := strconv.ParseUint(tag, 10, 8)
			if err != nil || fieldKeys[n] != tag {
				return nil, fmt.Errorf("%w: field %s.%s has tag %q, want a field number, %q or %q",
					errs.ErrInvalidTarget, t.Name(), sf.Name, tag, tagTime, tagTimestamp)
			}
			p.fields[n] = true
			p.hasFields = true
		}
	}

	actual, _ := plans.LoadOrStore(t, p)

	return actual.(*plan), nil
}
