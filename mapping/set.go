package mapping

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/errs"
)

const messageTag = "fitmsg"

// Defaulter is implemented by record types that need non-zero defaults before
// values are copied in.
type Defaulter interface {
	SetDefaults()
}

type routeKind uint8

const (
	routeValue   routeKind = iota // T: replaced by every record
	routePointer                  // *T: replaced by every record
	routeSlice                    // []T: appended
	routeSliceOf                  // []*T: appended
)

type route struct {
	index int
	kind  routeKind
	elem  reflect.Type // T
}

// Set routes data records into the fitmsg-tagged fields of a collection struct.
//
// Note: Set is NOT thread-safe.
type Set struct {
	target reflect.Value
	routes map[uint16]route
}

// NewSet prepares target, a pointer to a struct with fitmsg tags, for collection.
//
// Returns errs.ErrInvalidTarget when target is not a struct pointer, a tag is not
// a global message number, a tagged field is not T, *T, []T or []*T of a struct
// type, or two fields claim the same message.
func NewSet(target any) (*Set, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: need a non-nil pointer to a struct, got %T", errs.ErrInvalidTarget, target)
	}

	s := &Set{target: rv.Elem(), routes: make(map[uint16]route)}
	t := s.target.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(messageTag)
		if !ok || tag == "-" {
			continue
		}

		global, err := strconv.ParseUint(tag, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s.%s has tag %q, want a global message number",
				errs.ErrInvalidTarget, t.Name(), sf.Name, tag)
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: field %s.%s is unexported", errs.ErrInvalidTarget, t.Name(), sf.Name)
		}
		if _, dup := s.routes[uint16(global)]; dup {
			return nil, fmt.Errorf("%w: global message %d is claimed twice", errs.ErrInvalidTarget, global)
		}

		r, err := routeFor(i, sf.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s.%s: %w", errs.ErrInvalidTarget, t.Name(), sf.Name, err)
		}
		s.routes[uint16(global)] = r
	}

	return s, nil
}

func routeFor(index int, ft reflect.Type) (route, error) {
	kind := routeValue

	switch ft.Kind() {
	case reflect.Pointer:
		kind, ft = routePointer, ft.Elem()
	case reflect.Slice:
		kind, ft = routeSlice, ft.Elem()
		if ft.Kind() == reflect.Pointer {
			kind, ft = routeSliceOf, ft.Elem()
		}
	}

	if ft.Kind() != reflect.Struct {
		return route{}, fmt.Errorf("unsupported type %s", ft)
	}

	return route{index: index, kind: kind, elem: ft}, nil
}

// Handles reports whether records of a global message are collected.
func (s *Set) Handles(global uint16) bool {
	_, ok := s.routes[global]
	return ok
}

// Add maps a data record into its routed field.
//
// Returns false, without error, when no field collects the record's global message.
func (s *Set) Add(ev *decoder.DataEvent) (bool, error) {
	r, ok := s.routes[ev.Global()]
	if !ok {
		return false, nil
	}

	elem := reflect.New(r.elem)
	if d, ok := elem.Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	if err := Unmarshal(ev, elem.Interface()); err != nil {
		return false, err
	}

	field := s.target.Field(r.index)
	switch r.kind {
	case routeValue:
		field.Set(elem.Elem())
	case routePointer:
		field.Set(elem)
	case routeSlice:
		field.Set(reflect.Append(field, elem.Elem()))
	case routeSliceOf:
		field.Set(reflect.Append(field, elem))
	}

	return true, nil
}

// Collect drains d into target through a Set.
//
// Records of unrouted messages are skipped. When every record decoded but the
// file checksum did not match, target is fully populated and the returned error
// wraps errs.ErrChecksumMismatch.
func Collect(d *decoder.Decoder, target any) error {
	set, err := NewSet(target)
	if err != nil {
		return err
	}

	return set.Collect(d)
}

// Collect drains d into the set's target. See the package-level Collect.
func (s *Set) Collect(d *decoder.Decoder) error {
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch e := ev.(type) {
		case *decoder.DataEvent:
			if _, err := s.Add(e); err != nil {
				return err
			}
		case *decoder.ChecksumEvent:
			if err := e.Err(); err != nil {
				return err
			}
		}
	}
}
