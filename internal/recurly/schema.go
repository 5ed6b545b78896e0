package recurly

import (
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

// fieldSetter copies one decoded element into dst.
// A nil="nil" element resets the target to its zero value.
type fieldSetter[T any] func(dst *T, el *etree.Element) error

// schema maps wire names to setters for a resource type
type schema[T any] map[string]fieldSetter[T]

// names returns the wire names in sorted order
func (s schema[T]) names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// apply merges every known field of fields into dst and ignores the rest
func (s schema[T]) apply(dst *T, fields map[string]*etree.Element) error {
	for name, el := range fields {
		set, ok := s[name]
		if !ok {
			continue
		}
		if err := set(dst, el); err != nil {
			return err
		}
	}
	return nil
}

// decode builds a fresh T from the children of el
func (s schema[T]) decode(el *etree.Element) (T, error) {
	var out T
	err := s.apply(&out, xmlcodec.FromElement(el).Fields)
	return out, err
}

func stringField[T any](get func(*T) *string) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		*get(dst) = xmlcodec.Text(el)
		return nil
	}
}

func int64Field[T any](get func(*T) *int64) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		v, err := xmlcodec.Int64(el)
		if err != nil {
			return err
		}
		*get(dst) = v
		return nil
	}
}

func intField[T any](get func(*T) *int) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		v, err := xmlcodec.Int(el)
		if err != nil {
			return err
		}
		*get(dst) = v
		return nil
	}
}

func boolField[T any](get func(*T) *bool) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		v, err := xmlcodec.Bool(el)
		if err != nil {
			return err
		}
		*get(dst) = v
		return nil
	}
}

func timeField[T any](get func(*T) **time.Time) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		v, err := xmlcodec.Time(el)
		if err != nil {
			return err
		}
		*get(dst) = v
		return nil
	}
}

// objectField decodes a nested element with another schema
func objectField[T, V any](s schema[V], get func(*T) **V) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		if xmlcodec.IsNil(el) {
			*get(dst) = nil
			return nil
		}
		v, err := s.decode(el)
		if err != nil {
			return err
		}
		*get(dst) = &v
		return nil
	}
}

// listField decodes every child element of a nested array with another schema
func listField[T, V any](s schema[V], get func(*T) *[]V) fieldSetter[T] {
	return func(dst *T, el *etree.Element) error {
		if xmlcodec.IsNil(el) {
			*get(dst) = nil
			return nil
		}
		children := el.ChildElements()
		out := make([]V, 0, len(children))
		for _, child := range children {
			v, err := s.decode(child)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		*get(dst) = out
		return nil
	}
}
