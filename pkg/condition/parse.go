package condition

import (
	"fmt"
	"strings"
)

// Parse turns a property specifier into a PropertySpec, stripping
// a single leading "!" into Negated. Empty names are invalid.
func Parse(spec string) (PropertySpec, error) {
	name, negated := strings.CutPrefix(spec, "!")
	if name == "" {
		return PropertySpec{}, fmt.Errorf(
			"%w: empty property name in %q",
			ErrInvalidSpec, spec,
		)
	}
	return PropertySpec{Name: name, Negated: negated}, nil
}

// Prop is Parse for specifiers known at compile time. It panics
// on an empty name.
func Prop(spec string) PropertySpec {
	p, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// Func wraps a predicate into an unnamed PredicateSpec.
func Func(fn Predicate) PredicateSpec {
	return PredicateSpec{Fn: fn}
}

// Named wraps a predicate into a PredicateSpec whose failures
// read "<name> returned false".
func Named(name string, fn Predicate) PredicateSpec {
	return PredicateSpec{Name: name, Fn: fn}
}

// From normalizes any supported specifier shape into a Spec:
//
//   - string: a property name, optionally prefixed with "!"
//   - Spec: returned unchanged
//   - func(Subject) (bool, error), func(Subject) bool,
//     func(Subject) error, func() bool, func() error: predicates
//
// Any other value yields an error wrapping ErrInvalidSpec.
func From(v any) (Spec, error) {
	switch s := v.(type) {
	case string:
		return Parse(s)
	case PropertySpec:
		if s.Name == "" {
			return nil, invalidSpec(v)
		}
		return s, nil
	case PredicateSpec:
		if s.Fn == nil {
			return nil, invalidSpec(v)
		}
		return s, nil
	case Spec:
		return s, nil
	}

	fn := predicateOf(v)
	if fn == nil {
		return nil, invalidSpec(v)
	}
	return PredicateSpec{Fn: fn}, nil
}

func predicateOf(v any) Predicate {
	switch fn := v.(type) {
	case Predicate:
		return fn
	case func(Subject) (bool, error):
		return fn
	case func(Subject) bool:
		if fn == nil {
			return nil
		}
		return func(s Subject) (bool, error) {
			return fn(s), nil
		}
	case func(Subject) error:
		if fn == nil {
			return nil
		}
		return func(s Subject) (bool, error) {
			return true, fn(s)
		}
	case func() bool:
		if fn == nil {
			return nil
		}
		return func(Subject) (bool, error) {
			return fn(), nil
		}
	case func() error:
		if fn == nil {
			return nil
		}
		return func(Subject) (bool, error) {
			return true, fn()
		}
	}
	return nil
}
