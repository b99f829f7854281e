// Package condition normalizes condition specifiers into
// assertions. A specifier is either a named boolean property of a
// subject, optionally negated with a leading "!", or a predicate
// function evaluated against the subject.
package condition

// Subject is anything that exposes named boolean checks. The
// interactor package implements it; tests use small fakes.
type Subject interface {
	// Property returns the current value of the named check.
	// An unknown name returns an error wrapping
	// ErrUnknownProperty.
	Property(name string) (bool, error)
}

// Predicate is the canonical predicate form. Returning false
// fails the condition, a non-nil error fails it with that error,
// and anything else is a success.
type Predicate func(s Subject) (bool, error)

// Kind identifies the variant of a Spec.
type Kind int

const (
	// KindProperty checks a named subject property.
	KindProperty Kind = iota
	// KindPredicate runs a predicate against the subject.
	KindPredicate
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Spec is a parsed condition specifier. The only
// implementations are PropertySpec and PredicateSpec.
type Spec interface {
	// Kind reports which variant this spec is.
	Kind() Kind

	// String returns the specifier as a caller would write it.
	String() string

	resolve(s Subject) Assertion
}

// PropertySpec checks that the named property is truthy, or
// falsy when Negated is set.
type PropertySpec struct {
	Name    string
	Negated bool
}

// Kind returns KindProperty.
func (p PropertySpec) Kind() Kind { return KindProperty }

// String returns the property name with its "!" prefix when
// negated.
func (p PropertySpec) String() string {
	if p.Negated {
		return "!" + p.Name
	}
	return p.Name
}

// PredicateSpec runs Fn against the subject. Name is optional and
// only used in failure messages and logs.
type PredicateSpec struct {
	Name string
	Fn   Predicate
}

// Kind returns KindPredicate.
func (p PredicateSpec) Kind() Kind { return KindPredicate }

// String returns the predicate name, or "predicate" when unnamed.
func (p PredicateSpec) String() string {
	if p.Name == "" {
		return "predicate"
	}
	return p.Name
}
