package condition

import "fmt"

// Assertion is a condition bound to a subject. Check returns nil
// while the condition holds and a descriptive error otherwise.
type Assertion interface {
	Check() error
}

// AssertionFunc adapts a plain function to Assertion.
type AssertionFunc func() error

// Check calls f.
func (f AssertionFunc) Check() error { return f() }

// Resolve binds spec to subject. It does not evaluate the
// condition; that happens on every Check.
func Resolve(subject Subject, spec Spec) (Assertion, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrInvalidSpec)
	}
	spec, err := From(spec)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, fmt.Errorf(
			"%w: nil subject for %s", ErrInvalidSpec, spec,
		)
	}
	return spec.resolve(subject), nil
}

// ResolveAny is From followed by Resolve.
func ResolveAny(subject Subject, v any) (Assertion, error) {
	spec, err := From(v)
	if err != nil {
		return nil, err
	}
	return Resolve(subject, spec)
}

type propertyAssertion struct {
	subject Subject
	spec    PropertySpec
}

func (p PropertySpec) resolve(s Subject) Assertion {
	return &propertyAssertion{subject: s, spec: p}
}

// Check reports the raw property value on failure, so "!busy"
// failing while busy is true reads "busy returned true".
func (a *propertyAssertion) Check() error {
	value, err := a.subject.Property(a.spec.Name)
	if err != nil {
		return err
	}
	if value == a.spec.Negated {
		return &Failure{Name: a.spec.Name, Actual: value}
	}
	return nil
}

type predicateAssertion struct {
	subject Subject
	spec    PredicateSpec
}

func (p PredicateSpec) resolve(s Subject) Assertion {
	return &predicateAssertion{subject: s, spec: p}
}

func (a *predicateAssertion) Check() error {
	ok, err := a.spec.Fn(a.subject)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if a.spec.Name != "" {
		return &Failure{Name: a.spec.Name, Actual: false}
	}
	return ErrConditionFailed
}
