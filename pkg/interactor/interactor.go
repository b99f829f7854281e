// Package interactor provides immutable test interactors that
// carry a chain of pending convergences. Each When, Always, or Do
// call returns a new interactor with one more step; Run executes
// the chain.
//
//	button := interactor.Define("Button",
//		interactor.Property("isLoading", hasClass("is-loading")),
//		interactor.Method("notLoading", interactor.Always("!isLoading", 100*time.Millisecond)),
//	)
//
//	err := button.New(interactor.WithScope(".submit")).
//		When("!isLoading").
//		Do("notLoading").
//		Run(ctx)
package interactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.convergence/pkg/condition"
	"digital.vasic.convergence/pkg/config"
	"digital.vasic.convergence/pkg/convergence"
)

// ErrUnknownMethod is returned from Run when Do named a method
// the class does not declare.
var ErrUnknownMethod = errors.New("unknown interactor method")

// ErrInvalidInteractor is returned for a nil Interactor or one
// not created by Class.New.
var ErrInvalidInteractor = errors.New("interactor not created by Class.New")

var defaultRunner = convergence.NewRunner()

// Interactor is an immutable handle on a scoped test subject
// plus the convergences to satisfy before it is used. It
// implements condition.Subject through its class properties.
type Interactor struct {
	class   *Class
	scope   string
	timeout time.Duration
	runner  *convergence.Runner
	chain   convergence.Chain

	// err is sticky: once set, later chaining calls keep it and
	// Run returns it without polling.
	err error
}

// Option configures an Interactor created by Class.New.
type Option func(*Interactor)

// WithScope sets the scope, typically a selector for the element
// the interactor wraps.
func WithScope(scope string) Option {
	return func(i *Interactor) {
		i.scope = scope
	}
}

// WithTimeout sets the ambient timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Interactor) {
		i.timeout = d
	}
}

// WithConfig takes the ambient timeout from cfg.
func WithConfig(cfg *config.Config) Option {
	return WithTimeout(cfg.Timeout)
}

// WithRunner sets the runner used by Run. Interactors created
// without one share a runner on the system clock with no logging
// or metrics.
func WithRunner(r *convergence.Runner) Option {
	return func(i *Interactor) {
		i.runner = r
	}
}

// Class returns the class the interactor was created from.
func (i *Interactor) Class() *Class { return i.class }

// Scope returns the interactor scope.
func (i *Interactor) Scope() string { return i.scope }

// AmbientTimeout returns the default time budget for steps that
// do not carry their own.
func (i *Interactor) AmbientTimeout() time.Duration {
	if i == nil {
		return 0
	}
	return i.timeout
}

// Chain returns the pending convergence steps.
func (i *Interactor) Chain() convergence.Chain { return i.chain }

// Err returns the sticky error from an invalid chaining call, if
// any.
func (i *Interactor) Err() error { return i.err }

// String returns "Class(scope)".
func (i *Interactor) String() string {
	if i == nil || i.class == nil {
		return "<invalid interactor>"
	}
	return fmt.Sprintf("%s(%s)", i.class.name, i.scope)
}

// Property evaluates a declared property against this
// interactor.
func (i *Interactor) Property(name string) (bool, error) {
	if i == nil || i.class == nil {
		return false, ErrInvalidInteractor
	}
	fn, ok := i.class.properties[name]
	if !ok {
		return false, fmt.Errorf(
			"%w: %s has no property %q",
			condition.ErrUnknownProperty, i.class.name, name,
		)
	}
	return fn(i)
}

// Timeout returns a copy with a new ambient timeout. Steps
// already in the chain keep the timeout they were created with.
func (i *Interactor) Timeout(d time.Duration) *Interactor {
	next := i.clone()
	next.timeout = d
	return next
}

// When returns a copy that first waits, up to the ambient
// timeout, for spec to hold. spec is a property name with an
// optional "!" prefix, a condition.Spec, or a predicate.
func (i *Interactor) When(spec any) *Interactor {
	s, err := parseSpec(spec)
	return i.converge(convergence.Eventually, s, err, i.AmbientTimeout())
}

// Always returns a copy that first requires spec to hold for the
// whole of timeout, or the ambient timeout when none is given.
func (i *Interactor) Always(spec any, timeout ...time.Duration) *Interactor {
	s, err := parseSpec(spec)
	return i.converge(convergence.Always, s, err, i.pick(timeout))
}

// Do invokes the reusable condition installed under name. A
// timeout overrides the condition's default for this call only.
func (i *Interactor) Do(name string, timeout ...time.Duration) *Interactor {
	next := i.clone()
	if next.err != nil {
		return next
	}
	cond, ok := i.class.methods[name]
	if !ok {
		next.err = fmt.Errorf(
			"%w: %s has no method %q",
			ErrUnknownMethod, i.class.name, name,
		)
		return next
	}
	return cond.Apply(i, timeout...)
}

// Run executes the chain in order and returns the first failure.
func (i *Interactor) Run(ctx context.Context) error {
	if i == nil || i.class == nil {
		return ErrInvalidInteractor
	}
	if i.err != nil {
		return i.err
	}
	runner := i.runner
	if runner == nil {
		runner = defaultRunner
	}
	return runner.Run(ctx, i.String(), i.chain)
}

func (i *Interactor) pick(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 {
		return timeout[0]
	}
	return i.AmbientTimeout()
}

// clone copies the receiver. A copy of an invalid interactor
// carries ErrInvalidInteractor so chaining never reaches the nil
// class.
func (i *Interactor) clone() *Interactor {
	if i == nil {
		return &Interactor{err: ErrInvalidInteractor}
	}
	next := *i
	if next.class == nil && next.err == nil {
		next.err = ErrInvalidInteractor
	}
	return &next
}

// converge appends one step bound to the receiver. Property
// names are checked against the class here, so a typo fails the
// chain at once instead of timing out.
func (i *Interactor) converge(
	policy convergence.Policy,
	spec condition.Spec,
	specErr error,
	timeout time.Duration,
) *Interactor {
	next := i.clone()
	if next.err != nil {
		return next
	}
	if specErr != nil {
		next.err = specErr
		return next
	}

	if p, ok := spec.(condition.PropertySpec); ok && !i.class.HasProperty(p.Name) {
		next.err = fmt.Errorf(
			"%w: %s has no property %q",
			condition.ErrInvalidSpec, i.class.name, p.Name,
		)
		return next
	}

	assertion, err := condition.Resolve(i, spec)
	if err != nil {
		next.err = err
		return next
	}

	next.chain = i.chain.Append(convergence.Step{
		Policy:    policy,
		Assertion: assertion,
		Timeout:   timeout,
		Label:     spec.String(),
	})
	return next
}

// parseSpec accepts predicates over *Interactor in addition to
// everything condition.From accepts.
func parseSpec(v any) (condition.Spec, error) {
	switch fn := v.(type) {
	case func(*Interactor) (bool, error):
		if fn != nil {
			return Predicate(fn), nil
		}
	case func(*Interactor) bool:
		if fn != nil {
			return Predicate(func(i *Interactor) (bool, error) {
				return fn(i), nil
			}), nil
		}
	case func(*Interactor) error:
		if fn != nil {
			return Predicate(func(i *Interactor) (bool, error) {
				return true, fn(i)
			}), nil
		}
	}
	return condition.From(v)
}

// Predicate adapts a predicate over *Interactor to a
// condition.Spec.
func Predicate(fn func(i *Interactor) (bool, error)) condition.PredicateSpec {
	return NamedPredicate("", fn)
}

// NamedPredicate is Predicate with a name used in failure
// messages: "<name> returned false".
func NamedPredicate(
	name string,
	fn func(i *Interactor) (bool, error),
) condition.PredicateSpec {
	return condition.Named(name, func(s condition.Subject) (bool, error) {
		i, ok := s.(*Interactor)
		if !ok {
			return false, fmt.Errorf(
				"%w: predicate needs *Interactor, got %T",
				condition.ErrInvalidSpec, s,
			)
		}
		return fn(i)
	})
}
