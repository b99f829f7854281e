package interactor

import (
	"sort"
	"time"
)

// PropertyFunc computes a named boolean check for an interactor,
// such as whether its element currently has a CSS class.
type PropertyFunc func(i *Interactor) (bool, error)

// Class declares the properties and reusable conditions shared by
// every interactor created from it. A Class is immutable once
// Define returns.
type Class struct {
	name       string
	properties map[string]PropertyFunc
	methods    map[string]Condition
}

// Member adds a property or method to a Class during Define.
type Member func(*Class)

// Define creates a Class from members. Later members replace
// earlier ones with the same name.
func Define(name string, members ...Member) *Class {
	c := &Class{
		name:       name,
		properties: make(map[string]PropertyFunc),
		methods:    make(map[string]Condition),
	}
	for _, m := range members {
		m(c)
	}
	return c
}

// Property declares a named boolean check.
func Property(name string, fn PropertyFunc) Member {
	return func(c *Class) {
		c.properties[name] = fn
	}
}

// BoolProperty declares a named boolean check that cannot fail.
func BoolProperty(name string, fn func(i *Interactor) bool) Member {
	return Property(name, func(i *Interactor) (bool, error) {
		return fn(i), nil
	})
}

// Method installs a reusable condition under name. It is invoked
// with (*Interactor).Do.
func Method(name string, cond Condition) Member {
	return func(c *Class) {
		c.methods[name] = cond
	}
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// HasProperty reports whether the class declares the property.
func (c *Class) HasProperty(name string) bool {
	_, ok := c.properties[name]
	return ok
}

// Methods returns the declared method names, sorted.
func (c *Class) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtins are the operations every interactor responds to.
var builtins = map[string]struct{}{
	"when":    {},
	"always":  {},
	"timeout": {},
	"run":     {},
}

// RespondsTo reports whether interactors of this class accept
// the named operation, either built in or declared with Method.
func (c *Class) RespondsTo(name string) bool {
	if _, ok := builtins[name]; ok {
		return true
	}
	_, ok := c.methods[name]
	return ok
}

// New creates an interactor with an empty convergence chain.
func (c *Class) New(opts ...Option) *Interactor {
	i := &Interactor{
		class:   c,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// DefaultTimeout is the ambient timeout of interactors created
// without WithTimeout.
const DefaultTimeout = 2 * time.Second
