package expect

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Plugin bundles types and assertions.
type Plugin interface {
	Name() string
	Install(r *Registry) error
}

// Registry holds the registered types and assertions. Registration normally
// happens once at startup; Expect is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	types      []*Type
	byWords    map[string][]*Assertion
	byNotWords map[string][]*Assertion
	plugins    map[string]bool
}

// New returns a Registry holding only the built-in types.
func New() *Registry {
	return &Registry{
		types:      builtinTypes(),
		byWords:    make(map[string][]*Assertion),
		byNotWords: make(map[string][]*Assertion),
		plugins:    make(map[string]bool),
	}
}

// Use installs a plugin. Installing a plugin with the same name twice is a
// no-op.
func (r *Registry) Use(p Plugin) error {
	r.mu.Lock()
	if r.plugins[p.Name()] {
		r.mu.Unlock()
		return nil
	}
	r.plugins[p.Name()] = true
	r.mu.Unlock()

	if err := p.Install(r); err != nil {
		r.mu.Lock()
		delete(r.plugins, p.Name())
		r.mu.Unlock()
		return fmt.Errorf("installing plugin %s: %w", p.Name(), err)
	}
	return nil
}

// AddType registers a type. Later types take precedence when identifying and
// inspecting values.
func (r *Registry) AddType(t Type) error {
	if t.Name == "" || t.Identify == nil {
		return fmt.Errorf("type needs a name and an identify function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupType(t.Name) != nil {
		return fmt.Errorf("type %q already registered", t.Name)
	}
	r.types = append(r.types, &t)
	return nil
}

// AddAssertion registers check under pattern. Every type named in the pattern
// must already be registered.
func (r *Registry) AddAssertion(pattern string, check CheckFunc) error {
	if check == nil {
		return fmt.Errorf("assertion %q has no check function", pattern)
	}
	a, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	a.Check = check

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookupType(a.Subject) == nil {
		return fmt.Errorf("assertion %q: unknown type %q", pattern, a.Subject)
	}
	for _, arg := range a.Args {
		if r.lookupType(arg.Type) == nil {
			return fmt.Errorf("assertion %q: unknown type %q", pattern, arg.Type)
		}
	}
	for _, existing := range r.byWords[a.Words] {
		if existing.Pattern == a.Pattern {
			return fmt.Errorf("assertion %q already registered", pattern)
		}
	}

	r.byWords[a.Words] = append(r.byWords[a.Words], a)
	if a.Negatable {
		r.byNotWords[a.NotWords] = append(r.byNotWords[a.NotWords], a)
	}
	return nil
}

// Expect runs the assertion named by assertion against subject.
func (r *Registry) Expect(ctx context.Context, subject any, assertion string, args ...any) error {
	name := normalizeAssertion(assertion)

	r.mu.RLock()
	candidates, not := r.byWords[name], false
	if len(candidates) == 0 {
		candidates, not = r.byNotWords[name], true
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return &UnknownAssertionError{Assertion: name}
	}

	def := r.resolve(candidates, subject, args)
	if def == nil {
		return r.typeError(candidates, subject, name, args)
	}

	x := &Context{
		Subject:  subject,
		Args:     args,
		Not:      not,
		Name:     name,
		registry: r,
		def:      def,
	}
	return def.Check(ctx, x)
}

// Inspect renders v for failure messages.
func (r *Registry) Inspect(v any) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.types) - 1; i >= 0; i-- {
		t := r.types[i]
		if t.Inspect != nil && t.Identify(v) {
			return t.Inspect(v)
		}
	}
	return inspectDefault(v)
}

// TypeOf returns the name of the most specific registered type of v.
func (r *Registry) TypeOf(v any) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.types) - 1; i >= 0; i-- {
		if r.types[i].Identify(v) {
			return r.types[i].Name
		}
	}
	return TypeAny
}

// Assertions returns the registered patterns.
func (r *Registry) Assertions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, defs := range r.byWords {
		for _, a := range defs {
			out = append(out, a.Pattern)
		}
	}
	return out
}

func (r *Registry) resolve(candidates []*Assertion, subject any, args []any) *Assertion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range candidates {
		if r.is(subject, a.Subject) && r.argsMatch(a.Args, args) {
			return a
		}
	}
	return nil
}

func (r *Registry) argsMatch(shapes []ArgShape, args []any) bool {
	i := 0
	for _, shape := range shapes {
		if shape.Variadic {
			if i >= len(args) {
				return false
			}
			for ; i < len(args); i++ {
				if !r.is(args[i], shape.Type) {
					return false
				}
			}
			continue
		}
		if i >= len(args) || !r.is(args[i], shape.Type) {
			return false
		}
		i++
	}
	return i == len(args)
}

func (r *Registry) is(v any, typeName string) bool {
	t := r.lookupType(typeName)
	return t != nil && t.Identify(v)
}

func (r *Registry) lookupType(name string) *Type {
	for _, t := range r.types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (r *Registry) typeError(candidates []*Assertion, subject any, name string, args []any) error {
	e := &TypeError{
		Subject:     r.Inspect(subject),
		SubjectType: r.TypeOf(subject),
		Assertion:   name,
		Args:        r.inspectArgs(args),
	}
	for _, a := range candidates {
		e.Candidates = append(e.Candidates, a.Pattern)
	}
	return e
}

func (r *Registry) inspectArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = r.Inspect(a)
	}
	return strings.Join(parts, ", ")
}
