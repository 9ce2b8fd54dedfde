package redux

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// Callback tells a non-deterministic producer (a timer, an I/O result) how
// to turn its eventual result into an action.
//
// A live Callback carries its function directly. Only the name survives
// serialization, so a Callback decoded from JSON resolves through a Registry
// instead.
type Callback[T any, A any] struct {
	fn   func(T) A
	name string
}

// NewCallback creates a live callback. The name must be registered under
// the same function in every Registry that may resolve a serialized copy.
func NewCallback[T any, A any](name string, fn func(T) A) Callback[T, A] {
	return Callback[T, A]{fn: fn, name: name}
}

// CallbackNamed refers to a registered callback by name only, as a decoded
// callback would.
func CallbackNamed[T any, A any](name string) Callback[T, A] {
	return Callback[T, A]{name: name}
}

func (c Callback[T, A]) Name() string { return c.name }

// IsLive reports whether the callback still carries its function.
func (c Callback[T, A]) IsLive() bool { return c.fn != nil }

// Resolve produces the action for args: through the live function when
// present, otherwise through reg.
func (c Callback[T, A]) Resolve(args T, reg *Registry[A]) (A, error) {
	if c.fn != nil {
		return c.fn(args), nil
	}
	if reg == nil {
		var zero A
		return zero, newCallbackNotFound(c.name)
	}
	return reg.resolve(c.name, args)
}

// MarshalJSON encodes the callback as its name.
func (c Callback[T, A]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.name)
}

// UnmarshalJSON restores the name. The function is not restored.
func (c *Callback[T, A]) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("callback: %w", err)
	}
	*c = Callback[T, A]{name: name}
	return nil
}

// Registry maps stable callback names to type-erased constructors. It is
// assembled explicitly at startup and handed to the Store with
// WithCallbacks. It is not safe for concurrent registration.
type Registry[A any] struct {
	entries map[string]func(args any) (A, error)
}

// NewRegistry creates an empty registry.
func NewRegistry[A any]() *Registry[A] {
	return &Registry[A]{entries: make(map[string]func(any) (A, error))}
}

// Register adds fn under name. The argument type is checked when the entry
// is resolved.
func Register[T any, A any](reg *Registry[A], name string, fn func(T) A) error {
	if name == "" || fn == nil {
		return &CallbackError{Code: ErrCodeCallbackInvalid, Name: name, Message: "callback needs a name and a function"}
	}
	if _, exists := reg.entries[name]; exists {
		return newCallbackDuplicate(name)
	}
	reg.entries[name] = func(args any) (A, error) {
		v, ok := args.(T)
		if !ok {
			var zero A
			return zero, newCallbackArgMismatch(name, reflect.TypeOf((*T)(nil)).Elem().String(), args)
		}
		return fn(v), nil
	}
	return nil
}

// RegisterCallback registers a live callback under its own name.
func RegisterCallback[T any, A any](reg *Registry[A], cb Callback[T, A]) error {
	return Register(reg, cb.name, cb.fn)
}

// MustRegister is like RegisterCallback but panics on error.
// Use when assembling a registry from known-good declarations.
func MustRegister[T any, A any](reg *Registry[A], cb Callback[T, A]) {
	if err := RegisterCallback(reg, cb); err != nil {
		panic(err)
	}
}

// Lookup reports whether name is registered.
func (r *Registry[A]) Lookup(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns registered names in sorted order.
func (r *Registry[A]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry[A]) Len() int { return len(r.entries) }

func (r *Registry[A]) resolve(name string, args any) (A, error) {
	fn, ok := r.entries[name]
	if !ok {
		var zero A
		return zero, newCallbackNotFound(name)
	}
	return fn(args)
}

// DispatchCallback resolves cb with args and dispatches the result.
//
// Resolution failure panics with a *CallbackError: it means the callback
// was serialized by a binary with a different set of callbacks, and there
// is no action to fall back to.
func DispatchCallback[S any, Svc TimeService, A EnablingCondition[S], T any](store *Store[S, Svc, A], cb Callback[T, A], args T) bool {
	action, err := cb.Resolve(args, store.callbacks)
	if err != nil {
		store.logger.Error("callback resolution failed", "callback", cb.name, "err", err)
		panic(err)
	}
	return store.Dispatch(action)
}
