// Package funcopt provides a minimal functional-options primitive shared by
// packages that need to configure a struct through a variadic list of
// options without exposing its fields.
package funcopt

// O is a single functional option. Its function receives the target as
// interface{} and is expected to type-assert it to the concrete type it
// was written for.
type O interface {
	apply(interface{}) error
}

type fn func(interface{}) error

func (f fn) apply(i interface{}) error {
	return f(i)
}

// F wraps a plain function as an O.
func F(f func(interface{}) error) O {
	return fn(f)
}

// Apply runs every option against target in order, stopping at the first
// error.
func Apply(target interface{}, opts ...O) error {
	for _, o := range opts {
		if err := o.apply(target); err != nil {
			return err
		}
	}
	return nil
}
