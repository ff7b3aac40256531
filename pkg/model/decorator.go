package model

// Decorator mutates a flow after it has been loaded and normalised, e.g. to
// stamp identifiers or inject shared steps.
type Decorator interface {
	Decorate(*Flow) error
}

// DecoratorFunc adapts a function to the Decorator interface.
type DecoratorFunc func(*Flow) error

// Decorate implements Decorator.
func (fn DecoratorFunc) Decorate(flow *Flow) error {
	if fn == nil || flow == nil {
		return nil
	}
	return fn(flow)
}
