package health

import "context"

type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to a Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}
