package cacheable

import (
	"context"
	"slices"
)

// Invalidation lists the key patterns a mutating operation invalidates.
type Invalidation[A any] struct {
	// Dynamic returns additional patterns derived from the arguments,
	// e.g. the key of the single product being updated.
	Dynamic func(args A) []string

	// Patterns are glob patterns such as "v1:categories:*".
	Patterns []string

	// Await makes the wrapped operation wait for invalidation to finish
	// before returning. By default invalidation runs in the background
	// and is tracked by Interceptor.Wait.
	Await bool
}

func (inv Invalidation[A]) patterns(args A) []string {
	out := slices.Clone(inv.Patterns)
	if inv.Dynamic != nil {
		out = append(out, inv.Dynamic(args)...)
	}
	return slices.Compact(out)
}

// WithInvalidation wraps fn so that, after it succeeds with a non-nil result,
// every configured pattern is deleted from the cache. Invalidation failures
// are logged per pattern and never change the operation's result.
//
// Example:
//
//	updateCategory := cacheable.WithInvalidation(ic, cacheable.Invalidation[Category]{
//	    Patterns: []string{cachekey.Pattern("categories", "*")},
//	}, categories.Update)
func WithInvalidation[A, R any](ic *Interceptor, inv Invalidation[A], fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, args A) (R, error) {
		result, err := fn(ctx, args)
		if err != nil || isNil(result) {
			return result, err
		}

		patterns := inv.patterns(args)
		if len(patterns) == 0 {
			return result, nil
		}

		if inv.Await {
			ic.invalidate(ctx, patterns)
			return result, nil
		}

		ic.wg.Go(func() {
			ic.invalidate(ctx, patterns)
		})

		return result, nil
	}
}
