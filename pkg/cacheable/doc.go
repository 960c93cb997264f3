// Package cacheable wraps business operations with read-through caching and
// pattern invalidation.
//
// Operations are plain functions of the form [Func]. [WithCache] returns a
// function with the same signature that consults the cache first;
// [WithInvalidation] returns one that clears key patterns after a successful
// mutation. Both share an [Interceptor] which tracks background work:
//
//	ic := cacheable.New(client, cacheable.WithLogger(log))
//
//	getTree := cacheable.WithCache(ic, cacheable.Options[struct{}]{
//	    Key: func(struct{}) string { return cachekey.Simple("categories", "tree") },
//	    TTL: 30 * time.Minute,
//	}, categories.Tree)
//
//	createCategory := cacheable.WithInvalidation(ic, cacheable.Invalidation[Category]{
//	    Patterns: []string{cachekey.Pattern("categories", "*")},
//	}, categories.Create)
//
//	defer ic.Wait()
//
// Cache failures never reach the caller. An unreachable cache turns every
// call into a direct call; failed writes and invalidations are logged.
//
// Concurrent misses on the same key each call the wrapped operation unless
// [Options.SingleFlight] is set.
package cacheable
