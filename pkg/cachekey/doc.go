// Package cachekey builds deterministic cache keys.
//
// A key is the schema version, a namespace prefix and zero or more
// name=value segments sorted by name, joined with ":":
//
//	cachekey.Generate("admin:users", cachekey.Params{"search": "john", "page": 1, "limit": 10})
//	// v1:admin:users:limit=10:page=1:search=john
//
// Two parameter sets that are equal as unordered maps always produce the
// same key. Nil values are skipped, slices are comma-joined, maps and
// structs are rendered as canonical JSON and everything else is coerced
// to a string. Key generation never fails.
//
// Helpers cover the common shapes:
//
//   - [Simple] for a single entity: v1:product:42
//   - [List] for paginated listings with filters
//   - [Analytics] for date ranges rendered as YYYY-MM-DD
//   - [Pattern] for invalidation patterns: v1:products:*
//
// [FromArgs] and [FromRequest] derive parameters from call arguments and
// HTTP requests when a caller does not supply its own key function.
package cachekey
