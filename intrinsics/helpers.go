// Package intrinsics provides CloudFormation intrinsic functions.
// This file contains shorthand helpers for inline values.
package intrinsics

// Json is a shorthand for map[string]any.
// Used for inline JSON objects.
//
// Example:
//
//	Variables: Json{"OPENAI_API_KEY": OpenAiApiKey},
type Json = map[string]any

// List creates a typed slice from the given items.
// Avoids verbose slice type annotations in struct literals.
//
// Example:
//
//	// Instead of:
//	Events: []serverless.Function_EventSource{ProxyEvent},
//	// Write:
//	Events: List(ProxyEvent),
func List[T any](items ...T) []T {
	return items
}

// Any creates a []any slice from the given items.
// Use for fields typed as []any that accept mixed types or intrinsics.
//
// Example:
//
//	// Instead of:
//	AllowMethods: []any{"GET", "POST", "OPTIONS"},
//	// Write:
//	AllowMethods: Any("GET", "POST", "OPTIONS"),
func Any(items ...any) []any {
	return items
}
