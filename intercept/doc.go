// Package intercept captures LLM conversations at the HTTP transport layer.
//
// Provider SDKs differ in their Go surfaces but all ultimately issue HTTP
// requests. This package wraps http.RoundTripper: requests made inside a
// learning scope (see package learning) that match an enabled provider
// descriptor get memory context injected into their system slot, and the
// resulting exchange is recorded to the memory gateway in the background.
// Requests outside a scope, or to unrecognized endpoints, pass through
// untouched.
//
// Importing a provider subpackage registers its interceptor:
//
//	import (
//		_ "github.com/agentic-learning/go-sdk/intercept/provider/anthropic"
//		_ "github.com/agentic-learning/go-sdk/intercept/provider/openai"
//	)
//
//	intercept.DefaultRegistry().InstallAll()
//	defer intercept.DefaultRegistry().UninstallAll()
//
// Installing the default registry swaps http.DefaultTransport so every SDK
// client built on it is covered. For finer control, wire a private registry
// into a single client with NewTransport or WrapClient, or into an SDK's
// middleware chain with the provider packages' Middleware helpers.
package intercept
