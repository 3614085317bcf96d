// Package gateway defines the memory-service contract the interception
// framework records through, plus the REST client for a Letta-style API.
//
// The framework only ever sees the Client interface:
//   - Agents: create/retrieve/update/delete/list agents by name
//   - Messages: list/search stored turns, capture new exchanges
//   - Memory: retrieve the injectable memory context, store values, search
//
// Two implementations ship with the SDK:
//   - REST (this package): talks to a remote service, bearer auth via
//     LETTA_API_KEY, base URL https://api.letta.com by default
//   - local (subpackage): embedded vector-store gateway for development
//     and tests, no network
package gateway
