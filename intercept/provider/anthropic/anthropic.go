// Package anthropic intercepts Anthropic Messages API calls. Importing it
// registers the integration with the default registry.
package anthropic

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentic-learning/go-sdk/intercept"
)

func init() {
	intercept.DefaultRegistry().Register(func(r *intercept.Registry) intercept.Interceptor {
		return New(r)
	})
}

// Descriptor returns the Anthropic call surface: /v1/messages requests,
// memory injected into the top-level "system" field, streamed text carried
// by content_block_delta events.
func Descriptor() intercept.Descriptor {
	return intercept.Descriptor{
		Provider:          "anthropic",
		Hosts:             []string{"api.anthropic.com"},
		Paths:             []string{"/v1/messages"},
		Inject:            intercept.InjectSystemField,
		MessagesPath:      "messages",
		ResponseTextPaths: []string{"content"},
		Chunks: []intercept.ChunkRule{
			{
				Guard:      "type",
				GuardValue: "content_block_delta",
				TextPath:   "delta.text",
			},
		},
	}
}

// New returns the Anthropic interceptor bound to reg.
func New(reg *intercept.Registry) *intercept.DescriptorInterceptor {
	return intercept.NewDescriptorInterceptor(Descriptor(), reg)
}

// Middleware returns an anthropic-sdk-go middleware that runs requests
// through reg's interception pipeline, for callers who prefer wiring one
// SDK client over swapping the process transport:
//
//	client := anthropic.NewClient(option.WithMiddleware(provider.Middleware(reg)))
func Middleware(reg *intercept.Registry) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		return intercept.RoundTripWith(reg, req, next)
	}
}
