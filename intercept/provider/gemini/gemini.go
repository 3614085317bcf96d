// Package gemini intercepts Google Gemini generateContent calls. Importing
// it registers the integration with the default registry.
//
// Gemini has no middleware hook comparable to the Anthropic and OpenAI
// SDKs; coverage comes from the transport layer (the default registry swap,
// or intercept.WrapClient on the client handed to the SDK).
package gemini

import (
	"github.com/agentic-learning/go-sdk/intercept"
)

func init() {
	intercept.DefaultRegistry().Register(func(r *intercept.Registry) intercept.Interceptor {
		return New(r)
	})
}

// Descriptor returns the Gemini call surface: generateContent and
// streamGenerateContent method suffixes, memory injected as a leading
// systemInstruction part. Stream chunks reuse the response shape, so the
// chunk rule has no guard.
func Descriptor() intercept.Descriptor {
	return intercept.Descriptor{
		Provider:     "gemini",
		Hosts:        []string{"generativelanguage.googleapis.com"},
		Paths:        []string{":generateContent", ":streamGenerateContent"},
		Inject:       intercept.InjectSystemInstruction,
		MessagesPath: "contents",
		ResponseTextPaths: []string{
			"candidates.0.content.parts",
		},
		Chunks: []intercept.ChunkRule{
			{TextPath: "candidates.0.content.parts"},
		},
	}
}

// New returns the Gemini interceptor bound to reg.
func New(reg *intercept.Registry) *intercept.DescriptorInterceptor {
	return intercept.NewDescriptorInterceptor(Descriptor(), reg)
}
