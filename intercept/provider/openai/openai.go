// Package openai intercepts OpenAI API calls, covering both the Chat
// Completions and the Responses endpoints. Importing it registers both
// integrations with the default registry.
package openai

import (
	"net/http"

	"github.com/openai/openai-go/option"

	"github.com/agentic-learning/go-sdk/intercept"
)

func init() {
	reg := intercept.DefaultRegistry()
	reg.Register(func(r *intercept.Registry) intercept.Interceptor {
		return NewChat(r)
	})
	reg.Register(func(r *intercept.Registry) intercept.Interceptor {
		return NewResponses(r)
	})
}

// ChatDescriptor returns the Chat Completions call surface: memory injected
// into the leading system/developer message, streamed text carried by
// chat.completion.chunk deltas.
func ChatDescriptor() intercept.Descriptor {
	return intercept.Descriptor{
		Provider:          "openai",
		Hosts:             []string{"api.openai.com"},
		Paths:             []string{"/chat/completions"},
		Inject:            intercept.InjectSystemMessage,
		MessagesPath:      "messages",
		ResponseTextPaths: []string{"choices.0.message.content"},
		Chunks: []intercept.ChunkRule{
			{
				Guard:      "object",
				GuardValue: "chat.completion.chunk",
				TextPath:   "choices.0.delta.content",
			},
		},
	}
}

// ResponsesDescriptor returns the Responses API call surface: memory
// injected into the top-level "instructions" field, streamed text carried
// by response.output_text.delta events.
func ResponsesDescriptor() intercept.Descriptor {
	return intercept.Descriptor{
		Provider:     "openai-responses",
		Hosts:        []string{"api.openai.com"},
		Paths:        []string{"/responses"},
		Inject:       intercept.InjectInstructions,
		MessagesPath: "input",
		ResponseTextPaths: []string{
			"output_text",
			"output.#(type==message).content",
			"output.0.content",
		},
		Chunks: []intercept.ChunkRule{
			{
				Guard:      "type",
				GuardValue: "response.output_text.delta",
				TextPath:   "delta",
			},
		},
	}
}

// NewChat returns the Chat Completions interceptor bound to reg.
func NewChat(reg *intercept.Registry) *intercept.DescriptorInterceptor {
	return intercept.NewDescriptorInterceptor(ChatDescriptor(), reg)
}

// NewResponses returns the Responses API interceptor bound to reg.
func NewResponses(reg *intercept.Registry) *intercept.DescriptorInterceptor {
	return intercept.NewDescriptorInterceptor(ResponsesDescriptor(), reg)
}

// Middleware returns an openai-go middleware that runs requests through
// reg's interception pipeline, for callers who prefer wiring one SDK client
// over swapping the process transport.
func Middleware(reg *intercept.Registry) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		return intercept.RoundTripWith(reg, req, next)
	}
}
