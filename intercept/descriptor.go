package intercept

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// InjectStrategy names the structural slot a provider exposes for system
// context, which is where retrieved memory is injected.
type InjectStrategy string

const (
	// InjectSystemField prepends to a top-level "system" field that is
	// either a string or an array of text blocks (Anthropic).
	InjectSystemField InjectStrategy = "system_field"

	// InjectSystemMessage prepends to the leading system/developer message
	// of the messages array, inserting one when absent (OpenAI chat).
	InjectSystemMessage InjectStrategy = "system_message"

	// InjectInstructions prepends to a top-level "instructions" string
	// (OpenAI Responses).
	InjectInstructions InjectStrategy = "instructions"

	// InjectSystemInstruction prepends a part to systemInstruction.parts
	// (Gemini).
	InjectSystemInstruction InjectStrategy = "system_instruction"
)

// ChunkRule recognizes one text-bearing stream chunk shape. The recognized
// shapes are configuration data, not code: providers evolve their stream
// envelopes, and a descriptor override is enough to follow them.
type ChunkRule struct {
	// Guard is a gjson path that must resolve to GuardValue for the rule
	// to apply. Empty means the rule applies to every chunk.
	Guard      string `yaml:"guard,omitempty"`
	GuardValue string `yaml:"guard_value,omitempty"`

	// TextPath is the gjson path of the text fragment. The result may be a
	// string or an array of text-bearing values.
	TextPath string `yaml:"text_path"`
}

// Descriptor declares a provider's call surface: where its requests go and
// how to read and rewrite their shapes. Descriptors are validated when an
// interceptor installs; an invalid descriptor makes the provider
// unavailable rather than failing the install pass.
type Descriptor struct {
	// Provider uniquely identifies this call surface ("anthropic",
	// "openai", "openai-responses", "gemini").
	Provider string `yaml:"provider"`

	// Hosts lists the provider's API hosts. Host matching is a fast path:
	// a request whose host matches is claimed immediately. Requests aimed
	// elsewhere (proxies, test servers) are still claimed by path.
	Hosts []string `yaml:"hosts,omitempty"`

	// Paths lists URL path suffixes of the intercepted endpoints,
	// e.g. "/v1/messages" or ":generateContent".
	Paths []string `yaml:"paths"`

	// Inject selects where memory context goes in the request body.
	Inject InjectStrategy `yaml:"inject"`

	// MessagesPath is the gjson path of the conversation in the request
	// body ("messages", "contents", "input"). The value may be a plain
	// string (treated as the user text) or an array of role-tagged
	// entries.
	MessagesPath string `yaml:"messages_path"`

	// ResponseTextPaths are gjson paths tried in order against a
	// non-streaming response body to extract the assistant text.
	ResponseTextPaths []string `yaml:"response_text_paths"`

	// Chunks are the recognized text-bearing stream chunk shapes.
	Chunks []ChunkRule `yaml:"chunks,omitempty"`
}

// Validate reports whether the descriptor is complete enough to install.
func (d *Descriptor) Validate() error {
	if d.Provider == "" {
		return fmt.Errorf("descriptor: provider is required")
	}
	if len(d.Paths) == 0 {
		return fmt.Errorf("descriptor %s: at least one path is required", d.Provider)
	}
	switch d.Inject {
	case InjectSystemField, InjectSystemMessage, InjectInstructions, InjectSystemInstruction:
	default:
		return fmt.Errorf("descriptor %s: unknown inject strategy %q", d.Provider, d.Inject)
	}
	if d.MessagesPath == "" {
		return fmt.Errorf("descriptor %s: messages_path is required", d.Provider)
	}
	if len(d.ResponseTextPaths) == 0 {
		return fmt.Errorf("descriptor %s: at least one response_text_path is required", d.Provider)
	}
	for i, rule := range d.Chunks {
		if rule.TextPath == "" {
			return fmt.Errorf("descriptor %s: chunk rule %d has no text_path", d.Provider, i)
		}
	}
	return nil
}

// matchesHost reports whether the request targets one of the descriptor's
// known API hosts.
func (d *Descriptor) matchesHost(req *http.Request) bool {
	host := req.URL.Hostname()
	for _, h := range d.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// matchesPath reports whether the request path ends with one of the
// descriptor's endpoint suffixes.
func (d *Descriptor) matchesPath(req *http.Request) bool {
	path := req.URL.Path
	for _, p := range d.Paths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// descriptorFile is the YAML override document: a list of descriptors that
// replace or extend the built-in ones.
type descriptorFile struct {
	Descriptors []Descriptor `yaml:"descriptors"`
}

// DescriptorsFromYAML parses descriptor overrides. Every descriptor must
// validate; a single bad entry fails the whole document so a typo cannot
// silently disable interception.
func DescriptorsFromYAML(data []byte) ([]Descriptor, error) {
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse descriptors: %w", err)
	}
	for i := range file.Descriptors {
		if err := file.Descriptors[i].Validate(); err != nil {
			return nil, err
		}
	}
	return file.Descriptors, nil
}

// LoadDescriptorFile reads descriptor overrides from a YAML file.
func LoadDescriptorFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor file: %w", err)
	}
	return DescriptorsFromYAML(data)
}
