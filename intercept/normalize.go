package intercept

import (
	"strings"

	"github.com/tidwall/gjson"
)

// This file is the conversation-turn normalizer: pure functions from
// provider-specific request/response JSON to plain text. Nothing here ever
// fails; missing or unrecognized shapes normalize to "".

// UserText extracts the outgoing user-facing text from a request body.
// Handles a plain string conversation, an array of role-tagged entries
// whose content is a string, and typed content parts, where only
// text-bearing parts contribute, joined by whitespace.
func UserText(d *Descriptor, body []byte) string {
	conv := gjson.GetBytes(body, d.MessagesPath)
	if !conv.Exists() {
		return ""
	}
	if conv.Type == gjson.String {
		return conv.String()
	}
	if !conv.IsArray() {
		return ""
	}

	entries := conv.Array()
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		role := entry.Get("role").String()
		if role != "user" {
			continue
		}
		content := entry.Get("content")
		if !content.Exists() {
			content = entry.Get("parts")
		}
		if text := collectText(content, " "); text != "" {
			return text
		}
	}
	return ""
}

// AssistantText extracts the assistant text from a non-streaming response
// body by trying the descriptor's response paths in order.
func AssistantText(d *Descriptor, body []byte) string {
	for _, path := range d.ResponseTextPaths {
		if text := collectText(gjson.GetBytes(body, path), ""); text != "" {
			return text
		}
	}
	return ""
}

// chunkText extracts the text fragment carried by one stream chunk, using
// the descriptor's chunk rules. Chunks matching no rule contribute nothing.
func chunkText(rules []ChunkRule, data []byte) string {
	var b strings.Builder
	for _, rule := range rules {
		if rule.Guard != "" {
			if gjson.GetBytes(data, rule.Guard).String() != rule.GuardValue {
				continue
			}
		}
		b.WriteString(collectText(gjson.GetBytes(data, rule.TextPath), ""))
	}
	return b.String()
}

// collectText flattens a gjson value to its text content. Strings are taken
// as-is; arrays are flattened recursively; objects contribute their "text"
// field when it is a string, which covers text, input_text, and output_text
// parts. Image and tool parts have no such field and are skipped.
func collectText(v gjson.Result, sep string) string {
	if !v.Exists() {
		return ""
	}

	switch {
	case v.Type == gjson.String:
		return v.String()
	case v.IsArray():
		var parts []string
		for _, item := range v.Array() {
			if text := collectText(item, sep); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, sep)
	case v.IsObject():
		if text := v.Get("text"); text.Type == gjson.String {
			return text.String()
		}
		return ""
	default:
		return ""
	}
}
