package intercept

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// injectMemory rewrites a request body so the provider sees memCtx as
// system context: prepended when the request already carries a system slot,
// inserted fresh otherwise. The original body is never mutated; on error
// the caller proceeds with the unmodified request.
func injectMemory(d *Descriptor, body []byte, memCtx string) ([]byte, error) {
	switch d.Inject {
	case InjectSystemField:
		return injectSystemField(body, memCtx)
	case InjectSystemMessage:
		return injectSystemMessage(d.MessagesPath, body, memCtx)
	case InjectInstructions:
		return injectInstructions(body, memCtx)
	case InjectSystemInstruction:
		return injectSystemInstruction(body, memCtx)
	default:
		return nil, fmt.Errorf("inject: unknown strategy %q", d.Inject)
	}
}

// injectSystemField handles the Anthropic shape: "system" is either a
// string or an array of text blocks.
func injectSystemField(body []byte, memCtx string) ([]byte, error) {
	sys := gjson.GetBytes(body, "system")
	switch {
	case !sys.Exists():
		return sjson.SetBytes(body, "system", memCtx)
	case sys.Type == gjson.String:
		return sjson.SetBytes(body, "system", memCtx+"\n\n"+sys.String())
	case sys.IsArray():
		blocks := []interface{}{
			map[string]interface{}{"type": "text", "text": memCtx},
		}
		if existing, ok := sys.Value().([]interface{}); ok {
			blocks = append(blocks, existing...)
		}
		return sjson.SetBytes(body, "system", blocks)
	default:
		return nil, fmt.Errorf("inject: unexpected system field shape %s", sys.Type)
	}
}

// injectSystemMessage handles the OpenAI chat shape: system context lives
// in a leading message with role "system" or "developer".
func injectSystemMessage(messagesPath string, body []byte, memCtx string) ([]byte, error) {
	msgs := gjson.GetBytes(body, messagesPath)
	arr, ok := msgs.Value().([]interface{})
	if !ok {
		arr = nil
	}

	for i, raw := range arr {
		msg, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := msg["role"].(string)
		if role != "system" && role != "developer" {
			continue
		}

		switch content := msg["content"].(type) {
		case string:
			msg["content"] = memCtx + "\n\n" + content
		case []interface{}:
			part := map[string]interface{}{"type": "text", "text": memCtx}
			msg["content"] = append([]interface{}{part}, content...)
		default:
			msg["content"] = memCtx
		}
		arr[i] = msg
		return sjson.SetBytes(body, messagesPath, arr)
	}

	// No system message yet: insert one at the front.
	sysMsg := map[string]interface{}{"role": "system", "content": memCtx}
	arr = append([]interface{}{sysMsg}, arr...)
	return sjson.SetBytes(body, messagesPath, arr)
}

// injectInstructions handles the OpenAI Responses shape: a top-level
// "instructions" string.
func injectInstructions(body []byte, memCtx string) ([]byte, error) {
	instr := gjson.GetBytes(body, "instructions")
	if instr.Type == gjson.String && instr.String() != "" {
		return sjson.SetBytes(body, "instructions", memCtx+"\n\n"+instr.String())
	}
	return sjson.SetBytes(body, "instructions", memCtx)
}

// injectSystemInstruction handles the Gemini shape: systemInstruction
// carries an array of parts. Both the camelCase and snake_case spellings
// are honored, preferring whichever the request already uses.
func injectSystemInstruction(body []byte, memCtx string) ([]byte, error) {
	key := "systemInstruction"
	existing := gjson.GetBytes(body, key)
	if !existing.Exists() {
		if alt := gjson.GetBytes(body, "system_instruction"); alt.Exists() {
			key = "system_instruction"
			existing = alt
		}
	}

	parts := []interface{}{
		map[string]interface{}{"text": memCtx},
	}
	if existing.Exists() {
		if prior, ok := existing.Get("parts").Value().([]interface{}); ok {
			parts = append(parts, prior...)
		}
	}

	return sjson.SetBytes(body, key, map[string]interface{}{"parts": parts})
}
