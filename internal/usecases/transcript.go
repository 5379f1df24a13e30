package usecases

import (
	"encoding/json"
	"fmt"
	"strings"

	"punto_kennedy_crm/internal/entities"
)

// PersonPrefix marks stored payloads that originated from the student's side
// of the conversation. The upstream logger prepends it to raw inbound text.
const PersonPrefix = "Mensaje de la persona:"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Payloads come from several producers with no shared schema; nesting deeper
// than this is treated as garbage and serialized literally.
const maxUnwrapDepth = 5

// Unwrap converts one stored chat payload of unknown shape into display text.
// It never fails: anything unrecognized falls back to the literal input or a
// JSON serialization, so no content is silently dropped.
func Unwrap(raw string) string {
	return unwrapValue(raw, 0)
}

func unwrapValue(v interface{}, depth int) string {
	if depth >= maxUnwrapDepth {
		return serialize(v)
	}

	switch t := v.(type) {
	case nil:
		return ""

	case string:
		trimmed := strings.TrimSpace(t)
		if strings.HasPrefix(trimmed, PersonPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, PersonPrefix))
		}
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var parsed interface{}
			if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
				// Looked structured but is not; keep the original text
				return t
			}
			return unwrapValue(parsed, depth+1)
		}
		return t

	case map[string]interface{}:
		if content, ok := t["content"]; ok {
			return unwrapValue(content, depth+1)
		}
		if output, ok := t["output"]; ok {
			if out, ok := output.(map[string]interface{}); ok {
				if msg, ok := out["message"].(string); ok {
					return msg
				}
				if joined := joinMensajes(out); joined != "" {
					return joined
				}
			}
			return serialize(t)
		}
		if msg, ok := t["message"]; ok {
			return unwrapValue(msg, depth+1)
		}
		if text, ok := t["text"].(string); ok {
			return text
		}
		return serialize(t)

	default:
		return serialize(t)
	}
}

// joinMensajes concatenates the ad-hoc multi-part bot output fields, skipping
// absent ones, with blank-line separators.
func joinMensajes(out map[string]interface{}) string {
	parts := []string{}
	for _, key := range []string{"mensaje_1", "mensaje_2", "mensaje_3", "message"} {
		if s, ok := out[key].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func serialize(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ClassifyRole decides whether a stored payload was authored by the student or
// the assistant. Heuristic with no ground truth; anything unparseable or
// unrecognized defaults to assistant.
func ClassifyRole(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var obj map[string]interface{}
		if json.Unmarshal([]byte(trimmed), &obj) == nil {
			if isUserMarker(obj["type"]) || isUserMarker(obj["role"]) {
				return RoleUser
			}
		}
	}
	if strings.Contains(raw, PersonPrefix) {
		return RoleUser
	}
	return RoleAssistant
}

func isUserMarker(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "human", "user":
		return true
	}
	return false
}

// BuildTranscript turns stored messages (newest first, as returned by the chat
// store) into a chronological role-tagged transcript.
func BuildTranscript(messages []entities.ChatMessage) []entities.TranscriptEntry {
	transcript := make([]entities.TranscriptEntry, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		transcript = append(transcript, entities.TranscriptEntry{
			Role:    ClassifyRole(messages[i].Payload),
			Content: Unwrap(messages[i].Payload),
		})
	}
	return transcript
}

// NormalizePhone strips everything but digits. Phone numbers are the fuzzy
// join key between chat log, documents and student records; matches are
// best-effort and never assumed unique.
func NormalizePhone(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
