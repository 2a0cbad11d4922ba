package model

import (
	"encoding/json"
	"strings"
)

// Postgres rejects NUL bytes inside text and jsonb values. On-chain data is
// attacker controlled, so any string column that carries it must be
// scrubbed before a retried write.
func sanitizeString(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// sanitizeJSON strips both the raw NUL byte and the six-character \u0000
// escape, which jsonb rejects even though it is valid JSON text.
func sanitizeJSON(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	s := string(raw)
	if !strings.Contains(s, "\\u0000") && !strings.ContainsRune(s, 0) {
		return raw
	}
	s = strings.ReplaceAll(s, "\\u0000", "")
	s = strings.ReplaceAll(s, "\x00", "")
	return json.RawMessage(s)
}

// standardizeAddress left-pads short account addresses to the canonical
// 0x-prefixed 64 hex character form.
func standardizeAddress(addr string) string {
	trimmed := strings.TrimPrefix(addr, "0x")
	if len(trimmed) >= 64 {
		return "0x" + trimmed
	}
	return "0x" + strings.Repeat("0", 64-len(trimmed)) + trimmed
}
