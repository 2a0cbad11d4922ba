package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeJSONStripsEscapedNull(t *testing.T) {
	in := json.RawMessage(`{"k":"a\u0000b"}`)
	assert.Equal(t, `{"k":"ab"}`, string(sanitizeJSON(in)))
}

func TestSanitizeJSONStripsRawNull(t *testing.T) {
	in := json.RawMessage("{\"k\":\"a\x00b\"}")
	assert.Equal(t, `{"k":"ab"}`, string(sanitizeJSON(in)))
}

func TestSanitizeJSONLeavesCleanValues(t *testing.T) {
	in := json.RawMessage(`{"k":"ab"}`)
	assert.Equal(t, string(in), string(sanitizeJSON(in)))
	assert.Nil(t, sanitizeJSON(nil))
}
