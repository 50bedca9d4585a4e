package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-ai/backend/internal/model"
)

func TestPart_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"text", `{"type":"text","text":"hello"}`},
		{"thinking", `{"type":"thinking","text":"hmm"}`},
		{"image", `{"type":"image","image":{"media_type":"image/png","data":"aGk="}}`},
		{"file", `{"type":"file","file":{"filename":"main.go","media_type":"text/x-go","data":"package main"}}`},
		{"source", `{"type":"source","source":{"title":"Go blog","url":"https://go.dev/blog","snippet":"..."}}`},
		// Field order and the opaque signature must survive untouched.
		{"tool call", `{"tool_call":{"signature":"sig-abc","args":{"q":"weather"},"tool_call_id":"tc1","tool_name":"web_search"},"type":"tool-call"}`},
		{"tool result", `{"type":"tool-result","tool_result":{"tool_call_id":"tc1","tool_name":"web_search","result":{"hits":3}}}`},
		// A part kind this build does not know about yet.
		{"unknown type", `{"type":"hologram","frames":[1,2,3],"codec":"h265"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p model.Part
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &p))

			out, err := json.Marshal(p)
			require.NoError(t, err)
			assert.Equal(t, tc.raw, string(out), "re-marshaled bytes must be identical")
		})
	}
}

func TestPart_RoundTripThroughMessageList(t *testing.T) {
	raw := `[{"type":"text","text":"run it"},{"type":"tool-call","tool_call":{"tool_call_id":"tc9","tool_name":"url_fetch","signature":"opaque-token"}}]`

	var parts []model.Part
	require.NoError(t, json.Unmarshal([]byte(raw), &parts))

	out, err := json.Marshal(parts)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestPart_DecodedFieldsPopulated(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var p model.Part
		require.NoError(t, json.Unmarshal([]byte(`{"type":"text","text":"hi"}`), &p))
		assert.Equal(t, model.PartText, p.Type)
		assert.Equal(t, "hi", p.Text)
	})

	t.Run("tool call keeps its signature", func(t *testing.T) {
		var p model.Part
		require.NoError(t, json.Unmarshal([]byte(`{"type":"tool-call","tool_call":{"tool_call_id":"tc1","tool_name":"web_search","signature":"s1"}}`), &p))
		require.NotNil(t, p.ToolCall)
		assert.Equal(t, "s1", p.ToolCall.Signature)
	})

	t.Run("unknown type keeps the tag only", func(t *testing.T) {
		var p model.Part
		require.NoError(t, json.Unmarshal([]byte(`{"type":"hologram","x":1}`), &p))
		assert.Equal(t, model.PartType("hologram"), p.Type)
		assert.Empty(t, p.Text)
		assert.Nil(t, p.File)
	})
}

func TestPart_ConstructedPartsMarshal(t *testing.T) {
	p := model.NewTextPart("fresh")
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"fresh"}`, string(out))

	src := model.NewSourcePart("Title", "https://example.com", "snip")
	out, err = json.Marshal(src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"source","source":{"title":"Title","url":"https://example.com","snippet":"snip"}}`, string(out))
}
