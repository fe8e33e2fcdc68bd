package llm_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/tavernkeep/gamemaster/internal/clients/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader yields at most n bytes per Read to exercise lines split
// across chunk boundaries
type chunkedReader struct {
	data []byte
	n    int
	pos  int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	end := c.pos + c.n
	if end > len(c.data) {
		end = len(c.data)
	}
	copied := copy(p, c.data[c.pos:end])
	c.pos += copied
	return copied, nil
}

func contentChunk(content string) string {
	chunk := map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(chunk)
	return "data: " + string(data) + "\n\n"
}

func toolChunk(index int, id, name, args string) string {
	fn := map[string]any{}
	if name != "" {
		fn["name"] = name
	}
	if args != "" {
		fn["arguments"] = args
	}
	call := map[string]any{"index": index, "function": fn}
	if id != "" {
		call["id"] = id
	}
	chunk := map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"tool_calls": []map[string]any{call}}},
		},
	}
	data, _ := json.Marshal(chunk)
	return "data: " + string(data) + "\n\n"
}

func TestConsumeStreamPlainNarration(t *testing.T) {
	stream := contentChunk("The goblin ") +
		contentChunk("snarls at you.") +
		"data: [DONE]\n\n"

	result, err := llm.ConsumeStream(strings.NewReader(stream), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "The goblin snarls at you.", result.Text)
	assert.Empty(t, result.ToolCalls)
}

func TestConsumeStreamToolCallFragments(t *testing.T) {
	// Arguments split across three fragments; only the first carries
	// the id and name
	stream := toolChunk(0, "call_abc", "update_character_stats", `{"hp`) +
		toolChunk(0, "", "", `_change": -`) +
		toolChunk(0, "", "", `8}`) +
		"data: [DONE]\n\n"

	result, err := llm.ConsumeStream(strings.NewReader(stream), io.Discard)
	require.NoError(t, err)

	require.Len(t, result.ToolCalls, 1)
	call := result.ToolCalls[0]
	assert.Equal(t, "call_abc", call.ID)
	assert.Equal(t, "update_character_stats", call.Name)
	assert.Equal(t, `{"hp_change": -8}`, call.Arguments)

	var args struct {
		HPChange int `json:"hp_change"`
	}
	require.NoError(t, json.Unmarshal([]byte(call.Arguments), &args))
	assert.Equal(t, -8, args.HPChange)
}

func TestConsumeStreamTextAndToolCallsTogether(t *testing.T) {
	stream := contentChunk("A healing glow surrounds you. ") +
		toolChunk(0, "call_1", "update_character_stats", `{"hp_change": 5}`) +
		toolChunk(1, "call_2", "update_character_stats", `{"xp_gain": 50}`) +
		contentChunk("You feel stronger.") +
		"data: [DONE]\n\n"

	result, err := llm.ConsumeStream(strings.NewReader(stream), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "A healing glow surrounds you. You feel stronger.", result.Text)
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "call_1", result.ToolCalls[0].ID)
	assert.Equal(t, "call_2", result.ToolCalls[1].ID)
}

func TestConsumeStreamSkipsMalformedLines(t *testing.T) {
	stream := contentChunk("Before. ") +
		"data: {not valid json\n\n" +
		": keep-alive comment\n\n" +
		"event: ping\n\n" +
		contentChunk("After.") +
		"data: [DONE]\n\n"

	result, err := llm.ConsumeStream(strings.NewReader(stream), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "Before. After.", result.Text)
}

func TestConsumeStreamPartialLinesAcrossChunks(t *testing.T) {
	full := contentChunk("The merchant eyes your coin purse.") +
		toolChunk(0, "call_9", "update_character_stats", `{"xp_gain": 25}`) +
		"data: [DONE]\n\n"

	// Deliver the stream in 7-byte reads so every line is split
	reader := &chunkedReader{data: []byte(full), n: 7}

	result, err := llm.ConsumeStream(reader, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "The merchant eyes your coin purse.", result.Text)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, `{"xp_gain": 25}`, result.ToolCalls[0].Arguments)
}

func TestConsumeStreamForwardsBytes(t *testing.T) {
	stream := contentChunk("Hello.") + "data: [DONE]\n\n"

	var forwarded bytes.Buffer
	_, err := llm.ConsumeStream(strings.NewReader(stream), &forwarded)
	require.NoError(t, err)

	assert.Equal(t, stream, forwarded.String())
}

func TestConsumeStreamWithoutSentinel(t *testing.T) {
	// A stream that ends without [DONE] still yields what arrived
	stream := contentChunk("Cut off mid")

	result, err := llm.ConsumeStream(strings.NewReader(stream), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "Cut off mid", result.Text)
}
