package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// doneSentinel terminates an SSE completion stream
const doneSentinel = "[DONE]"

// streamChunk is the shape of one decoded SSE data line
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string          `json:"content"`
			ToolCalls []toolCallDelta `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallDelta is one tool-call fragment within a chunk. A single
// call's name and arguments arrive split across many fragments sharing
// the same index; the id is usually only present on the first.
type toolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// ConsumeStream reads an SSE completion stream to the end, accumulating
// content deltas and tool-call fragments. Every byte read is forwarded
// to forward as it arrives, so a caller can relay the live stream while
// this accumulates. Pass io.Discard to skip forwarding.
//
// Fragments are merged by delta index with append semantics on both the
// function name and the arguments text; the arguments only form valid
// JSON once the final fragment has been appended. Lines that are not
// well-formed data lines are skipped, never fatal.
func ConsumeStream(r io.Reader, forward io.Writer) (*StreamResult, error) {
	var text strings.Builder

	// Tool calls keyed by delta index, output in arrival order
	accum := make(map[int]*ToolCall)
	var order []int

	// TeeReader forwards raw bytes the moment they are read; the
	// bufio layer on top handles lines split across chunk boundaries.
	tee := io.TeeReader(r, forward)
	scanner := bufio.NewScanner(tee)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			payload, ok = strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			payload = strings.TrimSpace(payload)
		}

		if payload == doneSentinel {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// One malformed line never aborts the stream
			continue
		}

		for _, choice := range chunk.Choices {
			text.WriteString(choice.Delta.Content)

			for _, delta := range choice.Delta.ToolCalls {
				call, exists := accum[delta.Index]
				if !exists {
					call = &ToolCall{}
					accum[delta.Index] = call
					order = append(order, delta.Index)
				}
				if delta.ID != "" {
					call.ID += delta.ID
				}
				call.Name += delta.Function.Name
				call.Arguments += delta.Function.Arguments
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("completion stream read failed: %w", err)
	}

	// Read any trailing bytes past the sentinel so the stream is
	// always consumed to completion
	_, _ = io.Copy(io.Discard, tee)

	result := &StreamResult{
		Text:      text.String(),
		ToolCalls: make([]ToolCall, 0, len(order)),
	}
	for _, idx := range order {
		result.ToolCalls = append(result.ToolCalls, *accum[idx])
	}

	return result, nil
}
