package llm

// ChatMessage is one message in a completion request context
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ToolFunction describes a callable function exposed to the model
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Tool wraps a function definition in the gateway's tool envelope
type Tool struct {
	Type     string       `json:"type"` // always "function"
	Function ToolFunction `json:"function"`
}

// CompletionRequest is the JSON body POSTed to the completion gateway
type CompletionRequest struct {
	Model      string        `json:"model"`
	Messages   []ChatMessage `json:"messages"`
	Tools      []Tool        `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	Stream     bool          `json:"stream"`
}

// ToolCall is a fully reassembled tool invocation from a streamed response
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON text, valid only once all fragments arrive
}

// StreamResult holds everything accumulated from a completed stream
type StreamResult struct {
	// Text is the concatenation of all content deltas
	Text string

	// ToolCalls are the reassembled tool invocations in arrival order
	ToolCalls []ToolCall
}
