package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type openAIProvider struct {
	client *http.Client
	url    string
	apiKey string
}

// NewOpenAIProvider returns a Provider backed by an OpenAI-compatible chat
// completions endpoint. No client timeout is set here: streaming calls hold
// the connection open and cancellation travels through the request context.
func NewOpenAIProvider(url, apiKey string) Provider {
	return &openAIProvider{
		client: &http.Client{},
		url:    strings.TrimSuffix(url, "/"),
		apiKey: apiKey,
	}
}

// chatRequest is the wire shape for /chat/completions. The tool and
// reasoning fields are the provider's vendor extensions.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []wireMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	MaxSteps       int           `json:"max_steps,omitempty"`
	ReasoningLevel string        `json:"reasoning_effort,omitempty"`
	Tools          *ToolConfig   `json:"builtin_tools,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type wireMessage struct {
	Role    string          `json:"role"`
	Content string          `json:"content"`
	Parts   json.RawMessage `json:"parts,omitempty"`
}

type respFormat struct {
	Type       string         `json:"type"`
	JSONSchema map[string]any `json:"json_schema,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// streamLine is one SSE data payload from a streaming completion.
type streamLine struct {
	Choices []struct {
		Delta struct {
			Content   string  `json:"content"`
			Reasoning string  `json:"reasoning"`
			Source    *Source `json:"source"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

func (p *openAIProvider) do(ctx context.Context, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("provider returned status %d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), string(bodyBytes))
	}
	return resp, nil
}

func (p *openAIProvider) GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamChunk) error {
	defer close(ch)

	messages := make([]wireMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, wireMessage{Role: m.Role, Content: m.Content, Parts: m.Parts})
	}

	body := chatRequest{
		Model:          req.Model,
		Messages:       messages,
		Stream:         true,
		MaxTokens:      req.MaxOutputTokens,
		MaxSteps:       req.MaxSteps,
		ReasoningLevel: req.ThinkingLevel,
	}
	if req.Tools.WebSearch || req.Tools.URLFetch {
		tools := req.Tools
		body.Tools = &tools
	}

	resp, err := p.do(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		data, found := bytes.CutPrefix(line, []byte("data: "))
		if !found {
			continue
		}
		if bytes.Equal(data, []byte("[DONE]")) {
			break
		}

		var sl streamLine
		if err := json.Unmarshal(data, &sl); err != nil {
			ch <- StreamChunk{Error: "failed to decode stream chunk"}
			continue
		}
		if len(sl.Choices) == 0 {
			continue
		}

		delta := sl.Choices[0].Delta
		chunk := StreamChunk{
			Content:  delta.Content,
			Thinking: delta.Reasoning,
			Source:   delta.Source,
		}
		if sl.Choices[0].FinishReason != "" {
			chunk.Done = true
			chunk.Usage = sl.Usage
		}

		select {
		case ch <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (p *openAIProvider) GenerateObject(ctx context.Context, req *ObjectRequest, out any) error {
	messages := []wireMessage{}
	if req.System != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, wireMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:          req.Model,
		Messages:       messages,
		Stream:         false,
		ReasoningLevel: req.ThinkingLevel,
	}
	if len(req.Schema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(req.Schema, &schema); err != nil {
			return fmt.Errorf("invalid schema: %w", err)
		}
		body.ResponseFormat = &respFormat{
			Type: "json_schema",
			JSONSchema: map[string]any{
				"name":   req.SchemaName,
				"schema": schema,
				"strict": true,
			},
		}
	} else {
		body.ResponseFormat = &respFormat{Type: "json_object"}
	}

	resp, err := p.do(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return fmt.Errorf("no choices in provider response")
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	// Some models wrap structured output in a fenced block.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("could not decode structured output: %w", err)
	}
	return nil
}
