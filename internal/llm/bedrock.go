package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithydocument "github.com/aws/smithy-go/document"
)

// BedrockTransport is the concrete Transport implementation used outside
// of tests: it drives an Anthropic model through Bedrock's Converse API,
// which already speaks the same "messages + tools + forced tool choice"
// shape the rest of this package is built around.
type BedrockTransport struct {
	Client *bedrockruntime.Client
}

// NewBedrockTransport wraps an already-configured bedrockruntime client.
func NewBedrockTransport(client *bedrockruntime.Client) *BedrockTransport {
	return &BedrockTransport{Client: client}
}

// Chat implements Transport by translating the chat-completions-shaped
// ChatRequest into a Bedrock Converse call and translating the response
// back into zero-or-one tool calls.
func (t *BedrockTransport) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages, err := toBedrockMessages(req.Messages)
	if err != nil {
		return ChatResponse{}, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(req.Model),
		Messages: messages,
		System:   SystemBlocks(req.Messages),
	}

	if len(req.Tools) > 0 {
		toolConfig := &types.ToolConfiguration{}
		for _, tool := range req.Tools {
			var schema smithydocument.Interface
			if len(tool.Parameters) > 0 {
				var parsed map[string]any
				if err := json.Unmarshal(tool.Parameters, &parsed); err != nil {
					return ChatResponse{}, fmt.Errorf("%w: invalid tool schema for %s: %v", ErrTransport, tool.Name, err)
				}
				schema = smithydocument.NewLazyDocument(parsed)
			}
			toolConfig.Tools = append(toolConfig.Tools, &types.ToolMemberToolSpec{
				Value: types.ToolSpec{
					Name:        aws.String(tool.Name),
					Description: aws.String(tool.Description),
					InputSchema: &types.ToolInputSchemaMemberJson{Value: schema},
				},
			})
		}
		if req.ToolChoice != "" {
			toolConfig.ToolChoice = &types.ToolChoiceMemberTool{
				Value: types.SpecificToolChoice{Name: aws.String(req.ToolChoice)},
			}
		}
		input.ToolConfig = toolConfig
	}

	if req.Temperature != 0 {
		input.InferenceConfig = &types.InferenceConfiguration{Temperature: aws.Float32(float32(req.Temperature))}
	}

	out, err := t.Client.Converse(ctx, input)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	msgOutput, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ChatResponse{}, fmt.Errorf("%w: unexpected converse output shape", ErrTransport)
	}

	var resp ChatResponse
	for _, block := range msgOutput.Value.Content {
		switch v := block.(type) {
		case *types.ContentBlockMemberText:
			resp.Content += v.Value
		case *types.ContentBlockMemberToolUse:
			argBytes, marshalErr := json.Marshal(v.Value.Input)
			if marshalErr != nil {
				return ChatResponse{}, fmt.Errorf("%w: %v", ErrTransport, marshalErr)
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        aws.ToString(v.Value.ToolUseId),
				Name:      aws.ToString(v.Value.Name),
				Arguments: string(argBytes),
			})
		}
	}
	return resp, nil
}

func toBedrockMessages(messages []Message) ([]types.Message, error) {
	var out []types.Message
	for _, m := range messages {
		switch m.Role {
		case "system":
			// Bedrock carries the system prompt outside the message list;
			// Chat passes these entries via ConverseInput.System instead.
			continue
		case "tool":
			var payload any
			if err := json.Unmarshal([]byte(m.Content), &payload); err != nil {
				payload = m.Content
			}
			out = append(out, types.Message{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberToolResult{
						Value: types.ToolResultBlock{
							ToolUseId: aws.String(m.ToolCallID),
							Content: []types.ToolResultContentBlock{
								&types.ToolResultContentBlockMemberJson{Value: smithydocument.NewLazyDocument(payload)},
							},
						},
					},
				},
			})
		case "assistant":
			var blocks []types.ContentBlock
			if m.Content != "" {
				blocks = append(blocks, &types.ContentBlockMemberText{Value: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var args any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				blocks = append(blocks, &types.ContentBlockMemberToolUse{
					Value: types.ToolUseBlock{
						ToolUseId: aws.String(tc.ID),
						Name:      aws.String(tc.Name),
						Input:     smithydocument.NewLazyDocument(args),
					},
				})
			}
			out = append(out, types.Message{Role: types.ConversationRoleAssistant, Content: blocks})
		default:
			out = append(out, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}
	return out, nil
}

// SystemBlocks extracts the system-role messages from a conversation as
// Bedrock SystemContentBlock values, for callers that pass them separately
// via ConverseInput.System.
func SystemBlocks(messages []Message) []types.SystemContentBlock {
	var out []types.SystemContentBlock
	for _, m := range messages {
		if m.Role == "system" && m.Content != "" {
			out = append(out, &types.SystemContentBlockMemberText{Value: m.Content})
		}
	}
	return out
}
