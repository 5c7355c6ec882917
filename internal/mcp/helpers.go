package mcp

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"opsim/internal/service"
)

// ResponseEnvelope wraps every tool result so clients always find the payload
// under "data" and any interpretation hints under "guidance".
type ResponseEnvelope struct {
	Data     any      `json:"data"`
	Guidance []string `json:"guidance,omitempty"`
}

func WrapResponse(data any, guidance ...string) ResponseEnvelope {
	return ResponseEnvelope{Data: data, Guidance: guidance}
}

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

// textResult renders the envelope as indented JSON, followed by any charts as
// separate text blocks.
func textResult(env ResponseEnvelope, charts ...string) *mcp.CallToolResult {
	content := []mcp.Content{&mcp.TextContent{Text: formatResult(env)}}
	for _, c := range charts {
		if c != "" {
			content = append(content, &mcp.TextContent{Text: c})
		}
	}
	return &mcp.CallToolResult{Content: content}
}

// errorResult reports a failure as a tool error so the model can correct its
// arguments instead of the call failing at the protocol level.
func errorResult(tool string, err error) *mcp.CallToolResult {
	log.Warn().Err(err).Str("tool", tool).Str("kind", service.ErrorKind(err)).Msg("Tool call failed")
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
