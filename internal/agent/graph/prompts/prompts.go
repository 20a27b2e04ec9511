// Package prompts holds the embedded system prompt for the free-text
// responder and renders it with the current conversation context.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/rentalheights/agent-core/internal/agent/model"
)

//go:embed template/responder_prompt.txt
var responderPrompt string

var responderTmpl = template.Must(template.New("responder").Parse(responderPrompt))

type responderContext struct {
	CompanyName string
	Stage       string
	ProjectType string
	Location    string
}

// RenderResponderSystem renders the responder system prompt for a state.
// Unset project fields render as "No especificado".
func RenderResponderSystem(cfg model.PromptConfig, s *model.ConversationState) (string, error) {
	rc := responderContext{
		CompanyName: cfg.CompanyName,
		Stage:       string(s.ConversationStage),
		ProjectType: "No especificado",
		Location:    "No especificado",
	}
	if s.ProjectDetails != nil {
		if s.ProjectDetails.ProjectType != "" {
			rc.ProjectType = s.ProjectDetails.ProjectType
		}
		if s.ProjectDetails.Location != "" {
			rc.Location = s.ProjectDetails.Location
		}
	}

	var sb strings.Builder
	if err := responderTmpl.Execute(&sb, rc); err != nil {
		return "", fmt.Errorf("render responder prompt: %w", err)
	}
	return sb.String(), nil
}
