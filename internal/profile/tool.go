// Package profile generates and validates profile entries from external
// documents via a tool-call constrained model extraction.
package profile

import (
	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// ToolName is the function the model is asked to invoke with extracted entries.
const ToolName = "profile_create"

// profileCreateTool declares the entries-array function schema offered to
// the model.
func profileCreateTool() *genai.Tool {
	entrySchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"kind": {
				Type: genai.TypeString,
				Enum: types.EntryKinds,
			},
			"title": {
				Type:     genai.TypeString,
				Nullable: true,
			},
			"organization": {
				Type:     genai.TypeString,
				Nullable: true,
			},
			"start_date": {
				Type:        genai.TypeString,
				Description: "Start date in ISO 8601 format (YYYY-MM-DD)",
				Nullable:    true,
			},
			"end_date": {
				Type:        genai.TypeString,
				Description: "End date in ISO 8601 format (YYYY-MM-DD)",
				Nullable:    true,
			},
			"notes": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"kind"},
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        ToolName,
			Description: "Generate a new profile.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"entries": {
						Type:  genai.TypeArray,
						Items: entrySchema,
					},
				},
				Required: []string{"entries"},
			},
		}},
	}
}
