package parsing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jonathan/opportunity-tracker/internal/fetch"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/normalize"
	"github.com/jonathan/opportunity-tracker/internal/prompts"
	"github.com/jonathan/opportunity-tracker/internal/schemas"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// FetchFunc resolves a URL to raw HTML. It exists so tests can substitute
// the network fetcher.
type FetchFunc func(ctx context.Context, url string) (*fetch.Result, error)

func defaultFetch(ctx context.Context, url string) (*fetch.Result, error) {
	return fetch.Fetch(ctx, url, nil)
}

// ParseOpportunityText extracts a structured opportunity from job posting
// text. The model's JSON response is schema-validated before decoding;
// fields the caller is authoritative for (workflow status, posting link)
// are set afterwards so model output can never override them.
func ParseOpportunityText(ctx context.Context, client llm.Client, text, link string) (*types.OpportunityCreate, error) {
	systemPrompt := prompts.MustGet("parsing.json", "parse-opportunity")

	raw, err := client.GenerateJSON(ctx, systemPrompt, text, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate opportunity JSON", Cause: err}
	}

	cleaned := []byte(llm.CleanJSONBlock(raw))

	if err := schemas.Validate(schemas.OpportunitySchema, cleaned); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &ValidationError{Message: "model output violates opportunity schema", Cause: ve}
		}
		return nil, &ParseError{Message: "model output is not valid JSON", Cause: err}
	}

	var opp types.OpportunityCreate
	if err := json.Unmarshal(cleaned, &opp); err != nil {
		return nil, &ParseError{Message: "failed to decode opportunity JSON", Cause: err}
	}

	// Caller-authoritative fields win over anything the model produced.
	opp.Status = types.StatusToApply
	if link != "" {
		opp.PostingLink = &link
	}

	if err := opp.Validate(); err != nil {
		return nil, &ValidationError{Message: "extracted opportunity is invalid", Cause: err}
	}

	return &opp, nil
}

// ParseOpportunityFromLink fetches a job posting URL, normalizes it to plain
// text, and extracts a structured opportunity. fetchFn may be nil, in which
// case the two-tier network fetcher is used.
func ParseOpportunityFromLink(ctx context.Context, client llm.Client, fetchFn FetchFunc, link string) (*types.OpportunityCreate, error) {
	if fetchFn == nil {
		fetchFn = defaultFetch
	}

	result, err := fetchFn(ctx, link)
	if err != nil {
		return nil, err
	}

	text := normalize.ForURL(result.HTML, link)

	return ParseOpportunityText(ctx, client, text, link)
}
