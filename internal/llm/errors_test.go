package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target any
	}{
		{"unauthorized", &googleapi.Error{Code: 401}, new(*AuthError)},
		{"forbidden", &googleapi.Error{Code: 403}, new(*AuthError)},
		{"rate limited", &googleapi.Error{Code: 429}, new(*RateLimitError)},
		{"server error", &googleapi.Error{Code: 500}, new(*TransportError)},
		{"plain network error", errors.New("connection refused"), new(*TransportError)},
		{"wrapped api error", fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429}), new(*RateLimitError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyAPIError(tt.err)
			switch target := tt.target.(type) {
			case **AuthError:
				assert.ErrorAs(t, classified, target)
			case **RateLimitError:
				assert.ErrorAs(t, classified, target)
			case **TransportError:
				assert.ErrorAs(t, classified, target)
			}
			// The original cause stays reachable through the chain.
			assert.ErrorIs(t, classified, errors.Unwrap(classified))
		})
	}
}

func TestErrorTypesAreDistinguishable(t *testing.T) {
	var auth *AuthError
	var rate *RateLimitError

	err := classifyAPIError(&googleapi.Error{Code: 401})
	assert.True(t, errors.As(err, &auth))
	assert.False(t, errors.As(err, &rate))
}
