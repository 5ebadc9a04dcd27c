package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/parsing"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var notFound *db.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}

	var conflict *db.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict
	}

	var validation *parsing.ValidationError
	var parse *parsing.ParseError
	if errors.As(err, &validation) || errors.As(err, &parse) {
		return http.StatusUnprocessableEntity
	}

	var rateLimited *llm.RateLimitError
	if errors.As(err, &rateLimited) {
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}
