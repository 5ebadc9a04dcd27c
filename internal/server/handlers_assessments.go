package server

import (
	"net/http"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// assessmentKind resolves the optional ?kind= query parameter.
func assessmentKind(r *http.Request) string {
	if kind := r.URL.Query().Get("kind"); kind != "" {
		return kind
	}
	return types.AssessmentKindInitial
}

// handleGetAssessment returns the current assessment job state for polling
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	a, err := s.assessor.Find(r.Context(), id, assessmentKind(r))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}
	if a == nil {
		s.errorResponse(w, http.StatusNotFound, "No assessment requested for this opportunity")
		return
	}

	s.jsonResponse(w, http.StatusOK, a)
}

// handleRequestAssessment triggers generation and returns the job row
// immediately; clients poll the GET endpoint for the terminal state.
func (s *Server) handleRequestAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	a, err := s.assessor.Request(r.Context(), id, assessmentKind(r))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, a)
}

// handleGetFit returns the stored scored assessment
func (s *Server) handleGetFit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	ja, err := s.scorer.Get(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}
	if ja == nil {
		s.errorResponse(w, http.StatusNotFound, "No fit assessment for this opportunity")
		return
	}

	s.jsonResponse(w, http.StatusOK, ja)
}

// handleGenerateFit generates the scored assessment synchronously and
// overwrites any previous one.
func (s *Server) handleGenerateFit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	ja, err := s.scorer.Assess(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ja)
}
