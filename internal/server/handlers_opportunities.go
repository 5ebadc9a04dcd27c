package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// ListOpportunitiesResponse represents the response for listing opportunities
type ListOpportunitiesResponse struct {
	Opportunities []*types.Opportunity `json:"opportunities"`
	Count         int                  `json:"count"`
}

// FromLinkRequest represents the request body for link-based ingestion
type FromLinkRequest struct {
	Link string `json:"link"`
	Save bool   `json:"save"`
}

// handleCreateOpportunity creates an opportunity and triggers its initial
// assessment in the background. The trigger never fails the request.
func (s *Server) handleCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var input types.OpportunityCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := input.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	opp, err := s.store.CreateOpportunity(r.Context(), &input)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}

	if _, err := s.assessor.Request(r.Context(), opp.ID, types.AssessmentKindInitial); err != nil {
		// The opportunity is already stored; assessment can be re-triggered.
		s.logger.Warn("failed to trigger assessment",
			zap.Int64("opportunity_id", opp.ID), zap.Error(err))
	}

	s.jsonResponse(w, http.StatusCreated, opp)
}

// handleCreateOpportunityFromLink fetches a posting URL, extracts structured
// fields, and optionally saves the result.
func (s *Server) handleCreateOpportunityFromLink(w http.ResponseWriter, r *http.Request) {
	var req FromLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Link == "" {
		s.errorResponse(w, http.StatusBadRequest, "link is required")
		return
	}

	parsed, err := s.parseLink(r.Context(), s.client, s.fetchFn, req.Link)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Failed to parse opportunity: "+err.Error())
		return
	}

	if !req.Save {
		s.jsonResponse(w, http.StatusOK, parsed)
		return
	}

	opp, err := s.store.CreateOpportunity(r.Context(), parsed)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}

	if _, err := s.assessor.Request(r.Context(), opp.ID, types.AssessmentKindInitial); err != nil {
		s.logger.Warn("failed to trigger assessment",
			zap.Int64("opportunity_id", opp.ID), zap.Error(err))
	}

	s.jsonResponse(w, http.StatusCreated, opp)
}

// handleListOpportunities lists all opportunities, newest first
func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := s.store.ListOpportunities(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}
	if opportunities == nil {
		opportunities = []*types.Opportunity{}
	}

	s.jsonResponse(w, http.StatusOK, ListOpportunitiesResponse{
		Opportunities: opportunities,
		Count:         len(opportunities),
	})
}

// handleGetOpportunity retrieves an opportunity by its ID
func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	opp, err := s.store.GetOpportunityByID(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}
	if opp == nil {
		s.errorResponse(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, opp)
}

// handleUpdateOpportunityStatus moves an opportunity through the workflow
func (s *Server) handleUpdateOpportunityStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !types.ValidStatus(req.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	opp, err := s.store.UpdateOpportunityStatus(r.Context(), id, req.Status)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, opp)
}

// handleDeleteOpportunity removes an opportunity and its assessments
func (s *Server) handleDeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.opportunityID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteOpportunity(r.Context(), id); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// opportunityID parses the {id} path value, writing a 400 on failure.
func (s *Server) opportunityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid opportunity ID")
		return 0, false
	}
	return id, true
}
