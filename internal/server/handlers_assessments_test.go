package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

func TestHandleGetAssessment(t *testing.T) {
	s := newTestServer()
	summary := "promising role"
	s.assessor.assessments[1] = &types.Assessment{
		ID: 1, OpportunityID: 1, Kind: types.AssessmentKindInitial,
		Status: types.AssessmentSucceeded, Summary: &summary,
	}

	req := httptest.NewRequest(http.MethodGet, "/opportunities/1/assessment", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleGetAssessment(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var a types.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, types.AssessmentSucceeded, a.Status)
	assert.Equal(t, "promising role", *a.Summary)
}

func TestHandleGetAssessment_NoneRequested(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/opportunities/1/assessment", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleGetAssessment(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRequestAssessment(t *testing.T) {
	s := newTestServer()
	s.store.opportunities[1] = &types.Opportunity{ID: 1, Title: "Engineer", Company: "Acme"}

	req := httptest.NewRequest(http.MethodPost, "/opportunities/1/assessment", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleRequestAssessment(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var a types.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, types.AssessmentPending, a.Status)
	assert.Equal(t, []int64{1}, s.assessor.requests)
}

func TestHandleRequestAssessment_CustomKind(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/opportunities/1/assessment?kind=followup", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleRequestAssessment(w, req)

	var a types.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "followup", a.Kind)
}

func TestHandleGetFit_NotGenerated(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/opportunities/1/fit", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleGetFit(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGenerateFit(t *testing.T) {
	s := newTestServer()
	s.store.opportunities[1] = &types.Opportunity{ID: 1, Title: "Engineer", Company: "Acme"}

	req := httptest.NewRequest(http.MethodPost, "/opportunities/1/fit", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	s.handleGenerateFit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ja types.JobAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ja))
	assert.Equal(t, 5, ja.FitScore)

	// The stored row is now readable.
	req = httptest.NewRequest(http.MethodGet, "/opportunities/1/fit", nil)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	s.handleGetFit(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
