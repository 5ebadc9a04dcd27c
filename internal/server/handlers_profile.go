package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/opportunity-tracker/internal/profile"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// ListEntriesResponse represents the response for listing profile entries
type ListEntriesResponse struct {
	Entries []types.ProfileEntry `json:"entries"`
	Count   int                  `json:"count"`
	Version int                  `json:"version"`
}

// GenerateProfileRequest represents the request body for profile generation
type GenerateProfileRequest struct {
	Links       []string `json:"links"`
	Description string   `json:"description"`
}

// GenerateProfileResponse reports the outcome of a regeneration attempt
type GenerateProfileResponse struct {
	Entries []types.ProfileEntry `json:"entries"`
	Message string               `json:"message,omitempty"`
}

// handleListProfileEntries returns the current profile entries
func (s *Server) handleListProfileEntries(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetOrCreateDefaultProfile(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListEntriesResponse{
		Entries: p.Entries,
		Count:   len(p.Entries),
		Version: p.Version,
	})
}

// handleCreateProfileEntry appends one entry to the profile
func (s *Server) handleCreateProfileEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.decodeEntry(w, r)
	if !ok {
		return
	}

	created, err := s.store.CreateProfileEntry(r.Context(), *entry)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleUpdateProfileEntry replaces the entry with the given id
func (s *Server) handleUpdateProfileEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Entry ID is required")
		return
	}

	entry, ok := s.decodeEntry(w, r)
	if !ok {
		return
	}

	updated, err := s.store.UpdateProfileEntry(r.Context(), id, *entry)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteProfileEntry removes the entry with the given id
func (s *Server) handleDeleteProfileEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Entry ID is required")
		return
	}

	if err := s.store.DeleteProfileEntry(r.Context(), id); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllProfileEntries clears the whole entry collection.
func (s *Server) handleDeleteAllProfileEntries(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAllProfileEntries(r.Context()); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateProfile rebuilds the entire profile from links, uploaded
// files, and an optional free-text description. An outcome with no entries
// leaves the stored profile untouched. Accepts either a JSON body or a
// multipart form with file uploads.
func (s *Server) handleGenerateProfile(w http.ResponseWriter, r *http.Request) {
	var links []string
	var files []profile.FileInput
	var description string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var ok bool
		links, files, description, ok = s.parseGenerateForm(w, r)
		if !ok {
			return
		}
	} else {
		var req GenerateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		links = req.Links
		description = req.Description
	}

	if len(links) == 0 && len(files) == 0 && description == "" {
		s.errorResponse(w, http.StatusBadRequest, "At least one link, file, or description is required")
		return
	}

	sources := profile.CollectSources(r.Context(), profile.FetchFunc(s.fetchFn), s.logger, links, files, description)
	if len(sources) == 0 {
		s.errorResponse(w, http.StatusBadGateway, "No readable content collected from the provided sources")
		return
	}

	outcome, err := s.regenerate(r.Context(), s.client, s.store, s.logger, sources)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, GenerateProfileResponse{
		Entries: outcome.Entries,
		Message: outcome.Message,
	})
}

// maxUploadBytes bounds the total multipart form size for profile uploads.
const maxUploadBytes = 20 << 20

// parseGenerateForm reads links, files, and a description from a multipart
// form. Links arrive as a comma-separated form field.
func (s *Server) parseGenerateForm(w http.ResponseWriter, r *http.Request) ([]string, []profile.FileInput, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return nil, nil, "", false
	}

	var links []string
	for _, link := range strings.Split(r.FormValue("links"), ",") {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}

	var files []profile.FileInput
	if r.MultipartForm != nil {
		for _, headers := range r.MultipartForm.File {
			for _, header := range headers {
				f, err := header.Open()
				if err != nil {
					s.errorResponse(w, http.StatusBadRequest, "Failed to read upload "+header.Filename)
					return nil, nil, "", false
				}
				data, err := io.ReadAll(f)
				_ = f.Close()
				if err != nil {
					s.errorResponse(w, http.StatusBadRequest, "Failed to read upload "+header.Filename)
					return nil, nil, "", false
				}
				files = append(files, profile.FileInput{Name: header.Filename, Data: data})
			}
		}
	}

	return links, files, r.FormValue("description"), true
}

// decodeEntry reads and validates a profile entry body.
func (s *Server) decodeEntry(w http.ResponseWriter, r *http.Request) (*types.ProfileEntry, bool) {
	var entry types.ProfileEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if err := profile.ValidateEntry(&entry); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid entry: "+err.Error())
		return nil, false
	}
	return &entry, true
}
