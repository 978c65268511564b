package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"Helpdesk/internal/domain"
)

type scrapeRequest struct {
	URL   string `json:"url"`
	Crawl bool   `json:"crawl"`
}

type scrapeResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Pages   []string `json:"pages"`
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req scrapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	result, err := s.knowledge.Scrape(r.Context(), req.URL, req.Crawl)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{Success: true, Count: result.Count, Pages: result.Pages})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeFailure(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	doc, err := s.knowledge.UploadPDF(r.Context(), header.Filename, data)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Filename: doc.Filename})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	docs, err := s.knowledge.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.knowledge.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	status, err := s.knowledge.APIKeyStatus(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req apiKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.knowledge.SetAPIKey(r.Context(), req.APIKey); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
