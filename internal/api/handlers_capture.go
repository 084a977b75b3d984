package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	notes, err := h.capture.ListNotes(q.Get("project"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.capture.CreateNote(capture.NoteInput{
		Content: req.Content,
		Project: req.Project,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.capture.GetNote(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if note == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.capture.UpdateNote(chi.URLParam(r, "id"), capture.NoteInput{
		Content: req.Content,
		Project: req.Project,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.capture.DeleteNote(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListArtifacts handles GET /artifacts.
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	artifacts, err := h.capture.ListArtifacts(q.Get("project"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []models.Artifact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

// CreateArtifact handles POST /artifacts.
func (h *Handler) CreateArtifact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	artifact, err := h.capture.CreateArtifact(capture.ArtifactInput{
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		Project:     req.Project,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artifact)
}

// UploadArtifact handles multipart POST /artifacts/upload. The file part
// becomes the artifact content; title defaults to the file name and the
// content type to the part's declared type.
func (h *Handler) UploadArtifact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	contentType := r.FormValue("content_type")
	if contentType == "" {
		contentType = header.Header.Get("Content-Type")
	}

	artifact, err := h.capture.CreateArtifact(capture.ArtifactInput{
		Title:       title,
		Content:     string(data),
		ContentType: contentType,
		Project:     r.FormValue("project"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artifact)
}

// GetArtifact handles GET /artifacts/{id}.
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.capture.GetArtifact(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if artifact == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

// DeleteArtifact handles DELETE /artifacts/{id}.
func (h *Handler) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.capture.DeleteArtifact(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
