package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"portfolio-rag/internal/helper"
	"portfolio-rag/internal/models"

	"github.com/rs/zerolog/log"
)

const maxMessageLength = 2000

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req, 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("message exceeds maximum length of %d characters", maxMessageLength))
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	result := s.chat.Chat(r.Context(), req.Message, req.SessionID)
	if result.Mode == models.ModeError {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

var pdfHeader = []byte("%PDF")

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Server.MaxUploadSize
	// some slack for multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}
	if header.Size > maxSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file size exceeds maximum allowed size of %d bytes", maxSize))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(content)) > maxSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file size exceeds maximum allowed size of %d bytes", maxSize))
		return
	}
	if len(content) < len(pdfHeader) || !bytes.Equal(content[:len(pdfHeader)], pdfHeader) {
		writeError(w, http.StatusBadRequest, "file is not a valid PDF")
		return
	}

	filePath, err := s.saveUpload(content, header.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("saving upload")
		writeError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	result := s.ingestor.IngestFile(r.Context(), filePath, map[string]string{"source": filepath.Base(header.Filename)})
	writeJSON(w, http.StatusOK, result)
}

// saveUpload writes the file into the upload directory. Uploads are retained
// after ingestion.
func (s *Server) saveUpload(content []byte, filename string) (string, error) {
	if err := helper.CreateFolder(s.cfg.Server.UploadDir); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.cfg.Server.UploadDir, filepath.Base(filename))
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

type ingestDirectoryRequest struct {
	Directory string `json:"directory"`
}

func (s *Server) handleIngestDirectory(w http.ResponseWriter, r *http.Request) {
	var req ingestDirectoryRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req, 1<<20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}
	if req.Directory == "" {
		req.Directory = s.cfg.Server.DocumentsDir
	}

	result := s.ingestor.IngestDirectory(r.Context(), req.Directory)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.chat.Stats(r.Context())

	status := "healthy"
	if stats.Status != "healthy" {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"services": map[string]any{
			"vector_store":    stats.Status,
			"document_count":  stats.DocumentCount,
			"embedding_model": stats.EmbeddingModel,
			"llm":             "connected",
			"llm_base_url":    s.cfg.LLM.BaseURL,
		},
		"version": apiVersion,
	})
}
