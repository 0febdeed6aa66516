package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	contextID, ok := requireContextID(w, r)
	if !ok {
		return
	}
	e, err := s.finance.Export.Export(r.Context(), contextID)
	if err != nil {
		s.writeError(w, r, err, log.OpExport, contextText.notFound, "Failed to export data")
		return
	}
	NewJSONResponse().JSON(e).Write(w)
}

// handleExportXLSX renders the same dump as handleExport as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	contextID, ok := requireContextID(w, r)
	if !ok {
		return
	}
	e, err := s.finance.Export.Export(r.Context(), contextID)
	if err != nil {
		s.writeError(w, r, err, log.OpExport, contextText.notFound, "Failed to export data")
		return
	}

	// Rendered to memory first so a failure can still become a JSON 500.
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, e); err != nil {
		s.writeError(w, r, err, log.OpExport, contextText.notFound, "Failed to export data")
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(e)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type importRequest struct {
	ContextID int64            `json:"context_id"`
	Data      *json.RawMessage `json:"data"`
}

type importResponse struct {
	Message string             `json:"message"`
	Results core.ImportResults `json:"results"`
}

// handleImport inserts a previous export into an existing context. Bad rows
// are skipped and reported; the request itself still succeeds.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := DecodeJSON(w, r, maxImportBytes, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.ContextID <= 0 || req.Data == nil || string(*req.Data) == "null" {
		BadRequestError("context_id and data are required").Write(w)
		return
	}
	// Rows stay undecoded here so one bad row does not sink the others.
	var bundle core.RawExportBundle
	if err := json.Unmarshal(*req.Data, &bundle); err != nil {
		BadRequestError("data is not a valid export: " + err.Error()).Write(w)
		return
	}

	results, err := s.finance.Export.ImportRaw(r.Context(), req.ContextID, bundle)
	if err != nil {
		s.writeError(w, r, err, log.OpImport, contextText.notFound, "Failed to import data")
		return
	}
	NewJSONResponse().JSON(importResponse{Message: "Import completed", Results: results}).Write(w)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.finance.Export.Backup(r.Context())
	if err != nil {
		s.writeError(w, r, err, log.OpBackup, "Backup not found", "Failed to create backup")
		return
	}
	NewJSONResponse().JSON(b).Write(w)
}
