package web

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartOverhead leaves room for form boundaries and headers on top of
// the file size limit.
const multipartOverhead = 1 << 20

var errNoFile = errors.New("no file provided")

// campaignIDParam parses the {campaignID} route parameter. An id that is not
// a UUID cannot name a campaign, so it is reported as not found.
func campaignIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "campaignID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", core.ErrCampaignNotFound, raw)
	}
	return id, nil
}

// uploadedFile returns the multipart "file" part of r.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return nil, nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	return file, header, nil
}

// respondUploadError picks the status for upload failures; a missing file
// part is a client error.
func (s *Server) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if errors.Is(err, errNoFile) {
		status = http.StatusBadRequest
	}
	s.respondError(w, r, err, status)
}

// handleProcess transforms an uploaded CSV and returns it as a download.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondUploadError(w, r, err)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ProcessFile(ctx, id, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.OutputName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Rows-Processed", strconv.Itoa(res.Stats.Rows))
	w.Header().Set("X-Rules-Skipped", strconv.Itoa(res.Stats.RulesSkipped))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// handlePreview transforms an uploaded CSV and returns the first rows as JSON.
// An optional "limit" query or form value bounds the rows returned.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondUploadError(w, r, err)
		return
	}
	defer file.Close()

	limit := 0
	if raw := r.FormValue("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.respondError(w, r, fmt.Errorf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Preview(ctx, id, header.Filename, file, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}
