package web

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"
)

// multipartMemory is how much of a form is buffered in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// FilePreview is one file's entry in a preview response.
type FilePreview struct {
	Name           string                 `json:"name"`
	Size           int64                  `json:"size"`
	SizeHuman      string                 `json:"sizeHuman"`
	Rows           int                    `json:"rows"`
	Columns        []ColumnInfo           `json:"columns,omitempty"`
	Preview        [][]string             `json:"preview,omitempty"`
	NumericColumns []string               `json:"numericColumns,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
	Error          *converter.UserMessage `json:"error,omitempty"`
}

// ColumnInfo names a column and its inferred kind.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// PreviewResponse lists files in upload order.
type PreviewResponse struct {
	Files []FilePreview `json:"files"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePreview loads every uploaded file and describes it. Each file
// succeeds or fails on its own; the request fails only if the form does.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	maxBody := s.cfg.Upload.MaxFileSize*int64(s.cfg.Upload.MaxFiles) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, r, fmt.Errorf("parse form: %w", formError(err)), formStatus(err))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, r, errors.New("no files provided"), http.StatusBadRequest)
		return
	}
	if len(headers) > s.cfg.Upload.MaxFiles {
		respondError(w, r, fmt.Errorf("too many files: %d (max %d)", len(headers), s.cfg.Upload.MaxFiles), http.StatusBadRequest)
		return
	}

	previews := make([]FilePreview, len(headers))
	var reqs []converter.Request
	var slots []int
	for i, fh := range headers {
		previews[i] = FilePreview{Name: fh.Filename, Size: fh.Size, SizeHuman: humanize.Bytes(uint64(fh.Size))}
		file, err := s.readUpload(fh)
		if err != nil {
			msg := converter.MapError(err)
			previews[i].Error = &msg
			continue
		}
		reqs = append(reqs, converter.Request{File: file})
		slots = append(slots, i)
	}

	results := converter.RunBatch(r.Context(), reqs, s.cfg.Upload.Workers)
	for j, res := range results {
		previews[slots[j]] = s.describe(res)
	}

	respondJSON(w, http.StatusOK, PreviewResponse{Files: previews})
}

func (s *Server) describe(res *converter.Result) FilePreview {
	p := FilePreview{
		Name:      res.File.Name,
		Size:      res.File.Size,
		SizeHuman: humanize.Bytes(uint64(res.File.Size)),
	}
	if res.Err != nil {
		msg := converter.MapError(res.Err)
		p.Error = &msg
		return p
	}

	t := res.Table
	p.Rows = t.NumRows()
	for _, c := range t.Columns {
		p.Columns = append(p.Columns, ColumnInfo{Name: c.Name, Kind: c.Kind.String()})
	}
	p.Preview = converter.PreviewRecords(t, s.cfg.Preview.Rows)
	p.NumericColumns = converter.NumericColumns(t)
	for _, w := range res.Warnings {
		p.Warnings = append(p.Warnings, converter.MapError(w).Message)
	}
	return p
}

// handleConvert runs one file through cleaning, projection and export and
// replies with the converted file as an attachment.
//
// Form fields: file, format (csv|xlsx), clean (repeatable), columns
// (repeatable; absent keeps all), columns_none=1 (explicitly keep none).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, r, fmt.Errorf("parse form: %w", formError(err)), formStatus(err))
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}

	format, err := types.ParseFormat(r.FormValue("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var ops []types.CleaningOperation
	for _, name := range r.MultipartForm.Value["clean"] {
		op, err := types.ParseCleaningOperation(name)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", converter.ErrUnknownOperation, err), http.StatusBadRequest)
			return
		}
		ops = append(ops, op)
	}

	columns := r.MultipartForm.Value["columns"]
	if len(columns) == 0 {
		columns = nil
		if none, _ := strconv.ParseBool(r.FormValue("columns_none")); none {
			columns = []string{}
		}
	}

	file, err := s.readUpload(headers[0])
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res := converter.Run(r.Context(), converter.Request{
		File:    file,
		Clean:   ops,
		Columns: columns,
		Format:  &format,
	})
	if res.Err != nil {
		respondError(w, r, res.Err, statusFor(res.Err))
		return
	}

	out := res.Export
	w.Header().Set("Content-Type", out.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Run-ID", res.RunID)
	if len(res.Warnings) > 0 {
		w.Header().Set("X-Sweeper-Warnings", strconv.Itoa(len(res.Warnings)))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

func (s *Server) readUpload(fh *multipart.FileHeader) (types.UploadedFile, error) {
	if ext := filepath.Ext(fh.Filename); !converter.SupportedExtension(ext) {
		return types.UploadedFile{}, &converter.UnsupportedFormatError{Ext: strings.ToLower(ext)}
	}
	if fh.Size > s.cfg.Upload.MaxFileSize {
		return types.UploadedFile{}, fmt.Errorf("%w: %s is %s (max %s)", converter.ErrFileTooLarge,
			fh.Filename, humanize.Bytes(uint64(fh.Size)), humanize.Bytes(uint64(s.cfg.Upload.MaxFileSize)))
	}
	f, err := fh.Open()
	if err != nil {
		return types.UploadedFile{}, err
	}
	defer f.Close()
	return converter.ReadUpload(fh.Filename, f, s.cfg.Upload.MaxFileSize)
}

// formError turns a body-size overrun into ErrFileTooLarge.
func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("%w: request exceeds %d bytes", converter.ErrFileTooLarge, tooBig.Limit)
	}
	return err
}

func formStatus(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
