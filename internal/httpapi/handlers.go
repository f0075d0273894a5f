package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/domain"
	"github.com/hamed0406/linkcheck/internal/sheet"
)

// requestError is an intake problem reported to the caller as-is.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

var (
	errNoFile       = badRequest("Dosya yüklenmedi")
	errNotXLSX      = badRequest("Sadece Excel (.xlsx) dosyaları desteklenir")
	errTooLarge     = &requestError{status: http.StatusRequestEntityTooLarge, msg: "Dosya çok büyük"}
	errBadExportReq = badRequest("Geçersiz dışa aktarma isteği")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseForm reads a multipart or urlencoded body within the upload cap.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	err := r.ParseMultipartForm(s.opts.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errTooLarge
	}
	if err != nil {
		return badRequest("Form okunamadı: " + err.Error())
	}
	return nil
}

// uploadedFile returns the reader for an .xlsx upload in field "file".
// ok is false when the request carries no file.
func uploadedFile(r *http.Request) (f multipart.File, ok bool, err error) {
	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, badRequest("Dosya okunamadı: " + err.Error())
	}
	if !strings.HasSuffix(strings.ToLower(hdr.Filename), ".xlsx") {
		file.Close()
		return nil, true, errNotXLSX
	}
	return file, true, nil
}

// intakeURLs builds the URL list from an uploaded workbook or the "urls"
// form field, one URL per line.
func (s *Server) intakeURLs(w http.ResponseWriter, r *http.Request) ([]string, error) {
	if err := s.parseForm(w, r); err != nil {
		return nil, err
	}
	file, ok, err := uploadedFile(r)
	if err != nil {
		return nil, err
	}
	if ok {
		defer file.Close()
		urls, err := sheet.ReadURLs(file)
		if err != nil {
			return nil, badRequest("Excel okuma hatası: " + err.Error())
		}
		return urls, nil
	}
	return splitLines(r.FormValue("urls")), nil
}

func splitLines(blob string) []string {
	urls := []string{}
	for _, line := range strings.Split(blob, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (s *Server) handleCheckURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := s.intakeURLs(w, r)
	if err != nil {
		s.writeRequestError(w, "check_urls_rejected", err)
		return
	}

	results, err := s.Runner.Run(r.Context(), urls)
	if err != nil {
		s.Logger.Error("batch_failed", zap.Int("urls", len(urls)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleReadExcel(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeRequestError(w, "read_excel_rejected", err)
		return
	}
	file, ok, err := uploadedFile(r)
	if err != nil {
		s.writeRequestError(w, "read_excel_rejected", err)
		return
	}
	if !ok {
		s.writeRequestError(w, "read_excel_rejected", errNoFile)
		return
	}
	defer file.Close()

	table, err := sheet.ReadTable(file)
	if err != nil {
		s.writeRequestError(w, "read_excel_rejected", badRequest("Excel okuma hatası: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	var req domain.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeRequestError(w, "export_rejected", errBadExportReq)
		return
	}

	var buf bytes.Buffer
	if err := sheet.Export(&buf, req.Headers, req.Rows); err != nil {
		s.Logger.Error("export_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": sheet.ExportFilename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeRequestError(w http.ResponseWriter, event string, err error) {
	var re *requestError
	if !errors.As(err, &re) {
		re = &requestError{status: http.StatusInternalServerError, msg: err.Error()}
	}
	s.Logger.Info(event, zap.Int("status", re.status), zap.String("reason", re.msg))
	writeError(w, re.status, re.msg)
}
