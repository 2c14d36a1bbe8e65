package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gotranscribe/internal/api"
	"gotranscribe/internal/config"
	"gotranscribe/internal/history"
	"gotranscribe/internal/logging"
	"gotranscribe/internal/pipeline"
	"gotranscribe/internal/services"
	"gotranscribe/internal/upload"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	// multipartOverhead is the slack allowed above upload.max_bytes for form
	// boundaries and small fields.
	multipartOverhead = 1 << 20
)

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	guard    upload.Guard
	workDir  string
	maxBytes int64

	handler http.Handler
	server  *http.Server

	mu       sync.Mutex
	listener net.Listener
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:     strings.TrimSpace(cfg.Paths.APIBind),
		logger:   logging.NewComponentLogger(logger, "api-server"),
		daemon:   d,
		guard:    d.pipeline.Guard(),
		workDir:  cfg.Paths.WorkDir,
		maxBytes: cfg.Upload.MaxBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("POST /api/transcriptions", srv.handleCreate)
	mux.HandleFunc("GET /api/transcriptions", srv.handleList)
	mux.HandleFunc("GET /api/transcriptions/{id}", srv.handleGet)
	mux.HandleFunc("DELETE /api/transcriptions/{id}", srv.handleDelete)
	mux.HandleFunc("GET /api/transcriptions/{id}/{format}", srv.handleDownload)

	srv.handler = requestIDMiddleware(authMiddleware(strings.TrimSpace(cfg.Paths.APIToken), mux))

	// Uploads and every speech-to-text attempt run inside one request.
	attempts := time.Duration(max(1, cfg.Transcription.RetryAttempts))
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      attempts*cfg.RequestTimeout() + 2*time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("paths.api_bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		Address:       status.Address,
		HistoryDBPath: status.HistoryDBPath,
		LockFilePath:  status.LockFilePath,
		ActiveJobs:    status.ActiveJobs,
		Codec:         status.Codec,
		Counts:        api.CountsByStatus(status.Counts),
		Dependencies:  api.FromDependencies(status.Dependencies),
	})
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxListLimit)
	}
	jobs, err := s.daemon.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.TranscriptionListResponse{Items: api.FromJobs(jobs)})
}

func (s *apiServer) handleGet(w http.ResponseWriter, r *http.Request) {
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, api.TranscriptionResponse{Item: api.FromJob(job, false)})
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}
	if job.Status == history.StatusProcessing {
		s.writeError(w, http.StatusConflict, "transcription is still processing")
		return
	}
	if _, err := s.daemon.store.Remove(r.Context(), job.ID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.PathValue("format")))
	contentType, ok := downloadContentTypes[format]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown format")
		return
	}
	job, ok := s.resolveJob(w, r)
	if !ok {
		return
	}
	if job.Status != history.StatusCompleted {
		s.writeJSON(w, http.StatusConflict, api.ErrorResponse{Error: "transcription is " + string(job.Status), JobID: job.ID})
		return
	}
	body, err := pipeline.Render(s.daemon.pipeline.Formatter(), format, job.Text, job.Result())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "transcript." + format}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

var downloadContentTypes = map[string]string{
	pipeline.FormatTXT:  "text/plain; charset=utf-8",
	pipeline.FormatSRT:  "application/x-subrip; charset=utf-8",
	pipeline.FormatVTT:  "text/vtt; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *apiServer) resolveJob(w http.ResponseWriter, r *http.Request) (*history.Job, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		s.writeError(w, http.StatusNotFound, "transcription not found")
		return nil, false
	}
	job, err := s.daemon.store.Resolve(r.Context(), id)
	switch {
	case errors.Is(err, history.ErrAmbiguousID):
		s.writeError(w, http.StatusConflict, err.Error())
		return nil, false
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	case job == nil:
		s.writeError(w, http.StatusNotFound, "transcription not found")
		return nil, false
	}
	return job, true
}

// handleCreate accepts a multipart upload with a "file" part and an optional
// "language" field, then runs the pipeline synchronously.
func (s *apiServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx, s.logger)

	if s.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)
	}
	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart/form-data upload")
		return
	}

	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		s.writeError(w, http.StatusInternalServerError, "create work dir: "+err.Error())
		return
	}
	uploadDir, err := os.MkdirTemp(s.workDir, "upload-")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "create upload dir: "+err.Error())
		return
	}
	defer os.RemoveAll(uploadDir)

	var (
		mediaPath string
		mediaName string
		language  string
	)
	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			s.writeUploadError(w, err)
			return
		}
		switch part.FormName() {
		case "file":
			mediaName = filepath.Base(strings.TrimSpace(part.FileName()))
			if mediaName == "" || mediaName == "." || mediaName == "/" {
				_ = part.Close()
				s.writeError(w, http.StatusBadRequest, "file part requires a filename")
				return
			}
			mediaPath = filepath.Join(uploadDir, "media"+strings.ToLower(filepath.Ext(mediaName)))
			if err := s.saveUpload(mediaPath, part, mediaName); err != nil {
				_ = part.Close()
				s.writeUploadError(w, err)
				return
			}
		case "language":
			value, err := io.ReadAll(io.LimitReader(part, 64))
			if err != nil {
				_ = part.Close()
				s.writeUploadError(w, err)
				return
			}
			language = strings.TrimSpace(string(value))
		}
		_ = part.Close()
	}
	if mediaPath == "" {
		s.writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	if language != "" {
		normalized, err := config.NormalizeLanguage(language)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		language = normalized
	}

	s.daemon.active.Add(1)
	defer s.daemon.active.Add(-1)

	logger.Info("upload received", logging.String("source", mediaName))
	out, err := s.daemon.pipeline.Run(ctx, mediaPath, pipeline.Options{
		Name:     mediaName,
		NoOutput: true,
		Language: language,
	})
	if err != nil {
		resp := api.ErrorResponse{Error: err.Error(), Kind: errorKind(err)}
		if out != nil && out.Job != nil {
			resp.JobID = out.Job.ID
		}
		s.writeJSON(w, statusForError(err), resp)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.TranscriptionResponse{Item: api.FromJob(out.Job, false)})
}

func (s *apiServer) saveUpload(path string, src io.Reader, name string) error {
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := s.guard.Copy(dst, src, name); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (s *apiServer) writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds "+upload.FormatLimit(s.maxBytes)+" limit")
		return
	}
	s.writeJSON(w, statusForError(err), api.ErrorResponse{Error: err.Error(), Kind: errorKind(err)})
}

func errorKind(err error) string {
	if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrEmpty) {
		return "validation"
	}
	return services.Kind(err)
}

// statusForError maps pipeline and upload errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, upload.ErrEmpty), errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrTransient):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
