package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Eerick6/infanps/pkg/logger"
)

// File describes a successfully staged upload.
type File struct {
	// Path is the staged file's location on disk.
	Path string

	// OriginalName is the filename provided by the client. Never trusted as
	// a path; only its extension survives into the staged name.
	OriginalName string

	// Size is the number of bytes staged.
	Size int64

	// ContentType is the part's Content-Type header, falling back to the
	// extension-derived type.
	ContentType string
}

// Remove deletes the staged file.
func (f *File) Remove() error {
	if f == nil || f.Path == "" {
		return nil
	}
	return os.Remove(f.Path)
}

// Config holds upload handling configuration.
type Config struct {
	// Dir is the staging directory for uploaded files.
	Dir string `env:"UPLOAD_DIR" envDefault:"uploads"`

	// MaxSize is the request body ceiling in bytes.
	MaxSize int64 `env:"UPLOAD_MAX_SIZE" envDefault:"10485760"` // 10 MB

	// Field is the multipart field name carrying the file.
	Field string `env:"UPLOAD_FIELD" envDefault:"multimedia"`
}

// DefaultConfig returns default upload configuration.
func DefaultConfig() Config {
	return Config{
		Dir:     "uploads",
		MaxSize: 10 << 20,
		Field:   "multimedia",
	}
}

// Handler stages a single named multipart file field to disk. Exactly one
// Handler consumes a request's body: bodies are readable once, so the
// pipeline mounts this on a dedicated endpoint rather than as a global
// parsing stage.
type Handler struct {
	cfg Config
	log *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets a custom logger for the handler.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// New creates an upload handler and ensures the staging directory exists.
func New(cfg Config, opts ...Option) (*Handler, error) {
	if cfg.Dir == "" {
		cfg.Dir = "uploads"
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10 << 20
	}
	if cfg.Field == "" {
		cfg.Field = "multimedia"
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Join(ErrStaging, err)
	}

	h := &Handler{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Receive parses the request's multipart body and streams the configured
// file field to a uniquely named staging file. The body is wrapped in
// http.MaxBytesReader so oversized requests fail with ErrTooLarge instead of
// being silently truncated; on any failure the partial staging file is
// removed before returning.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) (*File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxSize)

	// Memory threshold below the ceiling; larger parts spill to temp files
	// managed by the multipart reader itself.
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if isBodyTooLarge(err) {
			return nil, ErrTooLarge
		}
		return nil, errors.Join(ErrMalformedBody, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	part, header, err := r.FormFile(h.cfg.Field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrNoFile
		}
		return nil, errors.Join(ErrMalformedBody, err)
	}
	defer func() { _ = part.Close() }()

	staged, err := h.stage(r.Context(), part, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return staged, nil
}

// stage copies the part to a uniquely named file in the staging directory.
// Names never collide across concurrent requests, and a canceled request
// releases its partial file.
func (h *Handler) stage(ctx context.Context, src io.Reader, originalName, contentType string) (*File, error) {
	name := uuid.New().String() + sanitizeExt(originalName)
	path := filepath.Join(h.cfg.Dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Join(ErrStaging, err)
	}

	cleanup := func() {
		_ = dst.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.log.ErrorContext(ctx, "failed to remove partial staged upload",
				slog.String("path", path),
				logger.Error(err),
				logger.Component("upload"),
			)
		}
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, errors.Join(ErrStaging, err)
	}

	size, err := io.Copy(dst, src)
	if err != nil {
		cleanup()
		if isBodyTooLarge(err) {
			return nil, ErrTooLarge
		}
		return nil, errors.Join(ErrStaging, err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return nil, errors.Join(ErrStaging, err)
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(path)
		return nil, errors.Join(ErrStaging, err)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(originalName))
	}

	return &File{
		Path:         path,
		OriginalName: originalName,
		Size:         size,
		ContentType:  contentType,
	}, nil
}

// MaxSize exposes the configured body ceiling.
func (h *Handler) MaxSize() int64 {
	return h.cfg.MaxSize
}

// sanitizeExt keeps only a plain extension from the client-supplied name.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// isBodyTooLarge detects the MaxBytesReader ceiling across Go versions and
// the multipart reader's own wrapping.
func isBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
