package upload_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eerick6/infanps/pkg/upload"
)

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func newHandler(t *testing.T, maxSize int64) (*upload.Handler, string) {
	t.Helper()

	dir := t.TempDir()
	h, err := upload.New(upload.Config{Dir: dir, MaxSize: maxSize, Field: "multimedia"})
	require.NoError(t, err)
	return h, dir
}

func stagedFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestHandler_ReceiveStagesFile(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	body, contentType := multipartBody(t, "multimedia", "foto.PNG", []byte("png-bytes"))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)

	f, err := h.Receive(httptest.NewRecorder(), r)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Remove() })

	assert.Equal(t, "foto.PNG", f.OriginalName)
	assert.Equal(t, int64(len("png-bytes")), f.Size)

	// Staged under a generated name, never the client's.
	entries := stagedFiles(t, dir)
	require.Len(t, entries, 1)
	assert.NotEqual(t, "foto.PNG", entries[0].Name())
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestHandler_ReceiveRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 256)

	body, contentType := multipartBody(t, "multimedia", "grande.bin", bytes.Repeat([]byte("x"), 4096))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)

	_, err := h.Receive(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, upload.ErrTooLarge)

	// Nothing may be left behind in the staging directory.
	assert.Empty(t, stagedFiles(t, dir))
}

func TestHandler_ReceiveCanceledRequestLeavesNoPartialFile(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	body, contentType := multipartBody(t, "multimedia", "abandonado.png", []byte("png-bytes"))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r = r.WithContext(ctx)

	_, err := h.Receive(httptest.NewRecorder(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, upload.ErrStaging)
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned staging file must already be gone.
	assert.Empty(t, stagedFiles(t, dir))
}

func TestHandler_ReceiveMissingField(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	body, contentType := multipartBody(t, "otro_campo", "foto.png", []byte("png-bytes"))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)

	_, err := h.Receive(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, upload.ErrNoFile)
	assert.Empty(t, stagedFiles(t, dir))
}

func TestHandler_ReceiveMalformedBody(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("no es multipart"))
	r.Header.Set("Content-Type", "text/plain")

	_, err := h.Receive(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, upload.ErrMalformedBody)
	assert.Empty(t, stagedFiles(t, dir))
}

func TestHandler_ConcurrentUploadsNeverCollide(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	const n = 8
	requests := make([]*http.Request, n)
	for i := range requests {
		body, contentType := multipartBody(t, "multimedia", "mismo.png", []byte("contenido"))
		r := httptest.NewRequest(http.MethodPost, "/upload", body)
		r.Header.Set("Content-Type", contentType)
		requests[i] = r
	}

	done := make(chan error, n)
	for _, r := range requests {
		go func(r *http.Request) {
			_, err := h.Receive(httptest.NewRecorder(), r)
			done <- err
		}(r)
	}

	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	assert.Len(t, stagedFiles(t, dir), n)
}

func TestSanitizeExtViaStagedName(t *testing.T) {
	t.Parallel()

	h, dir := newHandler(t, 1<<20)

	// A hostile extension is dropped rather than escaping into the path.
	body, contentType := multipartBody(t, "multimedia", "mal../../etc/passwd", []byte("x"))
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", contentType)

	f, err := h.Receive(httptest.NewRecorder(), r)
	require.NoError(t, err)

	entries := stagedFiles(t, dir)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
	assert.NotContains(t, entries[0].Name(), "..")
	assert.Equal(t, dir, strings.TrimSuffix(f.Path, "/"+entries[0].Name()))
}
