package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/participadf/ouvidoria/internal/manifestacao"
)

func TestNewKeyUsesContentTypeExtension(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	key := NewKey("image/jpeg", now)
	assert.Regexp(t, regexp.MustCompile(`^anexos/2026/03/[0-9a-f-]{36}\.jpg$`), key)

	key = NewKey("Audio/MPEG", now)
	assert.Regexp(t, regexp.MustCompile(`^anexos/2026/03/[0-9a-f-]{36}\.mp3$`), key)

	for _, contentType := range []string{"text/html", "image/svg+xml", "image/x-desconhecido", ""} {
		key = NewKey(contentType, now)
		assert.Regexp(t, regexp.MustCompile(`^anexos/2026/03/[0-9a-f-]{36}$`), key, contentType)
	}
}

func TestExtensionsAgreeWithAnexoClassification(t *testing.T) {
	for contentType, ext := range mediaExtensions {
		want := manifestacao.ClassifyMime(contentType)
		if contentType == "audio/webm" {
			// webm é sempre classificado como vídeo pela URL.
			want = manifestacao.AnexoVideo
		}
		assert.Equal(t, want, manifestacao.ClassifyAnexo("/uploads/anexos/2026/03/a"+ext), contentType)
	}
}

func TestLocalUploaderWritesFile(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "")
	require.NoError(t, err)

	res, err := u.Upload(context.Background(), UploadInput{Key: "anexos/2026/01/a.png", Body: []byte("png")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/anexos/2026/01/a.png", res.URL)

	data, err := os.ReadFile(filepath.Join(dir, "anexos", "2026", "01", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLocalUploaderStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(filepath.Join(dir, "base"), "https://cdn.example.com/")
	require.NoError(t, err)

	res, err := u.Upload(context.Background(), UploadInput{Key: "../../fora.txt", Body: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/fora.txt", res.URL)

	_, err = os.Stat(filepath.Join(dir, "base", "fora.txt"))
	assert.NoError(t, err)
}

func TestLocalUploaderRejectsEmpty(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), UploadInput{Key: "a.png"})
	assert.Error(t, err)
	_, err = u.Upload(context.Background(), UploadInput{Body: []byte("x")})
	assert.Error(t, err)
}

func TestNoopUploader(t *testing.T) {
	_, err := NoopUploader{}.Upload(context.Background(), UploadInput{Key: "a", Body: []byte("a")})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "ftp"})
	assert.EqualError(t, err, "storage: provedor ftp não suportado")
}

func TestS3ConfigValidate(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Endpoint: "minio:9000", Region: "auto", Bucket: "b", AccessKey: "k", SecretKey: "s"})
	assert.EqualError(t, err, "storage: endpoint deve incluir protocolo http/https")

	_, err = NewS3Uploader(context.Background(), S3Config{Endpoint: "http://minio:9000", Region: "auto", AccessKey: "k", SecretKey: "s"})
	assert.EqualError(t, err, "storage: STORAGE_S3_BUCKET ausente")
}

func TestS3UploaderPutsObject(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := NewS3Uploader(context.Background(), S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "ouvidoria",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)

	res, err := u.Upload(context.Background(), UploadInput{Key: "anexos/2026/01/a.mp3", Body: []byte("audio"), ContentType: "audio/mpeg"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/ouvidoria/anexos/2026/01/a.mp3", gotPath)
	assert.Equal(t, "audio/mpeg", gotType)
	assert.True(t, strings.Contains(gotBody, "audio"))
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, srv.URL+"/ouvidoria/anexos/2026/01/a.mp3", res.URL)
}
