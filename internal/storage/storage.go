package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader define comportamento básico para armazenar blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// Config seleciona e parametriza o backend.
type Config struct {
	Provider    string
	LocalDir    string
	PublicURL   string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// New monta o uploader do provedor configurado.
func New(ctx context.Context, cfg Config) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "local":
		return NewLocalUploader(cfg.LocalDir, cfg.PublicURL)
	case "noop":
		return NoopUploader{}, nil
	case "s3", "r2", "minio":
		return NewS3Uploader(ctx, S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			PublicDomain: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Provider)
	}
}

// mediaExtensions mapeia os tipos aceitos para a extensão gravada na chave.
// A tabela usa apenas extensões que a classificação de anexos por URL
// reconhece; tipos fora dela ficam sem extensão.
var mediaExtensions = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/bmp":        ".bmp",
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/x-msvideo":  ".avi",
	"video/quicktime":  ".mov",
	"video/x-matroska": ".mkv",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
	"audio/wave":       ".wav",
	"audio/x-wav":      ".wav",
	"audio/ogg":        ".ogg",
	"audio/mp4":        ".m4a",
	"audio/x-m4a":      ".m4a",
	"audio/webm":       ".webm",
}

// ExtensionFor devolve a extensão associada ao content type já validado.
func ExtensionFor(contentType string) string {
	return mediaExtensions[strings.ToLower(strings.TrimSpace(contentType))]
}

// NewKey gera chave única cuja extensão vem do content type, nunca do nome enviado.
func NewKey(contentType string, now time.Time) string {
	return fmt.Sprintf("anexos/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ExtensionFor(contentType))
}
