package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader grava arquivos em disco; o diretório é servido em /uploads.
type LocalUploader struct {
	dir       string
	publicURL string
}

// NewLocalUploader cria o diretório base se necessário.
func NewLocalUploader(dir, publicURL string) (*LocalUploader, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: criar diretório: %w", err)
	}
	if strings.TrimSpace(publicURL) == "" {
		publicURL = "/uploads"
	}
	return &LocalUploader{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir devolve o diretório servido como estático.
func (u *LocalUploader) Dir() string {
	return u.dir
}

// Upload grava o corpo em dir/key e devolve a URL pública relativa.
func (u *LocalUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	key := strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+input.Key)), "/")
	if key == "" || key == "." {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}
	if len(input.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("storage: criar diretório: %w", err)
	}
	if err := os.WriteFile(target, input.Body, 0o644); err != nil {
		return nil, fmt.Errorf("storage: gravar arquivo: %w", err)
	}

	return &UploadResult{URL: u.publicURL + "/" + key}, nil
}
