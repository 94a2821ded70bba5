package storage

import (
	"context"
	"errors"
)

// ErrDisabled indica que o recebimento de anexos foi desligado (STORAGE_PROVIDER=noop).
var ErrDisabled = errors.New("storage: recebimento de anexos desativado")

// NoopUploader recusa todo upload com ErrDisabled.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, UploadInput) (*UploadResult, error) {
	return nil, ErrDisabled
}
