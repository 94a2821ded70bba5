package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/participadf/ouvidoria/internal/manifestacao"
	"github.com/participadf/ouvidoria/internal/storage"
)

const uploadField = "file"

// Upload recebe um arquivo de mídia e devolve a URL pública e o tipo do anexo.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Storage.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", "arquivo excede o tamanho máximo", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nenhum arquivo enviado", nil)
		return
	}
	defer file.Close()
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if header.Size > maxBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", "arquivo excede o tamanho máximo", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "falha ao ler arquivo", nil)
		return
	}
	if int64(len(body)) > maxBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", "arquivo excede o tamanho máximo", nil)
		return
	}
	if len(body) == 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "arquivo vazio", nil)
		return
	}

	contentType, ok := uploadContentType(header.Header.Get("Content-Type"), body)
	if !ok || !isMediaType(contentType) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "tipo de arquivo não permitido", map[string]string{"contentType": contentType})
		return
	}

	result, err := h.storage.Upload(r.Context(), storage.UploadInput{
		Key:          storage.NewKey(contentType, time.Now()),
		Body:         body,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info().Str("url", result.URL).Int("bytes", len(body)).Str("content_type", contentType).Msg("anexo enviado")

	WriteJSON(w, http.StatusCreated, map[string]string{
		"url":  result.URL,
		"tipo": manifestacao.ClassifyMime(contentType),
	})
}

// uploadContentType cruza o tipo declarado com o conteúdo. Quando o sniffing
// reconhece o arquivo, a categoria (imagem ou áudio/vídeo) precisa coincidir.
func uploadContentType(declared string, body []byte) (string, bool) {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	sniffed = strings.ToLower(sniffed)

	mediaType, _, err := mime.ParseMediaType(declared)
	mediaType = strings.ToLower(mediaType)
	if err != nil || mediaType == "application/octet-stream" {
		return sniffed, true
	}

	if sniffed == "application/octet-stream" {
		return mediaType, true
	}
	return mediaType, mediaFamily(sniffed) != "" && mediaFamily(sniffed) == mediaFamily(mediaType)
}

// mediaFamily agrupa áudio e vídeo porque contêineres como webm, mp4 e ogg
// servem aos dois.
func mediaFamily(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "av"
	default:
		return ""
	}
}

func isMediaType(contentType string) bool {
	if contentType == "image/svg+xml" {
		return false
	}
	return mediaFamily(contentType) != ""
}

// serveUploads expõe os anexos gravados em disco sem permitir que o navegador
// reinterprete o conteúdo como documento ativo.
func serveUploads(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		files.ServeHTTP(w, r)
	})
}
