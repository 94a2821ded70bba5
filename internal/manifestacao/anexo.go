package manifestacao

import "strings"

var (
	imageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}
	videoExtensions = []string{"mp4", "webm", "avi", "mov", "mkv"}
	audioExtensions = []string{"mp3", "wav", "ogg", "webm", "m4a"}
)

// ClassifyAnexo deduz o tipo de mídia a partir da URL do arquivo.
// A ordem imagem, vídeo, áudio decide extensões ambíguas: webm é VIDEO.
func ClassifyAnexo(url string) string {
	ext := ""
	if idx := strings.LastIndex(url, "."); idx >= 0 {
		ext = strings.ToLower(url[idx+1:])
	}

	switch {
	case contains(imageExtensions, ext):
		return AnexoImagem
	case contains(videoExtensions, ext):
		return AnexoVideo
	case contains(audioExtensions, ext):
		return AnexoAudio
	case strings.Contains(url, "audio"):
		return AnexoAudio
	case strings.Contains(url, "video"):
		return AnexoVideo
	default:
		return AnexoImagem
	}
}

// ClassifyMime classifica um upload pelo content type informado.
func ClassifyMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "video/"):
		return AnexoVideo
	case strings.HasPrefix(mime, "audio/"):
		return AnexoAudio
	default:
		return AnexoImagem
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
