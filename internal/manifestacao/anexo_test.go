package manifestacao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAnexo(t *testing.T) {
	cases := map[string]string{
		"/uploads/foto.jpg":                   AnexoImagem,
		"/uploads/FOTO.PNG":                   AnexoImagem,
		"/uploads/video.mp4":                  AnexoVideo,
		"/uploads/audio.mp3":                  AnexoAudio,
		"/uploads/gravacao.m4a":               AnexoAudio,
		"/uploads/audio-recording":            AnexoAudio,
		"/uploads/video-recording":            AnexoVideo,
		"/uploads/arquivo.xyz":                AnexoImagem,
		"/uploads/audio.webm":                 AnexoVideo,
		"":                                    AnexoImagem,
		"http://localhost:3001/uploads/x.mov": AnexoVideo,
	}

	for url, want := range cases {
		assert.Equal(t, want, ClassifyAnexo(url), "url %q", url)
	}
}

func TestClassifyMime(t *testing.T) {
	assert.Equal(t, AnexoImagem, ClassifyMime("image/png"))
	assert.Equal(t, AnexoVideo, ClassifyMime("video/mp4"))
	assert.Equal(t, AnexoAudio, ClassifyMime("Audio/WebM"))
	assert.Equal(t, AnexoImagem, ClassifyMime("application/pdf"))
}
