package protocolo

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormatAndYear(t *testing.T) {
	year := strconv.Itoa(time.Now().Year())
	for i := 0; i < 50; i++ {
		p := Generate()
		require.True(t, Valid(p), "protocolo fora do formato: %s", p)
		assert.True(t, strings.HasPrefix(p, year+"-"), "ano incorreto em %s", p)
	}
}

func TestGenerateIsMostlyDistinct(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		seen[Generate()] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(seen), 90)
}

func TestFormatPadsSequence(t *testing.T) {
	at := time.Date(2026, time.January, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-000000", Format(at, 0))
	assert.Equal(t, "2026-000001", Format(at, 1))
	assert.Equal(t, "2026-999999", Format(at, MaxSequencial))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2024-000001"))
	assert.False(t, Valid("2024-1"))
	assert.False(t, Valid("24-000001"))
	assert.False(t, Valid("2024-0000012"))
	assert.False(t, Valid(""))
}
