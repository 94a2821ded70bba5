// Package protocolo gera os números de protocolo entregues ao cidadão.
package protocolo

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// MaxSequencial é o maior sufixo possível de um protocolo.
const MaxSequencial = 999999

var pattern = regexp.MustCompile(`^\d{4}-\d{6}$`)

// Generate devolve um protocolo no formato AAAA-NNNNNN para o ano corrente.
// Não garante unicidade: quem chama precisa verificar colisões.
func Generate() string {
	return Format(time.Now(), rand.IntN(MaxSequencial+1))
}

// Format monta o protocolo a partir do instante e do sequencial informados.
func Format(t time.Time, seq int) string {
	return fmt.Sprintf("%04d-%06d", t.Year(), seq)
}

// Valid indica se a string segue o formato de protocolo.
func Valid(protocolo string) bool {
	return pattern.MatchString(protocolo)
}
