package manifestacao

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Orgaos lista os órgãos do Distrito Federal oferecidos no formulário.
var Orgaos = []string{
	"Secretaria de Estado de Governo",
	"Secretaria de Estado de Economia",
	"Secretaria de Estado de Saúde",
	"Secretaria de Estado de Educação",
	"Secretaria de Estado de Segurança Pública",
	"Secretaria de Estado de Transporte e Mobilidade",
	"Secretaria de Estado de Desenvolvimento Urbano e Habitação",
	"Secretaria de Estado de Meio Ambiente",
	"Secretaria de Estado de Desenvolvimento Social",
	"Secretaria de Estado de Cultura e Economia Criativa",
	"Controladoria-Geral do Distrito Federal",
	"Outro",
}

// CanonicalOrgao devolve a grafia do catálogo quando o valor corresponde a
// um órgão conhecido, ignorando acentos, caixa e espaços repetidos.
// Valores fora do catálogo são mantidos como vieram.
func CanonicalOrgao(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}

	key := foldKey(value)
	for _, orgao := range Orgaos {
		if foldKey(orgao) == key {
			return orgao
		}
	}
	return value
}

func foldKey(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}
