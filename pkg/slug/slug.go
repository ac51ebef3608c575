package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug. Accented Latin letters are folded
// to ASCII, so Portuguese category names slug predictably:
//
//   - "Cuidados com o Cabelo" -> "cuidados-com-o-cabelo"
//   - "Maquiagem & Acessórios" -> "maquiagem-acessorios"
//   - "Proteção Solar" -> "protecao-solar"
func Generate(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}
	folded = strings.NewReplacer("ß", "ss", "æ", "ae", "ø", "o").Replace(folded)
	return strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
}
