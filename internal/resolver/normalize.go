package resolver

import "strings"

var nameReplacer = strings.NewReplacer(
	" ", "-",
	".", "",
	"(", "",
	")", "",
)

// NormalizeName lower-cases name, replaces spaces with hyphens, and drops
// periods and parentheses.
func NormalizeName(name string) string {
	return nameReplacer.Replace(strings.ToLower(name))
}

// NormalizeSymbol lower-cases symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToLower(symbol)
}
