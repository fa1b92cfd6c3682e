package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameKey folds a client name into its join key: case-folded, with runs of
// whitespace collapsed and the ends trimmed.
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// SameName reports whether two client names denote the same client.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// SortClientsByName orders clients alphabetically using pt-BR collation,
// so accented names sort next to their unaccented neighbours.
func SortClientsByName(clients []Client) {
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(clients, func(i, j int) bool {
		return col.CompareString(clients[i].Name, clients[j].Name) < 0
	})
}
