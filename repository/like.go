package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE/ILIKE metacharacters in user-supplied
// search input so a query for "%" matches a literal percent sign instead
// of everything.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
