package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders into the form expected by driverName.
// Queries are written with '?' (sqlite3); pgx needs $1, $2, ...
func Rebind(driverName, query string) string {
	if driverName != "pgx" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
