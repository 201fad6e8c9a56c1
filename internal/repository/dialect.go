package repository

import (
	"strconv"
	"strings"
)

// dialect captures the SQL differences between the supported backends.
type dialect struct {
	name           string
	numbered       bool // $1, $2 placeholders instead of ?
	upsertExcluded string
}

var (
	sqliteDialect   = dialect{name: "sqlite", upsertExcluded: "excluded"}
	postgresDialect = dialect{name: "postgres", numbered: true, upsertExcluded: "EXCLUDED"}
	mysqlDialect    = dialect{name: "mysql"}
)

// rebind rewrites ? placeholders for backends that use numbered parameters.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an INSERT that overwrites updateCols when key already exists.
func (d dialect) upsert(table string, cols []string, key string, updateCols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"

	sets := make([]string, len(updateCols))
	for i, col := range updateCols {
		if d.name == "mysql" {
			sets[i] = col + " = VALUES(" + col + ")"
		} else {
			sets[i] = col + " = " + d.upsertExcluded + "." + col
		}
	}

	if d.name == "mysql" {
		return query + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return query + " ON CONFLICT(" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// likePattern escapes s for use in a LIKE ... ESCAPE '!' clause and wraps it
// in wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}
