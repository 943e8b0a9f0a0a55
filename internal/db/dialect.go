package db

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// dialect hides the differences between the SQL backends. Queries are
// written with ? placeholders and rebound per backend.
type dialect interface {
	driverName() string
	rebind(query string) string
	blobType() string
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string         { return DriverSQLite }
func (sqliteDialect) rebind(query string) string { return query }
func (sqliteDialect) blobType() string           { return "BLOB" }

type postgresDialect struct{}

func (postgresDialect) driverName() string { return DriverPostgres }
func (postgresDialect) blobType() string   { return "BYTEA" }

// rebind turns ? placeholders into $1, $2, ...
func (postgresDialect) rebind(query string) string {
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

// sqliteDSN adds the connection pragmas to a file path
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(10000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + q.Encode()
}

// timeLayout is RFC 3339 in UTC with a fixed nine digit fraction, so
// stored timestamps sort as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamps are stored as timeLayout text on every backend. parseTime
// also reads the shorter RFC 3339 forms older rows were written with.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
