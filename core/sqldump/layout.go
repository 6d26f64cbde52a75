package sqldump

import (
	"bytes"
	"regexp"
	"strings"
)

var createHeader = regexp.MustCompile("(?i)^CREATE\\s+(?:TEMPORARY\\s+)?TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?((?:`[^`]+`|[\\w$]+)(?:\\.(?:`[^`]+`|[\\w$]+))?)")

// indexKeywords open definitions in a CREATE TABLE body that are not columns.
var indexKeywords = map[string]struct{}{
	"PRIMARY":    {},
	"KEY":        {},
	"INDEX":      {},
	"UNIQUE":     {},
	"FULLTEXT":   {},
	"SPATIAL":    {},
	"CONSTRAINT": {},
	"FOREIGN":    {},
	"CHECK":      {},
}

// tableDef collects the column names of a CREATE TABLE body, which may span any
// number of lines.
type tableDef struct {
	table   string
	depth   int
	quote   byte
	escaped bool
	segment []byte
	columns []string
}

// feed consumes the next piece of the statement and reports whether the body is
// complete. A statement that ends before any body was opened completes with no
// columns.
func (d *tableDef) feed(b []byte) bool {
	for _, c := range b {
		if d.quote != 0 {
			switch {
			case d.escaped:
				d.escaped = false
			case c == '\\' && d.quote != '`':
				d.escaped = true
			case c == d.quote:
				d.quote = 0
			}
			d.segment = append(d.segment, c)
			continue
		}

		switch c {
		case '`', '\'', '"':
			d.quote = c
		case '(':
			d.depth++
			if d.depth == 1 {
				continue
			}
		case ')':
			d.depth--
			if d.depth == 0 {
				d.flush()
				return true
			}
		case ',':
			if d.depth == 1 {
				d.flush()
				continue
			}
		case ';':
			if d.depth == 0 {
				return true
			}
		}
		if d.depth > 0 {
			d.segment = append(d.segment, c)
		}
	}
	if d.depth > 0 {
		d.segment = append(d.segment, ' ')
	}
	return false
}

func (d *tableDef) flush() {
	if name, ok := definedColumn(d.segment); ok {
		d.columns = append(d.columns, name)
	}
	d.segment = d.segment[:0]
}

// definedColumn returns the column a body definition declares, if any.
func definedColumn(def []byte) (string, bool) {
	def = bytes.TrimSpace(def)
	if len(def) == 0 {
		return "", false
	}
	if def[0] == '`' {
		end := bytes.IndexByte(def[1:], '`')
		if end <= 0 {
			return "", false
		}
		return string(def[1 : end+1]), true
	}

	word := leadingKeyword(def)
	if word == "" {
		return "", false
	}
	if _, ok := indexKeywords[word]; ok {
		return "", false
	}
	end := len(word)
	for end < len(def) && def[end] != ' ' && def[end] != '\t' {
		end++
	}
	return strings.Trim(string(def[:end]), "\""), true
}
