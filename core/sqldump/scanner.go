package sqldump

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// ErrOpenDump is returned when the dump file cannot be opened. It aborts the run
// before any row is produced.
var ErrOpenDump = errors.New("cannot open dump")

// headerWindow bounds how much of a line the INSERT header regexp looks at.
// Extended inserts can be many megabytes long.
const headerWindow = 512

var insertHeader = regexp.MustCompile("(?i)^(?:INSERT|REPLACE)(?:\\s+(?:LOW_PRIORITY|DELAYED|HIGH_PRIORITY|IGNORE))*\\s+INTO\\s+((?:`[^`]+`|[\\w$]+)(?:\\.(?:`[^`]+`|[\\w$]+))?)")

// contextBreakers are the leading keywords that end any active INSERT context.
var contextBreakers = map[string]struct{}{
	"CREATE":   {},
	"DROP":     {},
	"ALTER":    {},
	"LOCK":     {},
	"UNLOCK":   {},
	"START":    {},
	"BEGIN":    {},
	"COMMIT":   {},
	"ROLLBACK": {},
	"SET":      {},
	"USE":      {},
	"TRUNCATE": {},
}

// RawRow is one parsed tuple tagged with the logical (unprefixed) table name.
// A nil field value is SQL NULL.
type RawRow struct {
	Table  string
	Fields map[string]*string
}

// Value returns the column value and whether it is non-NULL.
func (r RawRow) Value(column string) (string, bool) {
	v, ok := r.Fields[column]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Stats aggregates what a scan saw.
type Stats struct {
	Lines      int64          `json:"lines"`
	Bytes      int64          `json:"bytes"`
	Statements int            `json:"statements"`
	Rows       map[string]int `json:"rows"`
	Dropped    int            `json:"dropped"`
}

// RowFunc receives every accepted row. Returning an error aborts the scan.
type RowFunc func(RawRow) error

// Scanner performs a single forward pass over a SQL dump and emits the rows of
// tracked tables.
type Scanner struct {
	// Prefix is the table name prefix used by the dump (e.g. "wp_").
	Prefix string
	// Tables maps logical table names to their column order. The column order is
	// used when an INSERT statement carries no explicit column list and the dump
	// holds no CREATE TABLE for the table ahead of it.
	Tables map[string][]string

	logger *zap.Logger
}

// NewScanner creates a scanner for the given prefix and tracked tables.
func NewScanner(prefix string, tables map[string][]string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{Prefix: prefix, Tables: tables, logger: logger}
}

// ScanFile opens path and scans it. Paths ending in .gz are decompressed on the fly.
func (s *Scanner) ScanFile(ctx context.Context, path string, fn RowFunc) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%w %s: %v", ErrOpenDump, path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Stats{}, fmt.Errorf("%w %s: %v", ErrOpenDump, path, err)
		}
		defer gz.Close()
		r = gz
	}

	s.logger.Info("Scanning dump", zap.String("path", path), zap.String("prefix", s.Prefix))
	stats, err := s.Scan(ctx, r, fn)
	if err != nil {
		return stats, err
	}
	s.logger.Info("Dump scanned",
		zap.Int64("lines", stats.Lines),
		zap.Int("statements", stats.Statements),
		zap.Int("dropped", stats.Dropped),
		zap.Any("rows", stats.Rows),
	)
	return stats, nil
}

// statement is the INSERT currently being read.
type statement struct {
	table   string
	columns []string
}

// scanState is what one pass carries from line to line.
type scanState struct {
	active *statement
	def    *tableDef

	// layouts are the column orders read from CREATE TABLE statements.
	layouts map[string][]string
}

// Scan reads r line by line. It never seeks and holds at most one line in memory.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, fn RowFunc) (Stats, error) {
	stats := Stats{Rows: make(map[string]int)}
	br := bufio.NewReaderSize(r, 1<<20)

	st := &scanState{layouts: make(map[string][]string)}

	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			stats.Lines++
			stats.Bytes += int64(len(line))

			if stats.Lines%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
			}
			if stats.Lines%1000000 == 0 {
				s.logger.Debug("Dump scan progress", zap.Int64("lines", stats.Lines), zap.Int64("bytes", stats.Bytes))
			}

			if err := s.scanLine(bytes.TrimRight(line, "\r\n"), st, &stats, fn); err != nil {
				return stats, err
			}
		}

		if readErr == io.EOF {
			return stats, nil
		}
		if readErr != nil {
			return stats, fmt.Errorf("failed to read dump: %w", readErr)
		}
	}
}

func (s *Scanner) scanLine(line []byte, st *scanState, stats *Stats, fn RowFunc) error {
	if st.def != nil {
		if st.def.feed(line) {
			s.learnLayout(st)
		}
		return nil
	}

	trimmed := bytes.TrimLeft(line, " \t")
	if len(trimmed) == 0 || isComment(trimmed) {
		return nil
	}

	var err error
	if trimmed[0] == '(' {
		if st.active != nil {
			st.active, err = s.scanTuples(trimmed, 0, st.active, stats, fn)
		}
		return err
	}

	if st.active != nil && hasPrefixFold(trimmed, "VALUES") {
		st.active, err = s.scanTuples(trimmed, len("VALUES"), st.active, stats, fn)
		return err
	}

	window := trimmed
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if m := insertHeader.FindSubmatchIndex(window); m != nil {
		stats.Statements++
		st.active = nil
		logical, ok := s.logicalTable(string(trimmed[m[2]:m[3]]))
		if !ok {
			return nil
		}
		stmt := &statement{table: logical, columns: s.Tables[logical]}
		if cols, ok := st.layouts[logical]; ok {
			stmt.columns = cols
		}
		pos, ok := s.readColumns(trimmed, m[1], stmt)
		if !ok {
			stats.Dropped++
			return nil
		}
		st.active, err = s.scanTuples(trimmed, pos, stmt, stats, fn)
		return err
	}

	if _, brk := contextBreakers[leadingKeyword(trimmed)]; brk {
		st.active = nil
		if m := createHeader.FindSubmatchIndex(window); m != nil {
			if logical, ok := s.logicalTable(string(trimmed[m[2]:m[3]])); ok {
				st.def = &tableDef{table: logical}
				if st.def.feed(trimmed[m[1]:]) {
					s.learnLayout(st)
				}
			}
		}
	}
	return nil
}

// learnLayout keeps the columns of a finished CREATE TABLE for later INSERTs
// without a column list.
func (s *Scanner) learnLayout(st *scanState) {
	def := st.def
	st.def = nil
	if len(def.columns) == 0 {
		return
	}
	st.layouts[def.table] = def.columns
	if static, ok := s.Tables[def.table]; ok && len(static) != len(def.columns) {
		s.logger.Debug("Dump table layout differs from the default",
			zap.String("table", def.table),
			zap.Int("columns", len(def.columns)),
			zap.Int("default_columns", len(static)),
		)
	}
}

// scanTuples parses every tuple from pos onwards. A ';' ends the statement.
func (s *Scanner) scanTuples(line []byte, pos int, stmt *statement, stats *Stats, fn RowFunc) (*statement, error) {
	for {
		pos = skipSeparators(line, pos)
		if pos >= len(line) {
			return stmt, nil
		}
		switch line[pos] {
		case ';':
			return nil, nil
		case '(':
		default:
			return stmt, nil
		}

		fields, end, err := ParseTuple(line, pos)
		if err != nil {
			stats.Dropped++
			return stmt, nil
		}
		pos = end + 1

		if len(fields) != len(stmt.columns) {
			stats.Dropped++
			continue
		}

		row := RawRow{Table: stmt.table, Fields: make(map[string]*string, len(fields))}
		for i, col := range stmt.columns {
			row.Fields[col] = fields[i]
		}
		stats.Rows[stmt.table]++
		if err := fn(row); err != nil {
			return nil, err
		}
	}
}

// readColumns consumes an optional explicit column list and the VALUES keyword,
// returning the position of the first tuple.
func (s *Scanner) readColumns(line []byte, pos int, stmt *statement) (int, bool) {
	pos = skipSpace(line, pos)
	if pos < len(line) && line[pos] == '(' {
		names, end, err := ParseTuple(line, pos)
		if err != nil {
			return 0, false
		}
		cols := make([]string, 0, len(names))
		for _, n := range names {
			if n == nil {
				return 0, false
			}
			cols = append(cols, strings.Trim(*n, "`"))
		}
		stmt.columns = cols
		pos = skipSpace(line, end+1)
	}

	if len(stmt.columns) == 0 {
		return 0, false
	}

	for _, kw := range []string{"VALUES", "VALUE"} {
		if hasPrefixFold(line[pos:], kw) {
			return pos + len(kw), true
		}
	}
	// VALUES may be on the next line.
	if pos >= len(line) {
		return pos, true
	}
	return 0, false
}

// logicalTable strips backticks, an optional schema qualifier and the prefix.
func (s *Scanner) logicalTable(raw string) (string, bool) {
	if i := strings.LastIndex(raw, "."); i >= 0 {
		raw = raw[i+1:]
	}
	name := strings.Trim(raw, "`")
	if !strings.HasPrefix(name, s.Prefix) {
		return "", false
	}
	name = strings.TrimPrefix(name, s.Prefix)
	if _, ok := s.Tables[name]; !ok {
		return "", false
	}
	return name, true
}

func isComment(line []byte) bool {
	return bytes.HasPrefix(line, []byte("--")) ||
		bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("/*"))
}

func leadingKeyword(line []byte) string {
	end := 0
	for end < len(line) && end < 16 {
		c := line[end]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
			break
		}
		end++
	}
	return strings.ToUpper(string(line[:end]))
}

func hasPrefixFold(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && strings.EqualFold(string(b[:len(prefix)]), prefix)
}

func skipSpace(line []byte, pos int) int {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	return pos
}

func skipSeparators(line []byte, pos int) int {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t' || line[pos] == ',') {
		pos++
	}
	return pos
}
