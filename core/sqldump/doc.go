// Package sqldump reads the narrow subset of SQL emitted by mysqldump-style export
// tools: extended INSERT statements of the form
//
//	INSERT INTO `prefix_table` VALUES (...),(...);
//
// It is not a SQL parser. A Scanner makes a single forward pass over the dump,
// tracks which table the current INSERT targets and hands every tuple of a tracked
// table to ParseTuple. Rows of untracked tables are skipped without being parsed,
// so memory use does not grow with the size of tables nobody asked for.
//
// An INSERT without a column list takes its column order from the CREATE TABLE of
// the same table seen earlier in the dump, or from the layout the Scanner was
// configured with when there is none.
//
// Malformed or truncated tuples are dropped and counted in Stats.Dropped; they never
// abort a scan. Only a dump that cannot be opened (ErrOpenDump) or a RowFunc error is
// fatal.
//
// # Usage
//
//	sc := sqldump.NewScanner("wp_", map[string][]string{
//	    "posts": {"ID", "post_author", "post_title"},
//	}, logger)
//	stats, err := sc.ScanFile(ctx, "/backups/site.sql.gz", func(row sqldump.RawRow) error {
//	    title, _ := row.Value("post_title")
//	    return nil
//	})
package sqldump
