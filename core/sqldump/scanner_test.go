package sqldump

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = "-- MySQL dump 10.13\n" +
	"/*!40101 SET NAMES utf8mb4 */;\n" +
	"\n" +
	"DROP TABLE IF EXISTS `wp_posts`;\n" +
	"CREATE TABLE `wp_posts` (\n" +
	"  `ID` bigint(20) unsigned NOT NULL AUTO_INCREMENT,\n" +
	"  `post_title` text NOT NULL,\n" +
	"  `post_status` varchar(20) NOT NULL DEFAULT 'publish',\n" +
	"  PRIMARY KEY (`ID`)\n" +
	") ENGINE=InnoDB;\n" +
	"LOCK TABLES `wp_posts` WRITE;\n" +
	"INSERT INTO `wp_posts` VALUES (1,'Hello, world','publish'),(2,'It''s here','draft');\n" +
	"UNLOCK TABLES;\n" +
	"INSERT INTO `wp_options` VALUES (1,'siteurl','http://old.example'),(2,'blogname','Old');\n" +
	"INSERT INTO `wp_postmeta` (`meta_id`, `post_id`, `meta_key`, `meta_value`) VALUES\n" +
	"(10,1,'duration','1:02:03'),\n" +
	"(11,1,'thumb',NULL),\n" +
	"(12,2,'duration','2:01');\n" +
	"INSERT INTO `wp_posts` VALUES (3,'Broken','publish','extra');\n" +
	"INSERT INTO `wp_posts` VALUES (4,'Truncated\n"

func testTables() map[string][]string {
	return map[string][]string{
		"posts":    {"ID", "post_title", "post_status"},
		"postmeta": {"meta_id", "post_id", "meta_key", "meta_value"},
	}
}

func collect(t *testing.T, sc *Scanner, dump string) ([]RawRow, Stats) {
	t.Helper()
	var rows []RawRow
	stats, err := sc.Scan(context.Background(), strings.NewReader(dump), func(r RawRow) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)
	return rows, stats
}

func TestScan_TrackedTables(t *testing.T) {
	sc := NewScanner("wp_", testTables(), nil)
	rows, stats := collect(t, sc, sampleDump)

	require.Len(t, rows, 5)

	assert.Equal(t, "posts", rows[0].Table)
	title, ok := rows[0].Value("post_title")
	assert.True(t, ok)
	assert.Equal(t, "Hello, world", title)

	title, _ = rows[1].Value("post_title")
	assert.Equal(t, "It's here", title)

	// Continuation lines belong to the postmeta statement with an explicit column list.
	for _, r := range rows[2:] {
		assert.Equal(t, "postmeta", r.Table)
	}
	v, _ := rows[2].Value("meta_value")
	assert.Equal(t, "1:02:03", v)
	_, ok = rows[3].Value("meta_value")
	assert.False(t, ok, "NULL must be absent")

	assert.Equal(t, 2, stats.Rows["posts"])
	assert.Equal(t, 3, stats.Rows["postmeta"])
	assert.Equal(t, 2, stats.Dropped, "wrong arity and truncated tuples are dropped")
}

func TestScan_LayoutFromCreateTable(t *testing.T) {
	dump := "CREATE TABLE `wp_users` (\n" +
		"  `ID` bigint(20) unsigned NOT NULL AUTO_INCREMENT,\n" +
		"  `user_login` varchar(60) NOT NULL DEFAULT '',\n" +
		"  `user_status` int(11) NOT NULL DEFAULT '0',\n" +
		"  `display_name` varchar(250) NOT NULL DEFAULT '' COMMENT 'shown (publicly), maybe',\n" +
		"  `spam` tinyint(2) NOT NULL DEFAULT '0',\n" +
		"  `deleted` tinyint(2) NOT NULL DEFAULT '0',\n" +
		"  PRIMARY KEY (`ID`),\n" +
		"  KEY `user_login_key` (`user_login`)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
		"INSERT INTO `wp_users` VALUES (1,'admin',0,'Site Admin',0,0);\n"

	tables := map[string][]string{"users": {"ID", "user_login", "user_status", "display_name"}}
	rows, stats := collect(t, NewScanner("wp_", tables, nil), dump)

	require.Len(t, rows, 1)
	assert.Zero(t, stats.Dropped)
	name, _ := rows[0].Value("display_name")
	assert.Equal(t, "Site Admin", name)
	deleted, ok := rows[0].Value("deleted")
	assert.True(t, ok)
	assert.Equal(t, "0", deleted)
}

func TestScan_LayoutSingleLineCreate(t *testing.T) {
	dump := "CREATE TABLE IF NOT EXISTS wp_posts (ID bigint, post_title text, post_status varchar(20), extra int, PRIMARY KEY (ID));\n" +
		"INSERT INTO wp_posts VALUES (1,'a','publish',5);\n" +
		"CREATE TABLE `wp_options` (`option_id` bigint, `option_name` varchar(191));\n"

	rows, stats := collect(t, NewScanner("wp_", testTables(), nil), dump)
	require.Len(t, rows, 1)
	assert.Zero(t, stats.Dropped)
	extra, _ := rows[0].Value("extra")
	assert.Equal(t, "5", extra)
}

func TestScan_CreateTableWithoutBody(t *testing.T) {
	dump := "CREATE TABLE `wp_posts` LIKE `template_posts`;\n" +
		"INSERT INTO `wp_posts` VALUES (1,'a','publish');\n"

	rows, _ := collect(t, NewScanner("wp_", testTables(), nil), dump)
	assert.Len(t, rows, 1, "the static layout still applies")
}

func TestScan_UntrackedTablesNeverSurface(t *testing.T) {
	sc := NewScanner("wp_", testTables(), nil)
	rows, stats := collect(t, sc, sampleDump)

	for _, r := range rows {
		assert.NotEqual(t, "options", r.Table)
	}
	_, seen := stats.Rows["options"]
	assert.False(t, seen)
}

func TestScan_ContextClearedByDDL(t *testing.T) {
	dump := "INSERT INTO `wp_posts` VALUES (1,'a','publish')\n" +
		"UNLOCK TABLES;\n" +
		"(2,'orphan','publish');\n"

	sc := NewScanner("wp_", testTables(), nil)
	rows, _ := collect(t, sc, dump)
	assert.Len(t, rows, 1)
}

func TestScan_ValuesOnNextLine(t *testing.T) {
	dump := "INSERT INTO `wp_posts` (`ID`, `post_title`, `post_status`)\n" +
		"VALUES (7,'seven','publish'),\n" +
		"(8,'eight','publish');\n"

	sc := NewScanner("wp_", testTables(), nil)
	rows, _ := collect(t, sc, dump)
	require.Len(t, rows, 2)
	id, _ := rows[1].Value("ID")
	assert.Equal(t, "8", id)
}

func TestScan_PrefixMismatch(t *testing.T) {
	dump := "INSERT INTO `blog_posts` VALUES (1,'a','publish');\n"
	sc := NewScanner("wp_", testTables(), nil)
	rows, stats := collect(t, sc, dump)
	assert.Empty(t, rows)
	assert.Equal(t, 1, stats.Statements)
}

func TestScan_SchemaQualifiedAndIgnore(t *testing.T) {
	dump := "INSERT IGNORE INTO `site`.`wp_posts` VALUES (1,'a','publish');\n"
	sc := NewScanner("wp_", testTables(), nil)
	rows, _ := collect(t, sc, dump)
	assert.Len(t, rows, 1)
}

func TestScan_RowFuncErrorAborts(t *testing.T) {
	sc := NewScanner("wp_", testTables(), nil)
	boom := errors.New("boom")
	_, err := sc.Scan(context.Background(), strings.NewReader(sampleDump), func(RawRow) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Plain", func(t *testing.T) {
		path := filepath.Join(dir, "dump.sql")
		require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))

		count := 0
		_, err := NewScanner("wp_", testTables(), nil).ScanFile(context.Background(), path, func(RawRow) error {
			count++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("Gzip", func(t *testing.T) {
		path := filepath.Join(dir, "dump.sql.gz")
		f, err := os.Create(path)
		require.NoError(t, err)
		gz := gzip.NewWriter(f)
		_, err = gz.Write([]byte(sampleDump))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		require.NoError(t, f.Close())

		count := 0
		_, err = NewScanner("wp_", testTables(), nil).ScanFile(context.Background(), path, func(RawRow) error {
			count++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := NewScanner("wp_", testTables(), nil).ScanFile(context.Background(), filepath.Join(dir, "nope.sql"), func(RawRow) error {
			return nil
		})
		assert.ErrorIs(t, err, ErrOpenDump)
	})
}

func TestScan_Cancelled(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		b.WriteString("-- filler\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner("wp_", testTables(), nil).Scan(ctx, strings.NewReader(b.String()), func(RawRow) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
