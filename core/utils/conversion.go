package utils

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// mysqlDateTime is the DATETIME layout written by mysqldump.
const mysqlDateTime = "2006-01-02 15:04:05"

// String dereferences a nullable dump field. NULL becomes "".
func String(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// Int64 parses a nullable dump field as an integer. NULL or garbage becomes 0.
func Int64(v *string) int64 {
	if v == nil {
		return 0
	}
	i, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
	if err != nil {
		return 0
	}
	return i
}

// ParseInt64 is Int64 for plain strings.
func ParseInt64(s string) int64 {
	return Int64(&s)
}

// Time parses a DATETIME dump field. NULL and the zero date "0000-00-00 00:00:00"
// become the zero time.
func Time(v *string) time.Time {
	if v == nil {
		return time.Time{}
	}
	t, err := time.ParseInLocation(mysqlDateTime, strings.TrimSpace(*v), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Truncate cuts s to at most n characters, the unit VARCHAR lengths are counted in.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
