package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds slugs so a numeric suffix still fits a varchar(191) column.
const MaxSlugLength = 180

// maxSlugProbes bounds UniqueSlug so a broken TakenFunc cannot loop forever.
const maxSlugProbes = 10000

// ErrSlugExhausted is returned when no free suffix was found.
var ErrSlugExhausted = errors.New("no free slug found")

// Slugify lower-cases s, strips diacritics and joins the remaining letters and
// digits with single hyphens. It returns "" when nothing usable remains.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if len(out) > MaxSlugLength {
		cut := MaxSlugLength
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return strings.TrimRight(out, "-")
}

// TakenFunc reports whether candidate is already used in the destination.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// UniqueSlug returns the first of base, base-2, base-3, ... that taken reports
// as free. Uniqueness is only guaranteed against what taken can see; the
// destination's unique index remains the real guard.
func UniqueSlug(ctx context.Context, base string, taken TakenFunc) (string, error) {
	if base == "" {
		return "", errors.New("empty slug base")
	}
	for n := 1; n <= maxSlugProbes; n++ {
		candidate := base
		if n > 1 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrSlugExhausted, base)
}
