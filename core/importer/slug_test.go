package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Foo":               "foo",
		"  Hello, World!  ": "hello-world",
		"Crème Brûlée":      "creme-brulee",
		"a--b__c":           "a-b-c",
		"Top 10 (2020)":     "top-10-2020",
		"!!!":               "",
		"Straße":            "straße",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugify_Truncates(t *testing.T) {
	s := Slugify(strings.Repeat("é", 200))
	assert.LessOrEqual(t, len(s), MaxSlugLength)
	assert.Equal(t, strings.Repeat("e", MaxSlugLength), s)

	s = Slugify(strings.Repeat("ж", 200))
	assert.LessOrEqual(t, len(s), MaxSlugLength)
	assert.Equal(t, strings.Repeat("ж", MaxSlugLength/2), s)
}

func takenSet(existing ...string) (map[string]bool, TakenFunc) {
	set := make(map[string]bool)
	for _, s := range existing {
		set[s] = true
	}
	return set, func(_ context.Context, c string) (bool, error) {
		return set[c], nil
	}
}

func TestUniqueSlug_CollisionOrder(t *testing.T) {
	set, taken := takenSet("foo", "foo-2")
	ctx := context.Background()

	var got []string
	for range 2 {
		slug, err := UniqueSlug(ctx, Slugify("Foo"), taken)
		require.NoError(t, err)
		set[slug] = true
		got = append(got, slug)
	}
	assert.Equal(t, []string{"foo-3", "foo-4"}, got)
}

func TestUniqueSlug_FreeBase(t *testing.T) {
	_, taken := takenSet("bar")
	slug, err := UniqueSlug(context.Background(), "foo", taken)
	require.NoError(t, err)
	assert.Equal(t, "foo", slug)
}

func TestUniqueSlug_Errors(t *testing.T) {
	_, err := UniqueSlug(context.Background(), "", nil)
	assert.Error(t, err)

	boom := errors.New("db down")
	_, err = UniqueSlug(context.Background(), "foo", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = UniqueSlug(context.Background(), "foo", func(context.Context, string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, ErrSlugExhausted)
}
