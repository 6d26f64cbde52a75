package legacy

import (
	"context"
	"strings"

	"legacy-importer/core/sqldump"
	"legacy-importer/core/utils"

	"go.uber.org/zap"
)

// Index is the in-memory reconstruction of the legacy schema built from one scan.
// Records live in insertion-ordered arenas with id-to-slot maps; a later row with
// an existing id overwrites the earlier one in place (last write wins).
//
// An Index is filled once and then only read. It is not safe for concurrent writes.
type Index struct {
	metaKeys     map[string]struct{}
	userMetaKeys map[string]struct{}

	posts    []PostRecord
	postSlot map[int64]int
	meta     map[int64]map[string]string

	terms         map[int64]TermRecord
	taxonomies    map[int64]TermTaxonomyRecord
	relationships map[int64][]int64

	users    []UserRecord
	userSlot map[int64]int
	userMeta map[int64]map[string]string

	stats sqldump.Stats
}

// NewIndex creates an empty index that keeps only the given meta keys.
// MetaAttachedFile is always kept so attachment paths can be resolved.
func NewIndex(metaKeys, userMetaKeys []string) *Index {
	idx := &Index{
		metaKeys:      make(map[string]struct{}, len(metaKeys)+1),
		userMetaKeys:  make(map[string]struct{}, len(userMetaKeys)),
		postSlot:      make(map[int64]int),
		meta:          make(map[int64]map[string]string),
		terms:         make(map[int64]TermRecord),
		taxonomies:    make(map[int64]TermTaxonomyRecord),
		relationships: make(map[int64][]int64),
		userSlot:      make(map[int64]int),
		userMeta:      make(map[int64]map[string]string),
	}
	for _, k := range metaKeys {
		idx.metaKeys[k] = struct{}{}
	}
	idx.metaKeys[MetaAttachedFile] = struct{}{}
	for _, k := range userMetaKeys {
		idx.userMetaKeys[k] = struct{}{}
	}
	return idx
}

// LoadOptions controls which part of a dump is reconstructed.
type LoadOptions struct {
	// Prefix is the table prefix used in the dump.
	Prefix string
	// Tables are the logical tables to track. Everything else is skipped unparsed.
	Tables []string
	// MetaKeys is the post meta allow-list.
	MetaKeys []string
	// UserMetaKeys is the user meta allow-list.
	UserMetaKeys []string
}

// Load scans the dump at path and returns a freshly built index. Every call starts
// from an empty index; two scans are never merged.
func Load(ctx context.Context, path string, opts LoadOptions, logger *zap.Logger) (*Index, error) {
	idx := NewIndex(opts.MetaKeys, opts.UserMetaKeys)
	sc := sqldump.NewScanner(opts.Prefix, TrackedColumns(opts.Tables), logger)

	stats, err := sc.ScanFile(ctx, path, func(row sqldump.RawRow) error {
		idx.Add(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	idx.stats = stats
	return idx, nil
}

// Stats returns the scan statistics of the dump the index was loaded from.
func (idx *Index) Stats() sqldump.Stats {
	return idx.stats
}

// Add routes a raw row to the upsert for its table. Rows of unknown tables are ignored.
func (idx *Index) Add(row sqldump.RawRow) {
	f := row.Fields
	switch row.Table {
	case TablePosts:
		idx.UpsertPost(PostRecord{
			ID:       utils.Int64(f["ID"]),
			Author:   utils.Int64(f["post_author"]),
			Date:     utils.Time(f["post_date"]),
			Content:  utils.String(f["post_content"]),
			Title:    utils.String(f["post_title"]),
			Excerpt:  utils.String(f["post_excerpt"]),
			Status:   utils.String(f["post_status"]),
			Name:     utils.String(f["post_name"]),
			Modified: utils.Time(f["post_modified"]),
			Parent:   utils.Int64(f["post_parent"]),
			GUID:     utils.String(f["guid"]),
			Type:     utils.String(f["post_type"]),
			MimeType: utils.String(f["post_mime_type"]),
		})
	case TablePostMeta:
		if v := f["meta_value"]; v != nil {
			idx.PutMeta(utils.Int64(f["post_id"]), utils.String(f["meta_key"]), *v)
		}
	case TableTerms:
		idx.UpsertTerm(TermRecord{
			ID:   utils.Int64(f["term_id"]),
			Name: utils.String(f["name"]),
			Slug: utils.String(f["slug"]),
		})
	case TableTermTaxonomy:
		idx.UpsertTaxonomy(TermTaxonomyRecord{
			ID:       utils.Int64(f["term_taxonomy_id"]),
			TermID:   utils.Int64(f["term_id"]),
			Taxonomy: utils.String(f["taxonomy"]),
			Parent:   utils.Int64(f["parent"]),
		})
	case TableTermRelationships:
		idx.AddRelationship(utils.Int64(f["object_id"]), utils.Int64(f["term_taxonomy_id"]))
	case TableUsers:
		idx.UpsertUser(UserRecord{
			ID:           utils.Int64(f["ID"]),
			Login:        utils.String(f["user_login"]),
			PasswordHash: utils.String(f["user_pass"]),
			Nicename:     utils.String(f["user_nicename"]),
			Email:        utils.String(f["user_email"]),
			URL:          utils.String(f["user_url"]),
			Registered:   utils.Time(f["user_registered"]),
			DisplayName:  utils.String(f["display_name"]),
		})
	case TableUserMeta:
		if v := f["meta_value"]; v != nil {
			idx.PutUserMeta(utils.Int64(f["user_id"]), utils.String(f["meta_key"]), *v)
		}
	}
}

// UpsertPost stores p, overwriting any earlier post with the same id in place.
func (idx *Index) UpsertPost(p PostRecord) {
	if p.ID <= 0 {
		return
	}
	if slot, ok := idx.postSlot[p.ID]; ok {
		idx.posts[slot] = p
		return
	}
	idx.postSlot[p.ID] = len(idx.posts)
	idx.posts = append(idx.posts, p)
}

// PutMeta stores an allow-listed meta value. Other keys are dropped.
func (idx *Index) PutMeta(postID int64, key, value string) {
	if _, ok := idx.metaKeys[key]; !ok || postID <= 0 {
		return
	}
	m := idx.meta[postID]
	if m == nil {
		m = make(map[string]string)
		idx.meta[postID] = m
	}
	m[key] = value
}

func (idx *Index) UpsertTerm(t TermRecord) {
	if t.ID > 0 {
		idx.terms[t.ID] = t
	}
}

func (idx *Index) UpsertTaxonomy(t TermTaxonomyRecord) {
	if t.ID > 0 {
		idx.taxonomies[t.ID] = t
	}
}

// AddRelationship appends a term taxonomy id to an object's adjacency list.
// A pair that is already present is not added twice.
func (idx *Index) AddRelationship(objectID, termTaxonomyID int64) {
	if objectID <= 0 || termTaxonomyID <= 0 {
		return
	}
	for _, id := range idx.relationships[objectID] {
		if id == termTaxonomyID {
			return
		}
	}
	idx.relationships[objectID] = append(idx.relationships[objectID], termTaxonomyID)
}

// UpsertUser stores u, overwriting any earlier user with the same id in place.
func (idx *Index) UpsertUser(u UserRecord) {
	if u.ID <= 0 {
		return
	}
	if slot, ok := idx.userSlot[u.ID]; ok {
		idx.users[slot] = u
		return
	}
	idx.userSlot[u.ID] = len(idx.users)
	idx.users = append(idx.users, u)
}

// PutUserMeta stores an allow-listed user meta value.
func (idx *Index) PutUserMeta(userID int64, key, value string) {
	if _, ok := idx.userMetaKeys[key]; !ok || userID <= 0 {
		return
	}
	m := idx.userMeta[userID]
	if m == nil {
		m = make(map[string]string)
		idx.userMeta[userID] = m
	}
	m[key] = value
}

// Posts returns all posts in first-insertion order. The slice must not be modified.
func (idx *Index) Posts() []PostRecord {
	return idx.posts
}

// Post returns the post with the given id.
func (idx *Index) Post(id int64) (PostRecord, bool) {
	slot, ok := idx.postSlot[id]
	if !ok {
		return PostRecord{}, false
	}
	return idx.posts[slot], true
}

// Users returns all users in first-insertion order. The slice must not be modified.
func (idx *Index) Users() []UserRecord {
	return idx.users
}

// Meta returns a copy of the allow-listed meta of a post.
func (idx *Index) Meta(postID int64) map[string]string {
	out := make(map[string]string, len(idx.meta[postID]))
	for k, v := range idx.meta[postID] {
		out[k] = v
	}
	return out
}

// MetaValue returns a single meta value of a post.
func (idx *Index) MetaValue(postID int64, key string) (string, bool) {
	v, ok := idx.meta[postID][key]
	return v, ok
}

// UserMetaValue returns a single meta value of a user.
func (idx *Index) UserMetaValue(userID int64, key string) (string, bool) {
	v, ok := idx.userMeta[userID][key]
	return v, ok
}

// TermsFor returns the terms attached to a post within one taxonomy, in
// relationship order.
func (idx *Index) TermsFor(postID int64, taxonomy string) []TermRecord {
	var out []TermRecord
	for _, ttID := range idx.relationships[postID] {
		tt, ok := idx.taxonomies[ttID]
		if !ok || tt.Taxonomy != taxonomy {
			continue
		}
		if term, ok := idx.terms[tt.TermID]; ok {
			out = append(out, term)
		}
	}
	return out
}

// AttachmentPath returns the upload-relative file path of an attachment post.
// The attached-file meta wins; the attachment's guid is the fallback.
func (idx *Index) AttachmentPath(id int64) (string, bool) {
	if p, ok := idx.MetaValue(id, MetaAttachedFile); ok && strings.TrimSpace(p) != "" {
		return strings.TrimPrefix(strings.TrimSpace(p), "/"), true
	}
	post, ok := idx.Post(id)
	if !ok || post.GUID == "" {
		return "", false
	}
	return localPath(post.GUID, DefaultPathSegments)
}

// Counts reports how many records each table contributed.
func (idx *Index) Counts() map[string]int {
	metaRows := 0
	for _, m := range idx.meta {
		metaRows += len(m)
	}
	relRows := 0
	for _, r := range idx.relationships {
		relRows += len(r)
	}
	userMetaRows := 0
	for _, m := range idx.userMeta {
		userMetaRows += len(m)
	}
	return map[string]int{
		TablePosts:             len(idx.posts),
		TablePostMeta:          metaRows,
		TableTerms:             len(idx.terms),
		TableTermTaxonomy:      len(idx.taxonomies),
		TableTermRelationships: relRows,
		TableUsers:             len(idx.users),
		TableUserMeta:          userMetaRows,
	}
}
