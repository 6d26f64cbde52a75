package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"legacy-importer/core/database"
	"legacy-importer/core/importer"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TermKind names the table of a taxonomy.
type TermKind string

const (
	KindCategory TermKind = "categories"
	KindTag      TermKind = "tags"
	KindActor    TermKind = "actors"
)

// Store is the destination record store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the library tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate library tables: %w", err)
	}
	return nil
}

// requiredColumns are the columns the importer writes, per table.
var requiredColumns = map[string][]string{
	"videos":       {"id", "user_id", "title", "slug", "source_tag", "file_path", "embed_url", "category_id", "deleted_at"},
	"users":        {"id", "username", "email", "source_tag", "legacy_password_hash", "must_reset_password", "deleted_at"},
	"categories":   {"id", "name", "slug", "usage_count"},
	"tags":         {"id", "name", "slug", "usage_count"},
	"actors":       {"id", "name", "slug", "usage_count"},
	"video_tags":   {"video_id", "tag_id"},
	"video_actors": {"video_id", "actor_id"},
}

// CheckSchema verifies an existing schema carries every column the importer writes.
func (s *Store) CheckSchema() error {
	var problems []string
	for _, table := range []string{"categories", "tags", "actors", "users", "videos", "video_tags", "video_actors"} {
		missing, err := database.MissingColumns(s.db, table, requiredColumns[table])
		if err != nil {
			return err
		}
		for _, col := range missing {
			problems = append(problems, table+"."+col)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("destination schema is missing columns: %v", problems)
	}
	return nil
}

// ExistsBy reports whether a row of model has column = value. Soft-deleted rows
// count, so a deleted import is never recreated and its slug is never reused.
func (s *Store) ExistsBy(ctx context.Context, model any, column string, value any) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(model).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", column, err)
	}
	return count > 0, nil
}

// Taken returns a TakenFunc probing column of model.
func (s *Store) Taken(model any, column string) importer.TakenFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.ExistsBy(ctx, model, column, candidate)
	}
}

// FirstOrCreateTerm returns the id of the term with the slug of name, creating
// it if needed. created reports whether a row was inserted.
func (s *Store) FirstOrCreateTerm(ctx context.Context, tx *gorm.DB, kind TermKind, name string) (id uint, created bool, err error) {
	if tx == nil {
		tx = s.db
	}
	slug := importer.Slugify(name)
	if slug == "" {
		return 0, false, fmt.Errorf("term %q has no usable slug", name)
	}

	var term Term
	err = tx.WithContext(ctx).Table(string(kind)).Where("slug = ?", slug).Take(&term).Error
	if err == nil {
		return term.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, fmt.Errorf("failed to look up %s %q: %w", kind, slug, err)
	}

	term = Term{Name: name, Slug: slug}
	if err := tx.WithContext(ctx).Table(string(kind)).Create(&term).Error; err != nil {
		// A concurrent run may have created it between the lookup and the insert.
		var existing Term
		if lookupErr := tx.WithContext(ctx).Table(string(kind)).Where("slug = ?", slug).Take(&existing).Error; lookupErr == nil {
			return existing.ID, false, nil
		}
		return 0, false, fmt.Errorf("failed to create %s %q: %w", kind, slug, err)
	}
	return term.ID, true, nil
}

// VideoTerms are the taxonomy names attached to a new video.
type VideoTerms struct {
	Category string
	Tags     []string
	Actors   []string
}

// TermCache maps term slugs to ids for the duration of one run.
type TermCache struct {
	mu  sync.Mutex
	ids map[string]uint
}

// NewTermCache creates an empty cache.
func NewTermCache() *TermCache {
	return &TermCache{ids: make(map[string]uint)}
}

func termKey(kind TermKind, slug string) string {
	return string(kind) + "|" + slug
}

func (c *TermCache) get(kind TermKind, slug string) (uint, bool) {
	if c == nil {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[termKey(kind, slug)]
	return id, ok
}

func (c *TermCache) merge(ids map[string]uint) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range ids {
		c.ids[k] = v
	}
}

// Len returns the number of cached terms.
func (c *TermCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// CreateVideo creates v with its taxonomy links and increments the usage
// counter of every linked term, all in one transaction. Terms are resolved
// through cache; ids created inside a failed transaction never reach it.
func (s *Store) CreateVideo(ctx context.Context, v *Video, terms VideoTerms, cache *TermCache) error {
	resolved := make(map[string]uint)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolve := func(kind TermKind, name string) (uint, bool, error) {
			slug := importer.Slugify(name)
			if slug == "" {
				return 0, false, nil
			}
			key := termKey(kind, slug)
			if id, ok := resolved[key]; ok {
				return id, true, nil
			}
			if id, ok := cache.get(kind, slug); ok {
				resolved[key] = id
				return id, true, nil
			}
			id, _, err := s.FirstOrCreateTerm(ctx, tx, kind, name)
			if err != nil {
				return 0, false, err
			}
			resolved[key] = id
			return id, true, nil
		}

		used := map[TermKind][]uint{}

		if terms.Category != "" {
			id, ok, err := resolve(KindCategory, terms.Category)
			if err != nil {
				return err
			}
			if ok {
				v.CategoryID = &id
				used[KindCategory] = append(used[KindCategory], id)
			}
		}

		seen := map[uint]bool{}
		for _, name := range terms.Tags {
			id, ok, err := resolve(KindTag, name)
			if err != nil {
				return err
			}
			if ok && !seen[id] {
				seen[id] = true
				v.Tags = append(v.Tags, Tag{Term: Term{ID: id}})
				used[KindTag] = append(used[KindTag], id)
			}
		}

		seen = map[uint]bool{}
		for _, name := range terms.Actors {
			id, ok, err := resolve(KindActor, name)
			if err != nil {
				return err
			}
			if ok && !seen[id] {
				seen[id] = true
				v.Actors = append(v.Actors, Actor{Term: Term{ID: id}})
				used[KindActor] = append(used[KindActor], id)
			}
		}

		if err := tx.Omit("Category", "Tags.*", "Actors.*").Create(v).Error; err != nil {
			return fmt.Errorf("failed to create video: %w", err)
		}

		for kind, ids := range used {
			err := tx.Table(string(kind)).Where("id IN ?", ids).
				UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
			if err != nil {
				return fmt.Errorf("failed to update %s usage: %w", kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.merge(resolved)
	return nil
}

// CreateMember creates u.
func (s *Store) CreateMember(ctx context.Context, u *User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
