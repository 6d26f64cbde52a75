package legacy

// Logical table names, without the dump's prefix.
const (
	TablePosts             = "posts"
	TablePostMeta          = "postmeta"
	TableTerms             = "terms"
	TableTermTaxonomy      = "term_taxonomy"
	TableTermRelationships = "term_relationships"
	TableUsers             = "users"
	TableUserMeta          = "usermeta"
)

// Meta keys the index always keeps regardless of configuration.
const (
	MetaAttachedFile = "_wp_attached_file"
	MetaThumbnailID  = "_thumbnail_id"
)

// columns is the stock column order of each table. It applies to INSERT
// statements without a column list when the dump has no CREATE TABLE for the
// table; multisite installs add columns to users, for example.
var columns = map[string][]string{
	TablePosts: {
		"ID", "post_author", "post_date", "post_date_gmt", "post_content", "post_title",
		"post_excerpt", "post_status", "comment_status", "ping_status", "post_password",
		"post_name", "to_ping", "pinged", "post_modified", "post_modified_gmt",
		"post_content_filtered", "post_parent", "guid", "menu_order", "post_type",
		"post_mime_type", "comment_count",
	},
	TablePostMeta:          {"meta_id", "post_id", "meta_key", "meta_value"},
	TableTerms:             {"term_id", "name", "slug", "term_group"},
	TableTermTaxonomy:      {"term_taxonomy_id", "term_id", "taxonomy", "description", "parent", "count"},
	TableTermRelationships: {"object_id", "term_taxonomy_id", "term_order"},
	TableUsers: {
		"ID", "user_login", "user_pass", "user_nicename", "user_email", "user_url",
		"user_registered", "user_activation_key", "user_status", "display_name",
	},
	TableUserMeta: {"umeta_id", "user_id", "meta_key", "meta_value"},
}

// VideoTables are the tables the archive and embed flows need.
var VideoTables = []string{TablePosts, TablePostMeta, TableTerms, TableTermTaxonomy, TableTermRelationships}

// UserTables are the tables the user flow needs.
var UserTables = []string{TableUsers, TableUserMeta}

// TrackedColumns returns the column layout for the given logical tables, ready to
// hand to sqldump.NewScanner. Unknown names are ignored.
func TrackedColumns(tables []string) map[string][]string {
	out := make(map[string][]string, len(tables))
	for _, t := range tables {
		if cols, ok := columns[t]; ok {
			out[t] = cols
		}
	}
	return out
}
