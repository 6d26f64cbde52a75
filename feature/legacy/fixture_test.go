package legacy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const siteDump = "-- MySQL dump\n" +
	"DROP TABLE IF EXISTS `wp_posts`;\n" +
	"LOCK TABLES `wp_posts` WRITE;\n" +
	"INSERT INTO `wp_posts` (`ID`,`post_author`,`post_date`,`post_content`,`post_title`,`post_excerpt`,`post_status`,`post_name`,`guid`,`post_type`) VALUES\n" +
	"(10,1,'2020-01-02 03:04:05','First clip','First Clip','','publish','first-clip','http://old.example/?p=10','post'),\n" +
	"(11,1,'2020-02-02 00:00:00','','Draft Clip','draft excerpt','draft','draft-clip','http://old.example/?p=11','post'),\n" +
	"(12,1,'2020-03-02 00:00:00','<iframe src=\\\"//player.example/e/abc\\\"></iframe>','Embedded','watch this','publish','embedded','http://old.example/?p=12','post'),\n" +
	"(13,1,'2020-03-02 00:00:00','','thumb.jpg','','inherit','thumb','http://old.example/wp-content/uploads/2020/03/thumb.jpg','attachment'),\n" +
	"(14,1,'2020-04-02 00:00:00','','A page','','publish','a-page','http://old.example/?page_id=14','page');\n" +
	"UNLOCK TABLES;\n" +
	"INSERT INTO `wp_options` VALUES (1,'siteurl','http://old.example','yes');\n" +
	"INSERT INTO `wp_postmeta` (`meta_id`,`post_id`,`meta_key`,`meta_value`) VALUES\n" +
	"(1,10,'video_url','http://old.example/wp-content/uploads/2020/01/first%20clip.mp4'),\n" +
	"(2,10,'duration','1:02:03'),\n" +
	"(3,10,'post_views_count','1,234'),\n" +
	"(4,10,'_thumbnail_id','13'),\n" +
	"(5,10,'_edit_lock','1580000000:1'),\n" +
	"(6,12,'duration','bogus'),\n" +
	"(7,13,'_wp_attached_file','2020/03/thumb.jpg'),\n" +
	"(8,12,'likes_count','7');\n" +
	"INSERT INTO `wp_terms` (`term_id`,`name`,`slug`) VALUES (1,'Music','music'),(2,'Live','live'),(3,'Jane Doe','jane-doe'),(4,'Studio','studio');\n" +
	"INSERT INTO `wp_term_taxonomy` (`term_taxonomy_id`,`term_id`,`taxonomy`,`parent`) VALUES (101,1,'category',0),(102,2,'post_tag',0),(103,3,'actors',0),(104,4,'post_tag',0);\n" +
	"INSERT INTO `wp_term_relationships` (`object_id`,`term_taxonomy_id`) VALUES (10,101),(10,102),(10,103),(10,104),(10,102);\n" +
	"INSERT INTO `wp_users` (`ID`,`user_login`,`user_pass`,`user_email`,`user_url`,`user_registered`,`display_name`) VALUES\n" +
	"(1,'admin','$P$Bhash','Admin@Example.com','','2019-01-01 00:00:00','Site Admin'),\n" +
	"(2,'ghost','$P$Bother','','','2019-01-01 00:00:00','');\n" +
	"INSERT INTO `wp_usermeta` (`umeta_id`,`user_id`,`meta_key`,`meta_value`) VALUES (1,1,'first_name','Ada'),(2,1,'wp_capabilities','a:1:{s:13:\\\"administrator\\\";b:1;}');\n"

func writeDump(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dump.sql")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func loadSite(t *testing.T, tables []string) *Index {
	t.Helper()
	proj := DefaultProjection()
	idx, err := Load(context.Background(), writeDump(t, siteDump), LoadOptions{
		Prefix:       "wp_",
		Tables:       tables,
		MetaKeys:     proj.MetaKeys(),
		UserMetaKeys: proj.UserMetaKeys(),
	}, nil)
	require.NoError(t, err)
	return idx
}
