// Package config provides configuration management for the legacy importer.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (via godotenv). Defaults live next to each setting in a
// `default` struct tag.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: destination database (mysql or sqlite)
//   - Storage: destination disk (local directory or S3/MinIO bucket)
//   - Log: Logging level and format
//   - Import: dump prefix, post filter, archive root, assignee, batching, remux
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.TablePrefix)
package config
