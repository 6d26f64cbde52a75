package imports

import (
	"legacy-importer/core/importer"
	"legacy-importer/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	migrate bool
}

// NewFeature creates a new imports feature. A nil db disables it.
func NewFeature(db *gorm.DB, dest storage.Disk, cfg importer.Config, logger *zap.Logger) *Feature {
	f := &Feature{migrate: cfg.AutoMigrate}
	if db != nil {
		f.service = NewService(db, dest, cfg, logger)
		f.handler = NewHandler(f.service)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "imports"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load migrates the run table when configured and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if f.migrate {
		if err := f.service.Migrate(); err != nil {
			return err
		}
	}
	f.handler.RegisterRoutes(app)
	return nil
}
