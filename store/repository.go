package store

import (
	"context"
	"errors"
	"fmt"

	"jiahe-site/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("no site content stored")
	ErrVersionConflict = errors.New("site content was changed by another session")
)

// Documents is the persistence the store endpoint is served from.
type Documents interface {
	// Load returns the stored document or ErrNotFound.
	Load(ctx context.Context) (*models.SiteDocument, error)
	// Save replaces the document and returns the new version. A non-zero
	// baseVersion must match the stored version or ErrVersionConflict is
	// returned; zero writes unconditionally.
	Save(ctx context.Context, payload []byte, baseVersion int64) (int64, error)
}

// Repository keeps the document in a single gorm row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Load(ctx context.Context) (*models.SiteDocument, error) {
	var doc models.SiteDocument
	err := r.db.WithContext(ctx).Where("name = ?", models.SiteDocumentName).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load site document: %w", err)
	}
	return &doc, nil
}

func (r *Repository) Save(ctx context.Context, payload []byte, baseVersion int64) (int64, error) {
	var version int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.SiteDocument
		err := tx.Where("name = ?", models.SiteDocumentName).First(&doc).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if baseVersion > 0 {
				return ErrVersionConflict
			}
			doc = models.SiteDocument{
				Name:    models.SiteDocumentName,
				Payload: datatypes.JSON(payload),
				Version: 1,
			}
			if err := tx.Create(&doc).Error; err != nil {
				return err
			}
			version = doc.Version
			return nil
		}
		if err != nil {
			return err
		}

		if baseVersion > 0 && baseVersion != doc.Version {
			return ErrVersionConflict
		}

		// guard on the version we read so a concurrent writer cannot slip in
		res := tx.Model(&models.SiteDocument{}).
			Where("name = ? AND version = ?", models.SiteDocumentName, doc.Version).
			Updates(map[string]interface{}{
				"payload": datatypes.JSON(payload),
				"version": doc.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		version = doc.Version + 1
		return nil
	})

	if errors.Is(err, ErrVersionConflict) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("save site document: %w", err)
	}
	return version, nil
}
