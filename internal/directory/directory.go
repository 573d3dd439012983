// Package directory stores the businesses that own public review pages.
package directory

import (
	"context"
	"time"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/ident"
	"reviewgate/internal/models"
	"reviewgate/internal/normalize"
	"reviewgate/internal/storage"
)

// Directory reads and writes the businesses partition. Every read passes
// through the normalization layer, so stored drift is rewritten on access.
type Directory struct {
	businesses *normalize.Collection[models.Business]
	log        logger.Logger
	now        func() time.Time
}

// New creates a Directory. seed is written when the partition is empty.
func New(parts *storage.Partitions, seed []models.Business, log logger.Logger) *Directory {
	return &Directory{
		businesses: normalize.NewCollection(parts, storage.PartitionBusinesses, normalize.DecodeBusinesses(seed)),
		log:        logger.Component(log, "directory"),
		now:        time.Now,
	}
}

// List returns every business in canonical form.
func (d *Directory) List(ctx context.Context) ([]models.Business, error) {
	return d.businesses.Load(ctx)
}

// BySlug looks a business up by its slug. The input is normalized first, so
// "Sunrise Cafe" finds "sunrise-cafe".
func (d *Directory) BySlug(ctx context.Context, slug string) (models.Business, bool, error) {
	want := ident.Slug(slug)
	return d.find(ctx, func(b models.Business) bool { return want != "" && b.Slug == want })
}

// ByID looks a business up by id.
func (d *Directory) ByID(ctx context.Context, id string) (models.Business, bool, error) {
	return d.find(ctx, func(b models.Business) bool { return b.ID == id })
}

func (d *Directory) find(ctx context.Context, match func(models.Business) bool) (models.Business, bool, error) {
	items, err := d.businesses.Load(ctx)
	if err != nil {
		return models.Business{}, false, err
	}
	for _, b := range items {
		if match(b) {
			return b, true, nil
		}
	}
	return models.Business{}, false, nil
}

// IsSlugAvailable reports whether slug is free for the business excludeID.
// An empty slug is never available.
func (d *Directory) IsSlugAvailable(ctx context.Context, slug, excludeID string) (bool, error) {
	want := ident.Slug(slug)
	if want == "" {
		return false, nil
	}
	items, err := d.businesses.Load(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range items {
		if b.Slug == want && b.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

// Save normalizes b and upserts it by id. It does not check slug
// uniqueness; callers run IsSlugAvailable (or use SaveChecked) first.
func (d *Directory) Save(ctx context.Context, b models.Business) (models.Business, error) {
	if b.ID == "" {
		b.ID = ident.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = d.now().UTC()
	}
	saved := normalize.NormalizeBusiness(b)

	err := d.businesses.Mutate(ctx, func(items []models.Business) ([]models.Business, bool, error) {
		for i := range items {
			if items[i].ID == saved.ID {
				items[i] = saved
				return items, true, nil
			}
		}
		return append(items, saved), true, nil
	})
	if err != nil {
		return models.Business{}, err
	}

	d.log.Debug("business saved", map[string]interface{}{"businessId": saved.ID, "slug": saved.Slug})
	return saved, nil
}

// SaveChecked is the settings-screen path: validate, require a free slug,
// then Save.
func (d *Directory) SaveChecked(ctx context.Context, b models.Business) (models.Business, error) {
	candidate := normalize.NormalizeBusiness(b)
	if err := Validate(candidate); err != nil {
		return models.Business{}, err
	}
	ok, err := d.IsSlugAvailable(ctx, candidate.Slug, b.ID)
	if err != nil {
		return models.Business{}, err
	}
	if !ok {
		return models.Business{}, errors.NewSlugUnavailableError(candidate.Slug)
	}
	return d.Save(ctx, b)
}
