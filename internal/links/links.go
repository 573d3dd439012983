// Package links manages the per-business attribution sources (QR codes,
// email footers) whose tokens tag scan, redirect and feedback events.
//
// Source uniqueness within a business is a caller contract. The registry
// stores duplicates as given; callers check IsSourceAvailable first.
package links

import (
	"context"
	"time"

	"reviewgate/internal/common/logger"
	"reviewgate/internal/ident"
	"reviewgate/internal/models"
	"reviewgate/internal/normalize"
	"reviewgate/internal/storage"
)

// Result reports whether an id-addressed operation found its target.
type Result struct {
	Found   bool
	Mutated bool
}

// LinkUpdate carries the fields to change; nil leaves a field untouched.
type LinkUpdate struct {
	Label  *string
	Source *string
}

// Registry reads and writes the links partition.
type Registry struct {
	links *normalize.Collection[models.LinkEntry]
	log   logger.Logger
	now   func() time.Time
}

// New creates a Registry. seed supplies the demo links written when the
// partition has never been stored.
func New(parts *storage.Partitions, seed func() []models.LinkEntry, log logger.Logger) *Registry {
	if seed == nil {
		seed = func() []models.LinkEntry { return []models.LinkEntry{} }
	}
	return &Registry{
		links: normalize.NewCollection(parts, storage.PartitionLinks, normalize.DecodeLinks(seed)),
		log:   logger.Component(log, "links"),
		now:   time.Now,
	}
}

// List returns the links of businessID, or every link when it is empty.
func (r *Registry) List(ctx context.Context, businessID string) ([]models.LinkEntry, error) {
	items, err := r.links.Load(ctx)
	if err != nil {
		return nil, err
	}
	if businessID == "" {
		return items, nil
	}
	out := make([]models.LinkEntry, 0, len(items))
	for _, l := range items {
		if l.BusinessID == businessID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Add stores a new link. An empty source is derived from the label.
func (r *Registry) Add(ctx context.Context, businessID, label, source string) (models.LinkEntry, error) {
	if source == "" {
		source = label
	}
	link := models.LinkEntry{
		ID:         ident.NewID(),
		BusinessID: businessID,
		Label:      label,
		Source:     ident.SourceToken(source),
		CreatedAt:  r.now().UTC(),
	}

	err := r.links.Mutate(ctx, func(items []models.LinkEntry) ([]models.LinkEntry, bool, error) {
		return append(items, link), true, nil
	})
	if err != nil {
		return models.LinkEntry{}, err
	}

	r.log.Debug("link added", map[string]interface{}{"businessId": businessID, "source": link.Source})
	return link, nil
}

// Update changes the label and/or source of one link. A new source is
// passed through the source token transform.
func (r *Registry) Update(ctx context.Context, id string, upd LinkUpdate) (Result, error) {
	var res Result
	err := r.links.Mutate(ctx, func(items []models.LinkEntry) ([]models.LinkEntry, bool, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			res.Found = true
			if upd.Label != nil {
				items[i].Label = *upd.Label
			}
			if upd.Source != nil {
				items[i].Source = ident.SourceToken(*upd.Source)
			}
			res.Mutated = upd.Label != nil || upd.Source != nil
			return items, res.Mutated, nil
		}
		return items, false, nil
	})
	return res, err
}

// Delete removes a link. Events and feedback keep the source string.
func (r *Registry) Delete(ctx context.Context, id string) (Result, error) {
	var res Result
	err := r.links.Mutate(ctx, func(items []models.LinkEntry) ([]models.LinkEntry, bool, error) {
		out := items[:0]
		for _, l := range items {
			if l.ID == id {
				res.Found = true
				continue
			}
			out = append(out, l)
		}
		res.Mutated = res.Found
		return out, res.Found, nil
	})
	return res, err
}

// IsSourceAvailable reports whether source is unused within businessID,
// ignoring the link excludeID. An empty token is never available.
func (r *Registry) IsSourceAvailable(ctx context.Context, businessID, source, excludeID string) (bool, error) {
	token := ident.SourceToken(source)
	if token == "" {
		return false, nil
	}
	items, err := r.List(ctx, businessID)
	if err != nil {
		return false, err
	}
	for _, l := range items {
		if l.Source == token && l.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

// LabelFor resolves a source token to its link label, falling back to the
// token itself for deleted or ad-hoc sources.
func (r *Registry) LabelFor(ctx context.Context, businessID, source string) (string, error) {
	if source == "" {
		return "", nil
	}
	items, err := r.List(ctx, businessID)
	if err != nil {
		return "", err
	}
	for _, l := range items {
		if l.Source == source {
			return l.Label, nil
		}
	}
	return source, nil
}

// Labels returns a source → label map for businessID.
func (r *Registry) Labels(ctx context.Context, businessID string) (map[string]string, error) {
	items, err := r.List(ctx, businessID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, l := range items {
		if _, ok := out[l.Source]; !ok {
			out[l.Source] = l.Label
		}
	}
	return out, nil
}

// PublicURL builds the public review URL printed on a link's QR code.
func PublicURL(origin string, business models.Business, link models.LinkEntry) string {
	return ident.PublicURL(origin, business.Slug, link.Source)
}
