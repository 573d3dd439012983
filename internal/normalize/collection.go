package normalize

import (
	"bytes"
	"context"
	"encoding/json"

	"reviewgate/internal/models"
	"reviewgate/internal/storage"
)

// Migration explains why a partition has to be written back after a read.
type Migration string

const (
	MigrationNone      Migration = ""
	MigrationSeeded    Migration = "seeded"
	MigrationCorrupt   Migration = "corrupt"
	MigrationCanonical Migration = "canonical"
)

// Decoder turns a stored partition document into typed items.
type Decoder[T any] func(data []byte, found bool) ([]T, Migration)

// decodeList is the shared migration step: missing documents take the
// fallback, unparsable or non-array documents take the fallback and are
// marked corrupt, and parsable documents are rewritten whenever their
// canonical encoding differs from what was stored.
func decodeList[T any](data []byte, found bool, fallback func() []T, onMissing Migration,
	item func(map[string]interface{}) (T, bool)) ([]T, Migration) {
	if !found {
		return fallback(), onMissing
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fallback(), MigrationCorrupt
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return fallback(), MigrationCorrupt
	}

	items := make([]T, 0, len(arr))
	for _, entry := range arr {
		obj := object(entry)
		if obj == nil {
			continue
		}
		if v, ok := item(obj); ok {
			items = append(items, v)
		}
	}

	canonical, err := json.Marshal(items)
	if err != nil || !bytes.Equal(canonical, bytes.TrimSpace(data)) {
		return items, MigrationCanonical
	}
	return items, MigrationNone
}

// DecodeBusinesses seeds a missing or corrupt partition with seed.
func DecodeBusinesses(seed []models.Business) Decoder[models.Business] {
	fallback := func() []models.Business {
		out := make([]models.Business, len(seed))
		for i, b := range seed {
			out[i] = NormalizeBusiness(b)
		}
		return out
	}
	return func(data []byte, found bool) ([]models.Business, Migration) {
		return decodeList(data, found, fallback, MigrationSeeded, func(m map[string]interface{}) (models.Business, bool) {
			return Business(m), true
		})
	}
}

// DecodeFeedback treats a missing partition as empty.
func DecodeFeedback(data []byte, found bool) ([]models.Feedback, Migration) {
	return decodeList(data, found, emptyFeedback, MigrationNone, func(m map[string]interface{}) (models.Feedback, bool) {
		return Feedback(m), true
	})
}

// DecodeLinks seeds a missing partition with seed and empties a corrupt one.
func DecodeLinks(seed func() []models.LinkEntry) Decoder[models.LinkEntry] {
	return func(data []byte, found bool) ([]models.LinkEntry, Migration) {
		if !found {
			return seed(), MigrationSeeded
		}
		return decodeList(data, found, emptyLinks, MigrationNone, Link)
	}
}

// DecodeEvents treats a missing partition as empty.
func DecodeEvents(data []byte, found bool) ([]models.ReviewEvent, Migration) {
	return decodeList(data, found, emptyEvents, MigrationNone, Event)
}

func emptyFeedback() []models.Feedback  { return []models.Feedback{} }
func emptyLinks() []models.LinkEntry    { return []models.LinkEntry{} }
func emptyEvents() []models.ReviewEvent { return []models.ReviewEvent{} }

// Collection binds a storage partition to its decoder. Every access runs the
// migration step and writes the canonical form back when it changed.
type Collection[T any] struct {
	parts  *storage.Partitions
	part   storage.Partition
	decode Decoder[T]
}

func NewCollection[T any](parts *storage.Partitions, part storage.Partition, decode Decoder[T]) *Collection[T] {
	return &Collection[T]{parts: parts, part: part, decode: decode}
}

// Load returns the decoded items.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	var items []T
	err := c.Mutate(ctx, func(current []T) ([]T, bool, error) {
		items = current
		return current, false, nil
	})
	return items, err
}

// Mutate applies fn to the decoded items under the partition lock. The
// result is persisted when fn reports a change or the read needed migrating.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	return c.parts.Update(ctx, c.part, func(data []byte, found bool) ([]byte, bool, error) {
		items, migration := c.decode(data, found)

		next, changed, err := fn(items)
		if err != nil {
			return nil, false, err
		}
		if !changed && migration == MigrationNone {
			return nil, false, nil
		}
		if migration != MigrationNone {
			c.parts.MarkHealed(c.part, string(migration))
		}
		if next == nil {
			next = []T{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	})
}
