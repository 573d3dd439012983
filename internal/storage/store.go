// Package storage persists the four engine partitions (businesses, feedback,
// links, events) as whole JSON documents in a key-value medium.
package storage

import (
	"context"
	"sync"
	"time"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/metrics"
)

// Partition names one stored collection.
type Partition string

const (
	PartitionBusinesses Partition = "businesses"
	PartitionFeedback   Partition = "feedback"
	PartitionLinks      Partition = "links"
	PartitionEvents     Partition = "events"
)

// DefaultPrefix matches the keys written by earlier releases.
const DefaultPrefix = "rf_"

// Store is the key-value medium. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Backend() string
}

// UpdateFunc receives the current partition document and returns the
// document to persist. Returning write=false leaves storage untouched.
type UpdateFunc func(data []byte, found bool) (out []byte, write bool, err error)

// Partitions serializes read-modify-write cycles per partition within one
// process. It makes no guarantee across processes sharing the same Store.
type Partitions struct {
	store  Store
	prefix string
	log    logger.Logger

	mu    sync.Mutex
	locks map[Partition]*sync.Mutex
}

// NewPartitions wraps store. An empty prefix uses DefaultPrefix.
func NewPartitions(store Store, prefix string, log logger.Logger) *Partitions {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Partitions{
		store:  store,
		prefix: prefix,
		log:    logger.Component(log, "storage").WithFields(map[string]interface{}{"backend": store.Backend()}),
		locks:  make(map[Partition]*sync.Mutex),
	}
}

// Key returns the storage key of a partition.
func (p *Partitions) Key(part Partition) string {
	return p.prefix + string(part)
}

func (p *Partitions) lock(part Partition) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[part]
	if !ok {
		l = &sync.Mutex{}
		p.locks[part] = l
	}
	return l
}

// Update runs fn against the partition while holding its lock.
func (p *Partitions) Update(ctx context.Context, part Partition, fn UpdateFunc) error {
	l := p.lock(part)
	l.Lock()
	defer l.Unlock()

	data, found, err := p.get(ctx, part)
	if err != nil {
		return err
	}

	out, write, err := fn(data, found)
	if err != nil || !write {
		return err
	}
	return p.set(ctx, part, out)
}

// Read returns the raw partition document.
func (p *Partitions) Read(ctx context.Context, part Partition) ([]byte, bool, error) {
	l := p.lock(part)
	l.Lock()
	defer l.Unlock()
	return p.get(ctx, part)
}

// MarkHealed records a canonical rewrite of a partition.
func (p *Partitions) MarkHealed(part Partition, reason string) {
	metrics.StorageHeals.WithLabelValues(string(part), reason).Inc()
	p.log.Info("partition rewritten in canonical form", map[string]interface{}{
		"partition": string(part),
		"reason":    reason,
	})
}

func (p *Partitions) get(ctx context.Context, part Partition) ([]byte, bool, error) {
	start := time.Now()
	data, found, err := p.store.Get(ctx, p.Key(part))
	p.observe(part, "get", start, err)
	if err != nil {
		p.log.Error("partition read failed", map[string]interface{}{"partition": string(part), "error": err})
		return nil, false, errors.NewStorageReadError(p.Key(part), err)
	}
	return data, found, nil
}

func (p *Partitions) set(ctx context.Context, part Partition, data []byte) error {
	start := time.Now()
	err := p.store.Set(ctx, p.Key(part), data)
	p.observe(part, "set", start, err)
	if err != nil {
		p.log.Error("partition write failed", map[string]interface{}{"partition": string(part), "error": err})
		return errors.NewStorageWriteError(p.Key(part), err)
	}
	return nil
}

func (p *Partitions) observe(part Partition, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backend := p.store.Backend()
	metrics.StorageOperations.WithLabelValues(backend, string(part), op, outcome).Inc()
	metrics.StorageLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
