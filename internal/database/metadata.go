package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/logging"
	"video-library/internal/metrics"
	"video-library/internal/video"
)

const indexKey = "term_index"

// GetMetadata retrieves a metadata value by key.
// Returns ErrNotFound if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value []byte
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metadata %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// loadIndex restores the persisted term index, forgets videos deleted since
// it was written and indexes the rest incrementally.
func (d *Database) loadIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("load_index", start, err) }()

	blob, err := d.GetMetadata(ctx, indexKey)
	switch {
	case errors.Is(err, ErrNotFound):
		logging.Info("No persisted term index, building from scratch")
	case err != nil:
		return err
	default:
		if decodeErr := d.index.UnmarshalBinary(blob); decodeErr != nil {
			logging.Warn("Discarding persisted term index: %v", decodeErr)
			d.index = indexer.New()
		}
	}

	keep := make(indexer.Set, len(d.videos))
	for filename := range d.byFilename {
		keep[filename] = struct{}{}
	}
	dropped := d.index.Retain(keep)

	buildStart := time.Now()
	added := 0
	for _, v := range d.videos {
		if !d.index.IsIndexed(v.Filename) {
			added++
		}
		d.index.UpdateVideo(v)
	}
	metrics.IndexBuildDuration.Observe(time.Since(buildStart).Seconds())
	metrics.IndexVideosAdded.Add(float64(added))

	logging.Info("Term index ready: %d videos, %d terms (%d added, %d dropped)",
		d.index.Len(), d.index.TermCount(), added, dropped)
	return nil
}

// SaveIndex persists the term index.
func (d *Database) SaveIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("save_index", start, err) }()

	d.mu.RLock()
	blob, err := d.index.MarshalBinary()
	d.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := d.SetMetadata(ctx, indexKey, blob); err != nil {
		return fmt.Errorf("save term index: %w", err)
	}
	logging.Debug("Saved term index (%d bytes)", len(blob))
	return nil
}

// Reindex recomputes every video's terms, rebuilds the term index from
// scratch and persists it. It returns the number of indexed videos.
func (d *Database) Reindex(ctx context.Context) (int, error) {
	d.mu.Lock()
	start := time.Now()
	idx := indexer.New()
	idx.SetOnProgress(func(done, total int) {
		logging.Info("Reindexing: %d/%d", done, total)
	})
	all := make([]*video.Video, 0, len(d.videos))
	for _, v := range d.videos {
		v.Terms = video.ComputeTerms(v)
		all = append(all, v)
	}
	added := idx.Build(all)
	d.index = idx
	d.mu.Unlock()

	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexVideosAdded.Add(float64(added))

	return added, d.SaveIndex(ctx)
}
