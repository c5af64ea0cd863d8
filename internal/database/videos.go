package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"video-library/internal/indexer"
	"video-library/internal/logging"
	"video-library/internal/notify"
	"video-library/internal/video"
)

const videoColumns = `id, filename, title, file_size, date, duration, width, height, frame_rate,
	video_codec, audio_codec, container_format, similarity_id, readable, found, discarded, with_thumbnails`

func (d *Database) load(ctx context.Context) error {
	if err := d.loadPropTypes(ctx); err != nil {
		return err
	}
	if err := d.loadVideos(ctx); err != nil {
		return err
	}
	if err := d.loadProperties(ctx); err != nil {
		return err
	}
	for _, v := range d.videos {
		v.Terms = video.ComputeTerms(v)
	}
	return d.loadIndex(ctx)
}

func (d *Database) loadVideos(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("load_videos", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT "+videoColumns+" FROM videos")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v          video.Video
			date       int64
			similarity sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.Filename, &v.Title, &v.FileSize, &date, &v.Duration,
			&v.Width, &v.Height, &v.FrameRate, &v.VideoCodec, &v.AudioCodec, &v.ContainerFormat,
			&similarity, &v.Readable, &v.Found, &v.Discarded, &v.WithThumbnails); err != nil {
			return err
		}
		v.Date = time.Unix(date, 0).UTC()
		if similarity.Valid {
			id := int(similarity.Int64)
			v.SimilarityID = &id
		}
		v.Properties = make(map[string][]video.Value)
		d.videos[v.ID] = &v
		d.byFilename[v.Filename] = &v
	}
	return rows.Err()
}

func (d *Database) loadProperties(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("load_videos", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT video_id, name, value FROM video_properties ORDER BY video_id, name, position")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          int
			name, value string
		)
		if err := rows.Scan(&id, &name, &value); err != nil {
			return err
		}
		v, ok := d.videos[id]
		pt, known := d.propTypes[name]
		if !ok || !known {
			logging.Warn("Skipping orphan property %s on video %d", name, id)
			continue
		}
		parsed, err := pt.Type.parse(value)
		if err != nil {
			logging.Warn("Skipping unreadable value %q of %s on video %d: %v", value, name, id, err)
			continue
		}
		v.Properties[name] = append(v.Properties[name], parsed)
	}
	return rows.Err()
}

// GetVideos returns the videos having every flag, ordered by id. Discarded
// videos are left out unless FlagDiscarded is requested.
func (d *Database) GetVideos(flags ...video.Flag) []*video.Video {
	d.mu.RLock()
	defer d.mu.RUnlock()

	matched := d.index.QueryFlags(d.index.Filenames(), flags, nil)
	out := make([]*video.Video, 0, len(matched))
	for filename := range matched {
		out = append(out, d.byFilename[filename])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetVideo returns the video with the given id.
func (d *Database) GetVideo(id int) (*video.Video, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	return v, nil
}

// Len returns the number of videos, discarded ones included.
func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.videos)
}

// AddVideos inserts videos, assigning their ids. Property values must match
// existing property types. Either every video is added or none is.
func (d *Database) AddVideos(ctx context.Context, videos []*video.Video) (err error) {
	start := time.Now()
	defer func() { recordQuery("add_video", start, err) }()

	d.mu.Lock()
	seen := make(map[string]bool, len(videos))
	for _, v := range videos {
		if v.Filename == "" {
			d.mu.Unlock()
			return fmt.Errorf("%w: empty filename", ErrInvalidValue)
		}
		if _, exists := d.byFilename[v.Filename]; exists || seen[v.Filename] {
			d.mu.Unlock()
			return fmt.Errorf("%s: %w", v.Filename, ErrDuplicateVideo)
		}
		seen[v.Filename] = true
		if err := d.normalizeProperties(v); err != nil {
			d.mu.Unlock()
			return fmt.Errorf("%s: %w", v.Filename, err)
		}
		if v.Date.IsZero() {
			v.Date = time.Now().UTC().Truncate(time.Second)
		}
	}

	ids := make([]int, len(videos))
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i, v := range videos {
			var similarity any
			if v.SimilarityID != nil {
				similarity = *v.SimilarityID
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO videos (filename, title, file_size, date, duration, width, height, frame_rate,
					video_codec, audio_codec, container_format, similarity_id, readable, found, discarded, with_thumbnails)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				v.Filename, v.Title, v.FileSize, v.Date.Unix(), v.Duration, v.Width, v.Height, v.FrameRate,
				v.VideoCodec, v.AudioCodec, v.ContainerFormat, similarity, v.Readable, v.Found, v.Discarded, v.WithThumbnails)
			if err != nil {
				return fmt.Errorf("insert %s: %w", v.Filename, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids[i] = int(id)
			for name, values := range v.Properties {
				if err := d.insertValues(ctx, tx, ids[i], name, values); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		d.mu.Unlock()
		return err
	}

	for i, v := range videos {
		v.ID = ids[i]
		v.Date = v.Date.UTC().Truncate(time.Second)
		v.Terms = video.ComputeTerms(v)
		d.videos[v.ID] = v
		d.byFilename[v.Filename] = v
		d.index.AddVideo(v)
	}
	d.mu.Unlock()

	logging.Info("Added %d videos", len(videos))
	d.hub.Publish(notify.VideosAdded{Videos: videos})
	return nil
}

// DeleteVideo removes a video and its property values.
func (d *Database) DeleteVideo(ctx context.Context, id int) (err error) {
	start := time.Now()
	defer func() { recordQuery("delete_video", start, err) }()

	d.mu.Lock()
	v, ok := d.videos[id]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM video_properties WHERE video_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
		return err
	})
	if err != nil {
		d.mu.Unlock()
		return err
	}
	delete(d.videos, id)
	delete(d.byFilename, v.Filename)
	d.index.RemoveFilename(v.Filename)
	d.mu.Unlock()

	logging.Info("Deleted video %d (%s)", id, v.Filename)
	d.hub.Publish(notify.VideoDeleted{Video: v})
	return nil
}

// flagColumn maps a flag to the column storing it and the column value the
// flag stands for.
func flagColumn(f video.Flag) (column string, positive bool, err error) {
	switch f {
	case video.FlagReadable:
		return video.FieldReadable, true, nil
	case video.FlagUnreadable:
		return video.FieldReadable, false, nil
	case video.FlagFound:
		return video.FieldFound, true, nil
	case video.FlagNotFound:
		return video.FieldFound, false, nil
	case video.FlagDiscarded:
		return video.FieldDiscarded, true, nil
	case video.FlagWithThumbnails:
		return video.FieldWithThumbnails, true, nil
	case video.FlagWithoutThumbnails:
		return video.FieldWithThumbnails, false, nil
	default:
		return "", false, fmt.Errorf("%w: unknown flag %q", ErrInvalidValue, f)
	}
}

// SetFlag sets flag f of a video to value.
func (d *Database) SetFlag(ctx context.Context, id int, f video.Flag, value bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_video", start, err) }()

	column, positive, err := flagColumn(f)
	if err != nil {
		return err
	}
	stored := value == positive

	d.mu.Lock()
	v, ok := d.videos[id]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	if v.Flag(f) == value {
		d.mu.Unlock()
		return nil
	}
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// column comes from flagColumn, never from input.
		_, err := tx.ExecContext(ctx, "UPDATE videos SET "+column+" = ? WHERE id = ?", stored, id)
		return err
	})
	if err != nil {
		d.mu.Unlock()
		return err
	}
	switch column {
	case video.FieldReadable:
		v.Readable = stored
	case video.FieldFound:
		v.Found = stored
	case video.FieldDiscarded:
		v.Discarded = stored
	case video.FieldWithThumbnails:
		v.WithThumbnails = stored
	}
	d.index.UpdateVideo(v)
	d.mu.Unlock()

	d.hub.Publish(notify.FieldsModified{Fields: []string{column}})
	return nil
}

// SetSimilarity sets or clears (nil) the similarity group of a video.
func (d *Database) SetSimilarity(ctx context.Context, id int, similarity *int) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_video", start, err) }()

	d.mu.Lock()
	v, ok := d.videos[id]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	var stored any
	if similarity != nil {
		stored = *similarity
	}
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE videos SET similarity_id = ? WHERE id = ?", stored, id)
		return err
	})
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if similarity != nil {
		s := *similarity
		v.SimilarityID = &s
	} else {
		v.SimilarityID = nil
	}
	d.mu.Unlock()

	d.hub.Publish(notify.FieldsModified{Fields: []string{video.FieldSimilarityID}})
	return nil
}

// Search filters candidates by text, scanning their terms.
func (d *Database) Search(text string, cond indexer.Cond, candidates []*video.Video) ([]*video.Video, error) {
	terms := video.Tokenize(text)
	var out []*video.Video
	for _, v := range candidates {
		ok, err := indexer.Match(v, terms, cond)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}
