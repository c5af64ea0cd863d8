package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"video-library/internal/notify"
	"video-library/internal/video"
)

func (d *Database) loadPropTypes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT name, type, multiple, default_value FROM prop_types")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pt       PropType
			typeName string
			def      sql.NullString
		)
		if err := rows.Scan(&pt.Name, &typeName, &pt.Multiple, &def); err != nil {
			return err
		}
		if pt.Type, err = ParseValueType(typeName); err != nil {
			return fmt.Errorf("property %s: %w", pt.Name, err)
		}
		if def.Valid && !pt.Multiple {
			if pt.Default, err = pt.Type.parse(def.String); err != nil {
				return fmt.Errorf("property %s default: %w", pt.Name, err)
			}
		}
		d.propTypes[pt.Name] = &pt
	}
	return rows.Err()
}

// CreatePropType adds a property type. Single-valued types without a
// default get the zero value of their type; multiple types have none.
func (d *Database) CreatePropType(ctx context.Context, pt PropType) (err error) {
	start := time.Now()
	defer func() { recordQuery("create_prop_type", start, err) }()

	pt.Name = strings.TrimSpace(pt.Name)
	if pt.Name == "" || video.IsField(pt.Name) {
		return fmt.Errorf("%w: property name %q is empty or a built-in field", ErrInvalidValue, pt.Name)
	}
	if _, err := ParseValueType(string(pt.Type)); err != nil {
		return err
	}
	var def sql.NullString
	switch {
	case pt.Multiple:
		pt.Default = nil
	case pt.Default == nil:
		pt.Default = pt.Type.Zero()
		def = sql.NullString{String: pt.Type.format(pt.Default), Valid: true}
	default:
		if pt.Default, err = pt.Type.Convert(pt.Default); err != nil {
			return err
		}
		def = sql.NullString{String: pt.Type.format(pt.Default), Valid: true}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.propTypes[pt.Name]; exists {
		return fmt.Errorf("%w: property %q already exists", ErrInvalidValue, pt.Name)
	}
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO prop_types (name, type, multiple, default_value) VALUES (?, ?, ?, ?)",
			pt.Name, string(pt.Type), pt.Multiple, def)
		return err
	})
	if err != nil {
		return err
	}
	d.propTypes[pt.Name] = &pt
	return nil
}

// PropTypes returns the property types ordered by name.
func (d *Database) PropTypes() []PropType {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]PropType, 0, len(d.propTypes))
	for _, pt := range d.propTypes {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PropType returns the type of property name.
func (d *Database) PropType(name string) (PropType, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pt, ok := d.propTypes[name]
	if !ok {
		return PropType{}, false
	}
	return *pt, true
}

// HasPropType reports whether property name exists with the given
// multiplicity.
func (d *Database) HasPropType(name string, multiple bool) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pt, ok := d.propTypes[name]
	return ok && pt.Multiple == multiple
}

// GetPropValues returns the values of property name on v. With withDefault,
// an unset single-valued property yields its default.
func (d *Database) GetPropValues(v *video.Video, name string, withDefault bool) []video.Value {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if values := v.Properties[name]; len(values) > 0 {
		return append([]video.Value(nil), values...)
	}
	if pt, ok := d.propTypes[name]; withDefault && ok && !pt.Multiple {
		return []video.Value{pt.Default}
	}
	return nil
}

// SetProperty replaces the values of property name on a video. An empty
// values list clears the property.
func (d *Database) SetProperty(ctx context.Context, id int, name string, values []video.Value) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_property", start, err) }()

	d.mu.Lock()
	v, ok := d.videos[id]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	converted, err := d.convertValues(name, values)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	err = d.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM video_properties WHERE video_id = ? AND name = ?", id, name); err != nil {
			return err
		}
		return d.insertValues(ctx, tx, id, name, converted)
	})
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if len(converted) == 0 {
		delete(v.Properties, name)
	} else {
		v.Properties[name] = converted
	}
	v.Terms = video.ComputeTerms(v)
	d.index.UpdateVideo(v)
	d.mu.Unlock()

	d.hub.Publish(notify.PropertiesModified{Names: []string{name}})
	return nil
}

// convertValues checks values against the type of property name and
// removes duplicates. Callers hold d.mu.
func (d *Database) convertValues(name string, values []video.Value) ([]video.Value, error) {
	pt, ok := d.propTypes[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownProperty)
	}
	if !pt.Multiple && len(values) > 1 {
		return nil, fmt.Errorf("%w: %s takes a single value, got %d", ErrInvalidValue, name, len(values))
	}
	out := make([]video.Value, 0, len(values))
	seen := make(map[video.Value]bool, len(values))
	for _, value := range values {
		c, err := pt.Type.Convert(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// normalizeProperties converts the property values of a new video in
// place. Callers hold d.mu.
func (d *Database) normalizeProperties(v *video.Video) error {
	props := make(map[string][]video.Value, len(v.Properties))
	for name, values := range v.Properties {
		converted, err := d.convertValues(name, values)
		if err != nil {
			return err
		}
		if len(converted) > 0 {
			props[name] = converted
		}
	}
	v.Properties = props
	return nil
}

func (d *Database) insertValues(ctx context.Context, tx *sql.Tx, id int, name string, values []video.Value) error {
	pt := d.propTypes[name]
	for i, value := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO video_properties (video_id, name, position, value) VALUES (?, ?, ?, ?)",
			id, name, i, pt.Type.format(value)); err != nil {
			return fmt.Errorf("insert %s of video %d: %w", name, id, err)
		}
	}
	return nil
}
