// Package models defines the domain types for Othala.
package models

import (
	"bytes"
	"encoding/json"
)

// Record is the normalized view of one markdown document as it appears in
// the catalog. Filename and Link are always derived from the file on disk;
// front matter can never override them. Category, Author and Created are
// emitted only when non-empty. Tags distinguishes nil (field omitted, basic
// profile) from an empty non-nil slice (serialized as [], enriched profile).
type Record struct {
	Filename    string
	Title       string
	Description string
	Link        string
	Category    string
	Author      string
	Created     string
	Tags        []string
}

// MarshalJSON emits record fields in a fixed order so that rebuilding an
// unchanged corpus produces byte-identical output.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	field := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	if err := field("filename", r.Filename); err != nil {
		return nil, err
	}
	if err := field("title", r.Title); err != nil {
		return nil, err
	}
	if err := field("description", r.Description); err != nil {
		return nil, err
	}
	if err := field("link", r.Link); err != nil {
		return nil, err
	}
	if r.Category != "" {
		if err := field("category", r.Category); err != nil {
			return nil, err
		}
	}
	if r.Author != "" {
		if err := field("author", r.Author); err != nil {
			return nil, err
		}
	}
	if r.Created != "" {
		if err := field("created", r.Created); err != nil {
			return nil, err
		}
	}
	if r.Tags != nil {
		if err := field("tags", r.Tags); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Catalog is the aggregated output of one build: records grouped by
// category. Categories holds the configured category names in declaration
// order; serialization follows that order, not map iteration order.
// Generated, when set, is emitted as a top-level field before the
// categories.
type Catalog struct {
	Generated  string
	Categories []string
	Records    map[string][]Record
}

// NewCatalog creates an empty catalog for the given ordered category set.
// Every category is present from the start so that an absent directory
// still yields its key with an empty array.
func NewCatalog(categories []string) *Catalog {
	recs := make(map[string][]Record, len(categories))
	for _, c := range categories {
		recs[c] = []Record{}
	}
	return &Catalog{
		Categories: append([]string(nil), categories...),
		Records:    recs,
	}
}

// Append adds a record to the end of its category sequence.
func (c *Catalog) Append(category string, r Record) {
	c.Records[category] = append(c.Records[category], r)
}

// Count returns the total number of records across all categories.
func (c *Catalog) Count() int {
	n := 0
	for _, recs := range c.Records {
		n += len(recs)
	}
	return n
}

// MarshalJSON emits category keys in declaration order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	field := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	if c.Generated != "" {
		if err := field("generated", c.Generated); err != nil {
			return nil, err
		}
	}
	for _, cat := range c.Categories {
		recs := c.Records[cat]
		if recs == nil {
			recs = []Record{}
		}
		if err := field(cat, recs); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode serializes the catalog as indented JSON with a trailing newline,
// the exact byte form written to the output file.
func (c *Catalog) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
