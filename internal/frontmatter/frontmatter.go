// Package frontmatter splits a YAML metadata header from Markdown content.
package frontmatter

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Metadata is the open key/value mapping parsed from a front matter block.
// The schema is deliberately untyped: documents may carry arbitrary keys and
// callers project only the ones they know.
type Metadata map[string]any

// String returns the value for key if it is present and a string.
func (m Metadata) String(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Date returns the value for key rendered as a YYYY-MM-DD date string.
// yaml.v3 resolves unquoted ISO dates to time.Time, so both scalar strings
// and timestamp values are accepted.
func (m Metadata) Date(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	switch v := m[key].(type) {
	case string:
		return v, true
	case time.Time:
		return v.Format("2006-01-02"), true
	default:
		return "", false
	}
}

// StringList returns the value for key as a string slice. A YAML list
// yields its string items; a scalar string yields a one-element slice.
func (m Metadata) StringList(key string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	raw, ok := m[key]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []string{}, true
		}
		return []string{s}, true
	default:
		return nil, false
	}
}

// Parse separates a YAML front matter block (between leading --- delimiter
// lines) from the Markdown body. The opening delimiter must be the very
// first line of the file. A missing header, a missing closing delimiter, or
// unparseable YAML all degrade to nil metadata with the entire content as
// body; a malformed header never fails the caller.
func Parse(data []byte) (Metadata, string) {
	const delim = "---"

	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, string(data)
	}
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if strings.TrimRight(string(firstLine), "\r") != delim {
		return nil, string(data)
	}

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var meta Metadata
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		// Invalid YAML: fall back to treating everything as body.
		return nil, string(data)
	}
	return meta, body
}
