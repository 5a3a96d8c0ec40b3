package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/othala/internal/storage"
)

var fixedTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func testCorpus(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func writeDoc(t *testing.T, root, category, name, content string) {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_Scenario(t *testing.T) {
	// Category "a" has one document with front matter and one without;
	// category "b" does not exist on disk.
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "x.md", "---\ntitle: X\ntags:\n  - one\n  - two\n---\nBody of x.\n")
	writeDoc(t, root, "a", "y.md", "Plain body, no front matter.\n")

	b := NewBuilder(store, Options{Categories: []string{"a", "b"}, Enrich: true}, fixedClock)
	cat, entries, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	recs := cat.Records["a"]
	if len(recs) != 2 {
		t.Fatalf("len(a) = %d, want 2", len(recs))
	}

	x := recs[0]
	if x.Filename != "x.md" || x.Title != "X" || x.Link != "a/x.md" {
		t.Errorf("x = %+v", x)
	}
	if x.Description != DefaultDescription {
		t.Errorf("x.Description = %q, want placeholder", x.Description)
	}
	if len(x.Tags) != 2 || x.Tags[0] != "one" || x.Tags[1] != "two" {
		t.Errorf("x.Tags = %v, want [one two]", x.Tags)
	}

	y := recs[1]
	if y.Filename != "y.md" || y.Title != "y" || y.Link != "a/y.md" {
		t.Errorf("y = %+v", y)
	}
	if y.Description != DefaultDescription {
		t.Errorf("y.Description = %q, want placeholder", y.Description)
	}
	if y.Tags == nil || len(y.Tags) != 0 {
		t.Errorf("y.Tags = %v, want empty non-nil slice", y.Tags)
	}

	if got, ok := cat.Records["b"]; !ok || len(got) != 0 {
		t.Errorf("absent category should yield an empty present sequence, got %v (ok=%v)", got, ok)
	}

	if cat.Count() != 2 || len(entries) != 2 {
		t.Errorf("count = %d, entries = %d, want 2/2", cat.Count(), len(entries))
	}
}

func TestBuild_TitleFallbackStripsExtension(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "prompts", "code-review.md", "no front matter\n")

	b := NewBuilder(store, Options{Categories: []string{"prompts"}}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Records["prompts"][0].Title; got != "code-review" {
		t.Errorf("title = %q, want %q", got, "code-review")
	}
}

func TestBuild_EmptyTitleFallsBack(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "prompts", "empty.md", "---\ntitle: \"\"\n---\nBody\n")

	b := NewBuilder(store, Options{Categories: []string{"prompts"}}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Records["prompts"][0].Title; got != "empty" {
		t.Errorf("title = %q, want filename fallback", got)
	}
}

func TestBuild_MetadataCannotOverrideDerivedFields(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "bar", "foo.md",
		"---\nlink: evil/override.md\ncategory: evil\nfilename: evil.md\n---\nBody\n")

	b := NewBuilder(store, Options{Categories: []string{"bar"}, EmitCategory: true}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	rec := cat.Records["bar"][0]
	if rec.Link != "bar/foo.md" {
		t.Errorf("link = %q, want %q", rec.Link, "bar/foo.md")
	}
	if rec.Category != "bar" {
		t.Errorf("category = %q, want %q", rec.Category, "bar")
	}
	if rec.Filename != "foo.md" {
		t.Errorf("filename = %q, want %q", rec.Filename, "foo.md")
	}
}

func TestBuild_MalformedFrontMatterFallsBackToDefaults(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "bad.md", "---\n: not: valid: {{{\n---\nBody\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatalf("malformed front matter must not abort the run: %v", err)
	}
	rec := cat.Records["a"][0]
	if rec.Title != "bad" || rec.Description != DefaultDescription {
		t.Errorf("rec = %+v, want full defaults", rec)
	}
}

func TestBuild_QuoteWrappedDescription(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "d.md", "---\ndescription: A helper prompt\n---\nBody\n")
	writeDoc(t, root, "a", "nodesc.md", "Body only\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}, QuoteDescription: true}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Records["a"][0].Description; got != `"A helper prompt"` {
		t.Errorf("description = %q, want quote-wrapped value", got)
	}
	// The wrapping is an output projection of the final value, so the
	// placeholder is wrapped too.
	if got := cat.Records["a"][1].Description; got != `"`+DefaultDescription+`"` {
		t.Errorf("default description = %q, want quote-wrapped placeholder", got)
	}
}

func TestBuild_EnrichmentDefaults(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "plain.md", "Body only\n")
	writeDoc(t, root, "a", "rich.md",
		"---\nauthor: Jane\ncreated: 2024-12-01\ntags:\n  - t1\n---\nBody\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}, Enrich: true}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	plain := cat.Records["a"][0]
	if plain.Author != DefaultAuthor {
		t.Errorf("author = %q, want %q", plain.Author, DefaultAuthor)
	}
	if plain.Created != "2025-01-15" {
		t.Errorf("created = %q, want build date", plain.Created)
	}
	if plain.Tags == nil || len(plain.Tags) != 0 {
		t.Errorf("tags = %v, want empty non-nil slice", plain.Tags)
	}

	rich := cat.Records["a"][1]
	if rich.Author != "Jane" || rich.Created != "2024-12-01" {
		t.Errorf("rich = %+v", rich)
	}
	if len(rich.Tags) != 1 || rich.Tags[0] != "t1" {
		t.Errorf("rich.Tags = %v", rich.Tags)
	}
}

func TestBuild_NoEnrichmentOmitsFields(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "x.md", "---\nauthor: Jane\ntags: [t1]\n---\nBody\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	rec := cat.Records["a"][0]
	if rec.Author != "" || rec.Created != "" || rec.Tags != nil {
		t.Errorf("basic profile must not project enrichment fields: %+v", rec)
	}
	out, _ := json.Marshal(rec)
	for _, field := range []string{"author", "created", "tags", "category"} {
		if bytes.Contains(out, []byte(`"`+field+`"`)) {
			t.Errorf("field %q present in basic output: %s", field, out)
		}
	}
}

func TestBuild_GeneratedTimestamp(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "x.md", "Body\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}, EmitGenerated: true}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if cat.Generated != "2025-01-15T10:30:00Z" {
		t.Errorf("generated = %q", cat.Generated)
	}

	b2 := NewBuilder(store, Options{Categories: []string{"a"}}, fixedClock)
	cat2, _, _ := b2.Build()
	if cat2.Generated != "" {
		t.Errorf("generated should be absent when not configured, got %q", cat2.Generated)
	}
}

func TestBuild_IdempotentOutput(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "x.md", "---\ntitle: X\n---\nBody\n")
	writeDoc(t, root, "b", "y.md", "Body\n")

	opts := Options{Categories: []string{"a", "b"}, EmitGenerated: true, Enrich: true}
	b := NewBuilder(store, opts, fixedClock)

	cat1, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cat2, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	out1, _ := cat1.Encode()
	out2, _ := cat2.Encode()
	if !bytes.Equal(out1, out2) {
		t.Errorf("rebuilding an unchanged corpus must be byte-identical:\n%s\n---\n%s", out1, out2)
	}
}

func TestBuild_FileOrderPreserved(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "c.md", "c")
	writeDoc(t, root, "a", "a.md", "a")
	writeDoc(t, root, "a", "b.md", "b")

	b := NewBuilder(store, Options{Categories: []string{"a"}}, fixedClock)
	cat, _, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	recs := cat.Records["a"]
	if recs[0].Filename != "a.md" || recs[1].Filename != "b.md" || recs[2].Filename != "c.md" {
		t.Errorf("records out of directory-listing order: %+v", recs)
	}
}

func TestBuild_EntriesCarryBodyAndChecksum(t *testing.T) {
	root, store := testCorpus(t)
	writeDoc(t, root, "a", "x.md", "---\ntitle: X\n---\nThe body.\n")

	b := NewBuilder(store, Options{Categories: []string{"a"}}, fixedClock)
	_, entries, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	e := entries[0]
	if e.Body != "The body.\n" {
		t.Errorf("body = %q", e.Body)
	}
	if e.Checksum == "" || e.Category != "a" {
		t.Errorf("entry = %+v", e)
	}
}
