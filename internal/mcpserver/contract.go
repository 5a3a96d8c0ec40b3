package mcpserver

// FrontMatterContract describes the front matter conventions the catalog
// understands. LLM consumers should follow it when authoring documents so
// their records are fully populated instead of falling back to defaults.
const FrontMatterContract = `# Othala Front Matter Contract

Documents are plain Markdown files grouped into category directories. An
optional YAML front matter block at the very start of the file supplies
catalog metadata.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # optional – falls back to the filename
description: One-line summary       # optional – falls back to a placeholder
author: Jane Doe                    # optional – enriched profile only
created: 2025-01-15                 # optional – enriched profile only
tags:                               # optional – enriched profile only
  - tag-one
  - tag-two
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The opening ` + "`---`" + ` must be the first line of the file; the block ends at
   the next ` + "`---`" + ` line.
2. Unknown keys are allowed and ignored; the schema is open.
3. A missing or malformed block is not an error: the document is cataloged
   with defaults (title from filename, placeholder description).
4. The ` + "`link`" + ` and ` + "`category`" + ` record fields are always derived from the
   file location on disk; front matter cannot override them.
5. Files must end with ` + "`.md`" + ` (case-sensitive) and sit directly inside a
   category directory; subdirectories are not scanned.
`
