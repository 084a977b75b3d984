package mcpserver

// CaptureContract describes the conventions MCP clients should follow when
// submitting notes, artifacts, and tasks.
const CaptureContract = `# Mythril Capture Contract

Every entity submitted through the Mythril tools follows these conventions.

## Projects

- A project is a slug: lowercase letters, digits, hyphen, underscore.
- Other characters are stripped and whitespace becomes a hyphen, so
  "My Project!" is stored as "my-project". A name that sanitizes to
  nothing is rejected.
- Task ids derive from the project: the slug is upper-cased, truncated to
  10 characters, and suffixed with a zero-padded per-project sequence
  number (e.g. MY-PROJECT-001). Ids are immutable.

## Tasks

- title: required, at most 200 characters.
- description: optional, at most 10000 characters.
- priority: LOW | NORMAL | HIGH | CRITICAL (default NORMAL).
- trust_level: THROWAWAY | PROTOTYPE | MATURE (default PROTOTYPE).
- A new task starts queued. At most one task per project is active at a
  time: activating a task demotes any other active task back to queued.
- completed and cancelled are terminal for activation purposes.

## Notes

- content: required free text.
- tags: optional, lowercase short strings; duplicates are dropped.

## Artifacts

- title and content: required.
- content_type: optional MIME type, default text/plain.

## Search

- Matching is case-insensitive substring containment, not full-text
  relevance. Results carry a score in [0, 1] and a bounded excerpt
  around the first match.
`
