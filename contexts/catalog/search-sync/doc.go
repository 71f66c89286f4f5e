// Package searchsync keeps the external search indices aligned with the
// catalog. Two indices exist: one record per live tag, and one record per
// live (game, name) pair so every proposed name is findable. Incremental
// updates ride document-change events and are eventually consistent; the
// full rebuild is the only point-in-time exact operation.
package searchsync
