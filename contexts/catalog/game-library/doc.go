// Package gamelibrary implements the catalog of improv games: games with
// their slugs, tags, duration and player-count metadata, and notes attached
// to any of those. Mutations are soft deletes throughout; tag changes emit
// document-change events for the search sync module.
package gamelibrary
