// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Release represents a single item listed on the remote content index.
// It is read once from the listing source, classified, and discarded;
// nothing in the engine mutates it. Fields the source omits are left at
// their zero values.
type Release struct {
	ID          string
	Name        string
	Tags        []string
	Description string
	Notes       string
	Readme      string
	Author      string
	Version     string
	ReleaseDate string // as reported by the source, not parsed
	LastUpdated string

	// Locator is the content identifier the resolver network uses to
	// find the file's bytes. Empty when the listing carries no
	// resolvable reference.
	Locator   string
	DetailURL string

	// SizeHint is the listing's advertised file size in bytes, 0 when
	// absent. Used only for sanity checks, never trusted exactly.
	SizeHint int64

	Views    int64
	Likes    int64
	Dislikes int64
}

// HasTag reports whether the release carries the given tag exactly.
func (r *Release) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether any of the given tags is present.
func (r *Release) HasAnyTag(tags ...string) bool {
	for _, t := range tags {
		if r.HasTag(t) {
			return true
		}
	}
	return false
}

// FileNameHint derives the expected on-disk file name from the locator,
// e.g. "lbry://AR15_Lower#abc123" yields "AR15_Lower". Returns "" when
// the locator carries no name component.
func (r *Release) FileNameHint() string {
	name := strings.TrimPrefix(r.Locator, "lbry://")
	if i := strings.IndexByte(name, '#'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
