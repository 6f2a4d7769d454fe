package model

import "strings"

// Classification is the result of running a release through the rule
// table. It is a pure function of the release: the same release always
// produces the same classification for a fixed rule table.
type Classification struct {
	// Taxonomy is the ordered category path that determines output
	// directory placement, e.g. ["Complete_Firearms", "Rifles",
	// "AR-15_Builds"]. Never empty; unmatched releases land in a
	// Miscellaneous bucket.
	Taxonomy []string
	GunModel string
	Caliber  string
	PartType string

	// RuleName records which rule produced this classification.
	// Informational only.
	RuleName string
}

// TaxonomyPath returns the taxonomy joined with "/" for display and
// catalog storage. Path separators inside segments are not expected;
// segments are produced from a fixed rule table, not user input.
func (c Classification) TaxonomyPath() string {
	return strings.Join(c.Taxonomy, "/")
}
