// Package classify implements the rule-table classifier that maps a
// release to a taxonomy path and normalized metadata fields.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cadstack/cadhoard/internal/model"
)

// Predicate describes when a rule applies. All set conditions must
// hold; zero-value fields are ignored. Predicates are plain data so
// rules can be tested and reordered independently.
type Predicate struct {
	// AnyTags matches when at least one of these tags is present.
	AnyTags []string
	// AllTags requires every listed tag.
	AllTags []string
	// NamePattern is a case-insensitive regex applied to the release name.
	NamePattern string
	// Complete requires the complete-build heuristic to hold.
	Complete bool
	// AnyParts matches when the extracted part type is one of these.
	AnyParts []string
	// ModelContains requires the extracted gun model to contain this substring.
	ModelContains string
	// RequireModel requires any extracted gun model.
	RequireModel bool
	// RequireCaliber requires any extracted caliber.
	RequireCaliber bool
	// AnyCalibers matches when the extracted caliber is one of these.
	AnyCalibers []string
}

// Rule pairs a predicate with the taxonomy it assigns. Taxonomy
// segments may embed {model}, {caliber} and {part} placeholders, which
// expand from the extracted fields; rules using placeholders guard them
// with RequireModel/RequireCaliber so segments never expand empty.
type Rule struct {
	Name     string
	Priority int // higher priority rules are checked first
	When     Predicate
	Taxonomy []string
	// GunModel overrides the extracted model when set (e.g. an AR-15
	// build recognized by name alone).
	GunModel string
	// PartType overrides the extracted part type when set.
	PartType string
}

type compiledRule struct {
	nameRegex *regexp.Regexp
	Rule
}

// Classifier evaluates an ordered rule table. Classification is a pure
// function of the release: no I/O, no clock, no mutation.
type Classifier struct {
	rules []compiledRule
}

// New compiles the rule table, sorting by priority (highest first).
// Rules with equal priority keep their table order, so the match order
// is total and stable across runs.
func New(rules []Rule) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		cr := compiledRule{Rule: r}
		if r.When.NamePattern != "" {
			pattern := r.When.NamePattern
			if !strings.HasPrefix(pattern, "(?i)") {
				pattern = "(?i)" + pattern
			}
			regex, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
			}
			cr.nameRegex = regex
		}
		compiled = append(compiled, cr)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &Classifier{rules: compiled}, nil
}

// facts holds the metadata extracted once per release and consumed by
// every predicate.
type facts struct {
	model    string
	caliber  string
	part     string
	complete bool
}

// Classify maps a release to its taxonomy path and normalized fields.
// Total: releases matching no rule land in Miscellaneous/Uncategorized.
func (c *Classifier) Classify(r *model.Release) model.Classification {
	f := extractFacts(r)

	for i := range c.rules {
		rule := &c.rules[i]
		if !rule.matches(r, f) {
			continue
		}

		result := model.Classification{
			Taxonomy: expandTaxonomy(rule.Taxonomy, f),
			GunModel: f.model,
			Caliber:  f.caliber,
			PartType: f.part,
			RuleName: rule.Name,
		}
		if rule.GunModel != "" {
			result.GunModel = rule.GunModel
		}
		if rule.PartType != "" {
			result.PartType = rule.PartType
		}
		return result
	}

	return model.Classification{
		Taxonomy: []string{"Miscellaneous", "Uncategorized"},
		GunModel: f.model,
		Caliber:  f.caliber,
		PartType: "Other",
		RuleName: "fallback",
	}
}

func (cr *compiledRule) matches(r *model.Release, f facts) bool {
	p := &cr.When

	if len(p.AnyTags) > 0 && !r.HasAnyTag(p.AnyTags...) {
		return false
	}
	for _, tag := range p.AllTags {
		if !r.HasTag(tag) {
			return false
		}
	}
	if cr.nameRegex != nil && !cr.nameRegex.MatchString(r.Name) {
		return false
	}
	if p.Complete && !f.complete {
		return false
	}
	if len(p.AnyParts) > 0 && !containsString(p.AnyParts, f.part) {
		return false
	}
	if p.ModelContains != "" && !strings.Contains(f.model, p.ModelContains) {
		return false
	}
	if p.RequireModel && f.model == "" {
		return false
	}
	if p.RequireCaliber && f.caliber == "" {
		return false
	}
	if len(p.AnyCalibers) > 0 && !containsString(p.AnyCalibers, f.caliber) {
		return false
	}

	return true
}

// expandTaxonomy substitutes placeholders and normalizes each segment
// into a filesystem-friendly folder name.
func expandTaxonomy(segments []string, f facts) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.ReplaceAll(seg, "{model}", folderSegment(f.model))
		seg = strings.ReplaceAll(seg, "{caliber}", folderSegment(f.caliber))
		seg = strings.ReplaceAll(seg, "{part}", folderSegment(f.part))
		out = append(out, seg)
	}
	return out
}

// folderSegment converts a metadata value into a folder name segment:
// spaces become underscores, dots are dropped.
func folderSegment(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, ".", "")
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
