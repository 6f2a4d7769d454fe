package classify

import (
	"strings"

	"github.com/cadstack/cadhoard/internal/model"
)

// modelKeywords maps canonical gun models to the tags that identify
// them. Evaluated in order: specific variants before the generic family.
var modelKeywords = []struct {
	model    string
	keywords []string
}{
	{"Glock 19", []string{"Glock 19"}},
	{"Glock 17", []string{"Glock 17"}},
	{"Glock 26", []string{"Glock 26"}},
	{"Glock 43", []string{"Glock 43"}},
	{"Glock 48", []string{"Glock 48"}},
	{"Glock", []string{"Glock"}},
	{"AR-15", []string{"AR-15"}},
	{"AR-22", []string{"AR-22"}},
	{"AR-10", []string{"AR-10"}},
	{"AK-47", []string{"AK-47", "AK-74"}},
	{"FGC-9", []string{"FGC-9"}},
	{"1911", []string{"1911"}},
	{"TX22", []string{"TX22"}},
	{"Taurus", []string{"Taurus"}},
}

// knownCalibers are the calibers the listing tags with exact names.
var knownCalibers = []string{
	"9x19mm",
	"22 Long Rifle",
	".45 ACP",
	"5.56x45mm",
	"7.62x39mm",
	".308 Winchester",
	"12 Gauge",
}

// partKeywords maps canonical part types to tags or name substrings.
var partKeywords = []struct {
	part     string
	keywords []string
}{
	{"Frame", []string{"Frame/Receiver", "Frame"}},
	{"Receiver", []string{"Receiver"}},
	{"Lower", []string{"Lower"}},
	{"Upper", []string{"Upper"}},
	{"Slide", []string{"Slide"}},
	{"Barrel", []string{"Barrel", "DIY Barrel"}},
	{"Bolt", []string{"Bolt", "DIY Bolt"}},
	{"Trigger", []string{"Trigger"}},
	{"Stock", []string{"Stock"}},
	{"Grip", []string{"Grip", "Pistol Grip"}},
	{"Magazine", []string{"Magazine"}},
	{"Suppressor", []string{"Suppressor"}},
}

// completeIndicators mark a release as a complete build when present
// as a tag or inside the name.
var completeIndicators = []string{
	"Complete",
	"Full Build",
	"Full Gun",
	"DIY Fire Control",
	"DIY Bolt",
	"Printed Firearm",
	"No Firearm Parts",
}

var frameTags = []string{"Frame/Receiver", "Frame", "Receiver"}
var assemblyTags = []string{"Upper", "Barrel", "Bolt", "Slide"}

func extractFacts(r *model.Release) facts {
	return facts{
		model:    identifyGunModel(r),
		caliber:  identifyCaliber(r),
		part:     identifyPartType(r),
		complete: isCompleteBuild(r),
	}
}

func identifyGunModel(r *model.Release) string {
	for _, m := range modelKeywords {
		if r.HasAnyTag(m.keywords...) {
			return m.model
		}
	}
	return ""
}

func identifyCaliber(r *model.Release) string {
	for _, cal := range knownCalibers {
		if r.HasTag(cal) {
			return cal
		}
	}
	return ""
}

func identifyPartType(r *model.Release) string {
	lowerName := strings.ToLower(r.Name)
	for _, p := range partKeywords {
		for _, kw := range p.keywords {
			if r.HasTag(kw) || strings.Contains(lowerName, strings.ToLower(kw)) {
				return p.part
			}
		}
	}
	return ""
}

// isCompleteBuild reports whether the release describes a whole firearm
// rather than a single part: either an explicit indicator, or a frame
// tag combined with another major assembly tag.
func isCompleteBuild(r *model.Release) bool {
	lowerName := strings.ToLower(r.Name)
	for _, indicator := range completeIndicators {
		if r.HasTag(indicator) || strings.Contains(lowerName, strings.ToLower(indicator)) {
			return true
		}
	}

	return r.HasAnyTag(frameTags...) && r.HasAnyTag(assemblyTags...)
}
