package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cadstack/cadhoard/internal/model"
)

func TestIdentifyGunModel(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"specific variant before family", []string{"Glock", "Glock 19"}, "Glock 19"},
		{"generic family", []string{"Glock"}, "Glock"},
		{"ar15", []string{"AR-15"}, "AR-15"},
		{"ak74 maps to ak47 family", []string{"AK-74"}, "AK-47"},
		{"no model", []string{"Suppressor"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.Release{Tags: tt.tags}
			assert.Equal(t, tt.want, identifyGunModel(&r))
		})
	}
}

func TestIdentifyCaliber(t *testing.T) {
	r := model.Release{Tags: []string{"Glock 19", "9x19mm"}}
	assert.Equal(t, "9x19mm", identifyCaliber(&r))

	r = model.Release{Tags: []string{"Glock 19"}}
	assert.Equal(t, "", identifyCaliber(&r))
}

func TestIdentifyPartType(t *testing.T) {
	tests := []struct {
		name    string
		release model.Release
		want    string
	}{
		{"frame tag", model.Release{Tags: []string{"Frame/Receiver"}}, "Frame"},
		{"part from name", model.Release{Name: "G19 Slide Gen3"}, "Slide"},
		{"tag beats later name match", model.Release{Name: "Magazine Coupler", Tags: []string{"Grip"}}, "Grip"},
		{"nothing", model.Release{Name: "README"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identifyPartType(&tt.release))
		})
	}
}

func TestIsCompleteBuild(t *testing.T) {
	tests := []struct {
		name    string
		release model.Release
		want    bool
	}{
		{"complete tag", model.Release{Tags: []string{"Complete"}}, true},
		{"full build in name", model.Release{Name: "FGC-9 full build kit"}, true},
		{"frame plus barrel", model.Release{Tags: []string{"Frame/Receiver", "Barrel"}}, true},
		{"frame alone", model.Release{Tags: []string{"Frame/Receiver"}}, false},
		{"barrel alone", model.Release{Tags: []string{"Barrel"}}, false},
		{"plain part", model.Release{Name: "extended slide release"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCompleteBuild(&tt.release))
		})
	}
}
