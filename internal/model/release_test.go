package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasTag(t *testing.T) {
	r := Release{Tags: []string{"AR-15", "Complete"}}

	assert.True(t, r.HasTag("AR-15"))
	assert.False(t, r.HasTag("ar-15"), "tag matching is exact")
	assert.False(t, r.HasTag("Glock"))

	assert.True(t, r.HasAnyTag("Glock", "Complete"))
	assert.False(t, r.HasAnyTag("Glock", "1911"))
	assert.False(t, r.HasAnyTag())
}

func TestFileNameHint(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
	}{
		{"full locator", "lbry://AR15_Lower#abc123", "AR15_Lower"},
		{"no claim id", "lbry://AR15_Lower", "AR15_Lower"},
		{"channel path", "lbry://@maker/AR15_Lower#abc", "AR15_Lower"},
		{"bare name", "AR15_Lower", "AR15_Lower"},
		{"empty", "", ""},
		{"only scheme", "lbry://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Release{Locator: tt.locator}
			assert.Equal(t, tt.want, r.FileNameHint())
		})
	}
}
