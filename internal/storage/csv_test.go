package storage

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadstack/cadhoard/internal/model"
)

func TestWriteCSV(t *testing.T) {
	records := []model.CatalogRecord{
		{
			FileName:     "AR15_Lower.zip",
			Location:     "/out/Complete_Firearms/Rifles/AR15_Lower.zip",
			Locator:      "lbry://AR15_Lower#abc123",
			Category:     "Complete_Firearms/Rifles/AR-15_Builds",
			GunModel:     "AR-15",
			Caliber:      "5.56x45mm",
			PartType:     "Complete Build",
			Tags:         []string{"AR-15", "Complete"},
			SizeBytes:    2 * 1024 * 1024,
			DownloadedAt: time.Date(2025, 7, 4, 12, 30, 0, 0, time.UTC),
			Views:        120,
			Description:  "line one\nline two",
		},
		{
			FileName: "orphan.stl",
			Location: "/out/Miscellaneous/orphan.stl",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ColumnOrder, rows[0])

	first := rows[1]
	assert.Equal(t, "AR15_Lower.zip", first[0])
	assert.Equal(t, "lbry://AR15_Lower#abc123", first[2])
	assert.Equal(t, "AR-15, Complete", first[8])
	assert.Equal(t, "2.00", first[9])
	assert.Equal(t, "2025-07-04 12:30", first[14])
	assert.Equal(t, "120", first[15])
	assert.Equal(t, "line one line two", first[18])

	second := rows[2]
	assert.Equal(t, "orphan.stl", second[0])
	assert.Equal(t, "", second[14], "zero download time renders empty")
	assert.Equal(t, "0.00", second[9])
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"newlines", "a\nb\r\nc", "a b c"},
		{"tabs and runs", "a\t\t  b", "a b"},
		{"control chars dropped", "a\x00\x07b", "ab"},
		{"leading and trailing space", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestEncodeDecodeTags(t *testing.T) {
	assert.Equal(t, "[]", encodeTags(nil))
	assert.Nil(t, decodeTags(""))
	assert.Nil(t, decodeTags("[]"))
	assert.Nil(t, decodeTags("{broken"))

	encoded := encodeTags([]string{"AR-15", "Complete"})
	assert.Equal(t, []string{"AR-15", "Complete"}, decodeTags(encoded))
}
