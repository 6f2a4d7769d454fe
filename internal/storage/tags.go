package storage

import "encoding/json"

// encodeTags serializes a tag list for a single text column.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeTags is deliberately forgiving: a column that fails to parse
// yields no tags instead of discarding the whole row.
func decodeTags(data string) []string {
	if data == "" || data == "[]" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil
	}
	return tags
}
