package enrich

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/pep299/study-planner/internal/planner"
)

var errEmptyList = errors.New("response contained no usable items")

// decodeList reads a list either from {"<key>": [...]} or from the outermost
// [...] span of the response.
func decodeList[T any](raw, key string) ([]T, error) {
	if obj, err := planner.ExtractJSONObject(raw); err == nil {
		var fields map[string]json.RawMessage
		if json.Unmarshal([]byte(obj), &fields) == nil {
			if v, ok := fields[key]; ok {
				var items []T
				if err := json.Unmarshal(v, &items); err == nil && len(items) > 0 {
					return items, nil
				}
			}
		}
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, errEmptyList
	}
	var items []T
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errEmptyList
	}
	return items, nil
}

// decodeStrings accepts JSON or a plain bulleted list.
func decodeStrings(raw, key string) ([]string, error) {
	items, err := decodeList[string](raw, key)
	if err != nil && !strings.ContainsAny(raw, "{[") {
		items, err = bulletLines(raw), nil
	}
	if err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errEmptyList
	}
	return out, nil
}

// bulletLines keeps only lines that look like list entries.
func bulletLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		item := strings.TrimLeft(line, "-*•")
		if item == line {
			digits := strings.TrimLeft(line, "0123456789")
			if digits == line || (!strings.HasPrefix(digits, ".") && !strings.HasPrefix(digits, ")")) {
				continue
			}
			item = digits[1:]
		}
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func decodeTranslation(raw string) (string, error) {
	if obj, err := planner.ExtractJSONObject(raw); err == nil {
		var resp struct {
			TranslatedText string `json:"translated_text"`
		}
		if json.Unmarshal([]byte(obj), &resp) == nil {
			if t := strings.TrimSpace(resp.TranslatedText); t != "" {
				return t, nil
			}
			return "", errEmptyList
		}
	}
	if t := strings.TrimSpace(raw); t != "" {
		return t, nil
	}
	return "", errEmptyList
}
