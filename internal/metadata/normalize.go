package metadata

import (
	"encoding/json"
	"fmt"

	"hyperspectral/internal/services"
)

const (
	cleanedFlag      = "terraref_cleaned_metadata"
	lemnatecKey      = "lemnatec_measurement_metadata"
	recordContentKey = "content"
)

// Normalize reduces a dataset-level metadata document to the capture-level
// shape. The input is either a list of metadata records or a single record;
// the cleaned record wins, otherwise the first record carrying raw LemnaTec
// metadata is used. Input already in capture shape (cleaned, or a bare
// LemnaTec object from an earlier fallback rewrite) is returned unchanged.
func Normalize(raw []byte) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, services.Wrap(services.ErrMissingMetadata, "metadata", "normalize", "decode dataset metadata", err)
	}

	var records []map[string]any
	switch v := decoded.(type) {
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				records = append(records, obj)
			}
		}
	case map[string]any:
		if captureShaped(v) {
			return v, nil
		}
		records = append(records, v)
	default:
		return nil, services.Wrap(services.ErrMissingMetadata, "metadata", "normalize",
			fmt.Sprintf("unexpected document type %T", decoded), nil)
	}

	for _, record := range records {
		if content := recordContent(record); content != nil && isCleaned(content) {
			return content, nil
		}
	}
	for _, record := range records {
		content := recordContent(record)
		if content == nil {
			continue
		}
		if _, ok := content[lemnatecKey]; ok {
			return content, nil
		}
	}
	return nil, services.Wrap(services.ErrMissingMetadata, "metadata", "normalize", "no usable metadata record", nil)
}

func recordContent(record map[string]any) map[string]any {
	if content, ok := record[recordContentKey].(map[string]any); ok {
		return content
	}
	return nil
}

func captureShaped(obj map[string]any) bool {
	if isCleaned(obj) {
		return true
	}
	_, raw := obj[lemnatecKey]
	return raw
}

func isCleaned(obj map[string]any) bool {
	flag, ok := obj[cleanedFlag].(bool)
	return ok && flag
}
