package results

import (
	"encoding/json"
	"fmt"
)

// Summary describes one segment of a split document.
type Summary struct {
	PageIndices          []int    `json:"pageIndices,omitempty"`
	MatchedBlueprintName string   `json:"matchedBlueprintName,omitempty"`
	Confidence           *float64 `json:"confidence,omitempty"`
	DocumentClassType    string   `json:"documentClassType,omitempty"`
}

// SegmentOutputPaths returns every segment's custom_output_path from a job metadata
// document, across all assets and in document order. Segments without a custom output
// (no blueprint matched) are skipped.
func SegmentOutputPaths(doc []byte) ([]string, error) {
	root, err := decodeOrdered(doc)
	if err != nil {
		return nil, MalformedManifestError{Reason: "invalid JSON", Err: err}
	}
	outputs, ok := asObject(root).valueArray("output_metadata")
	if !ok {
		return nil, MalformedManifestError{Reason: "output_metadata missing or not an array"}
	}

	paths := []string{}
	for i, asset := range outputs {
		assetObj := asObject(asset)
		if assetObj == nil {
			return nil, MalformedManifestError{Reason: fmt.Sprintf("output_metadata[%d] is not an object", i)}
		}
		segments, ok := assetObj.valueArray("segment_metadata")
		if !ok {
			return nil, MalformedManifestError{Reason: fmt.Sprintf("output_metadata[%d].segment_metadata missing or not an array", i)}
		}
		for j, seg := range segments {
			segObj := asObject(seg)
			if segObj == nil {
				return nil, MalformedManifestError{Reason: fmt.Sprintf("output_metadata[%d].segment_metadata[%d] is not an object", i, j)}
			}
			if path, ok := segObj.values["custom_output_path"].(string); ok && path != "" {
				paths = append(paths, path)
			}
		}
	}
	return paths, nil
}

type customOutputEnvelope struct {
	MatchedBlueprint *struct {
		Name       string   `json:"name"`
		Confidence *float64 `json:"confidence"`
	} `json:"matched_blueprint"`
	DocumentClass *struct {
		Type string `json:"type"`
	} `json:"document_class"`
	SplitDocument *struct {
		PageIndices []int `json:"page_indices"`
	} `json:"split_document"`
}

// Summarize reads the classification envelope of one custom output document.
// Missing sections leave their fields empty.
func Summarize(doc []byte) (Summary, error) {
	var env customOutputEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return Summary{}, MalformedManifestError{Reason: "invalid custom output", Err: err}
	}
	var s Summary
	if env.MatchedBlueprint != nil {
		s.MatchedBlueprintName = env.MatchedBlueprint.Name
		s.Confidence = env.MatchedBlueprint.Confidence
	}
	if env.DocumentClass != nil {
		s.DocumentClassType = env.DocumentClass.Type
	}
	if env.SplitDocument != nil {
		s.PageIndices = env.SplitDocument.PageIndices
	}
	return s, nil
}

func (o *jsonObject) valueArray(key string) ([]any, bool) {
	v, ok := o.get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}
