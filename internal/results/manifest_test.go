package results

import (
	"errors"
	"reflect"
	"testing"
)

const jobMetadata = `{
  "job_id": "abc",
  "output_metadata": [
    {
      "asset_id": 0,
      "segment_metadata": [
        {"segment_index": 0, "custom_output_status": "MATCH", "custom_output_path": "s3://docs/output/abc/0/custom_output/0/result.json"},
        {"segment_index": 1, "custom_output_status": "NO_MATCH", "standard_output_path": "s3://docs/output/abc/0/standard_output/1/result.json"},
        {"segment_index": 2, "custom_output_status": "MATCH", "custom_output_path": "s3://docs/output/abc/0/custom_output/2/result.json"}
      ]
    }
  ]
}`

func TestSegmentOutputPaths(t *testing.T) {
	paths, err := SegmentOutputPaths([]byte(jobMetadata))
	if err != nil {
		t.Fatalf("SegmentOutputPaths: %v", err)
	}
	want := []string{
		"s3://docs/output/abc/0/custom_output/0/result.json",
		"s3://docs/output/abc/0/custom_output/2/result.json",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v", paths)
	}
}

func TestSegmentOutputPathsMalformed(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing output_metadata":  `{"job_id": "abc"}`,
		"output_metadata object":   `{"output_metadata": {"segment_metadata": []}}`,
		"missing segment_metadata": `{"output_metadata": [{"asset_id": 0}]}`,
		"segment not object":       `{"output_metadata": [{"segment_metadata": ["x"]}]}`,
		"invalid json":             `{`,
	}
	for name, doc := range tests {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := SegmentOutputPaths([]byte(doc))
			var malformed MalformedManifestError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedManifestError, got %v", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	doc := `{
  "matched_blueprint": {"arn": "arn:bp", "name": "well-report", "confidence": 0.93},
  "document_class": {"type": "Daily Drilling Report"},
  "split_document": {"page_indices": [0, 1]},
  "inference_result": {}
}`
	s, err := Summarize([]byte(doc))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.MatchedBlueprintName != "well-report" || s.Confidence == nil || *s.Confidence != 0.93 {
		t.Fatalf("unexpected blueprint summary: %+v", s)
	}
	if s.DocumentClassType != "Daily Drilling Report" || !reflect.DeepEqual(s.PageIndices, []int{0, 1}) {
		t.Fatalf("unexpected summary: %+v", s)
	}

	empty, err := Summarize([]byte(`{}`))
	if err != nil || empty.MatchedBlueprintName != "" || empty.Confidence != nil {
		t.Fatalf("expected empty summary, got %+v, %v", empty, err)
	}
}
