package projects

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/blueprints"
)

// standardOutput enables document and page granularity, bounding boxes,
// the generative summary field, markdown text and the additional file format.
func standardOutput() *types.StandardOutputConfiguration {
	return &types.StandardOutputConfiguration{
		Document: &types.DocumentStandardOutputConfiguration{
			Extraction: &types.DocumentStandardExtraction{
				Granularity: &types.DocumentExtractionGranularity{
					Types: []types.DocumentExtractionGranularityType{
						types.DocumentExtractionGranularityTypeDocument,
						types.DocumentExtractionGranularityTypePage,
					},
				},
				BoundingBox: &types.DocumentBoundingBox{State: types.StateEnabled},
			},
			GenerativeField: &types.DocumentStandardGenerativeField{State: types.StateEnabled},
			OutputFormat: &types.DocumentOutputFormat{
				TextFormat: &types.DocumentOutputTextFormat{
					Types: []types.DocumentOutputTextFormatType{types.DocumentOutputTextFormatTypeMarkdown},
				},
				AdditionalFileFormat: &types.DocumentOutputAdditionalFileFormat{State: types.StateEnabled},
			},
		},
	}
}

// customOutput binds every blueprint at the project stage unless the blueprint names its own.
func customOutput(refs []blueprints.Ref, stage string) *types.CustomOutputConfiguration {
	items := make([]types.BlueprintItem, 0, len(refs))
	for _, ref := range refs {
		bpStage := ref.Stage
		if bpStage == "" {
			bpStage = stage
		}
		items = append(items, types.BlueprintItem{
			BlueprintArn:   aws.String(ref.Arn),
			BlueprintStage: types.BlueprintStage(bpStage),
		})
	}
	return &types.CustomOutputConfiguration{Blueprints: items}
}

func splitterOverride() *types.OverrideConfiguration {
	return &types.OverrideConfiguration{
		Document: &types.DocumentOverrideConfiguration{
			Splitter: &types.SplitterConfiguration{State: types.StateEnabled},
		},
	}
}
