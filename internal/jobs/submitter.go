package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/projects"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/awserr"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/util"
)

// InvokeAPI is the runtime call that starts a job.
type InvokeAPI interface {
	InvokeDataAutomationAsync(ctx context.Context, params *bedrockdataautomationruntime.InvokeDataAutomationAsyncInput, optFns ...func(*bedrockdataautomationruntime.Options)) (*bedrockdataautomationruntime.InvokeDataAutomationAsyncOutput, error)
}

// SubmitRequest describes one job to start.
type SubmitRequest struct {
	Project  projects.Ref
	InputURI string
	// OutputPrefix is the URI under which the service writes results.
	OutputPrefix string
	// Revision distinguishes versions of the same input (object eTag or event sequencer).
	Revision string
}

// Submitter starts asynchronous extraction jobs.
type Submitter struct {
	client   InvokeAPI
	accounts AccountResolver
	region   string
	profile  string
	now      func() time.Time
}

// NewSubmitter builds a Submitter using the named data automation profile in region.
func NewSubmitter(client InvokeAPI, accounts AccountResolver, region, profile string) *Submitter {
	return &Submitter{
		client:   client,
		accounts: accounts,
		region:   region,
		profile:  profile,
		now:      time.Now,
	}
}

// Submit starts exactly one job and returns without waiting for it.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (Handle, error) {
	account, err := s.accounts.AccountID(ctx)
	if err != nil {
		telemetry.Error("jobs.account.failed", map[string]any{"error": err})
		return Handle{}, AuthContextError{Err: err}
	}

	stage := types.DataAutomationStage(req.Project.Stage)
	if stage == "" {
		stage = types.DataAutomationStageLive
	}
	token := util.IdempotencyToken(req.Project.Arn, req.InputURI, strings.Trim(req.Revision, `"`))

	out, err := s.client.InvokeDataAutomationAsync(ctx, &bedrockdataautomationruntime.InvokeDataAutomationAsyncInput{
		DataAutomationProfileArn: aws.String(ProfileArn(s.region, account, s.profile)),
		InputConfiguration:       &types.InputConfiguration{S3Uri: aws.String(req.InputURI)},
		OutputConfiguration:      &types.OutputConfiguration{S3Uri: aws.String(req.OutputPrefix)},
		DataAutomationConfiguration: &types.DataAutomationConfiguration{
			DataAutomationProjectArn: aws.String(req.Project.Arn),
			Stage:                    stage,
		},
		ClientToken: aws.String(token),
	})
	if err != nil {
		code, msg := awserr.Detail(err)
		return Handle{}, SubmissionError{InputURI: req.InputURI, Code: code, Message: msg, Err: err}
	}
	arn := aws.ToString(out.InvocationArn)
	if arn == "" {
		return Handle{}, SubmissionError{InputURI: req.InputURI, Message: "response carried no invocation arn"}
	}

	handle := Handle{
		InvocationArn: arn,
		InputURI:      req.InputURI,
		OutputURI:     req.OutputPrefix,
		ProjectArn:    req.Project.Arn,
		Status:        StatusSubmitted,
		SubmittedAt:   s.now().UTC(),
	}
	telemetry.Info("jobs.submitted", map[string]any{
		"invocation_arn": handle.InvocationArn,
		"input_uri":      handle.InputURI,
		"output_uri":     handle.OutputURI,
		"project_arn":    handle.ProjectArn,
	})
	return handle, nil
}
