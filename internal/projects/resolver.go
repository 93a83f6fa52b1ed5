package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/blueprints"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/awserr"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/util"
)

// API is the subset of the data automation control-plane client used for projects.
type API interface {
	ListDataAutomationProjects(ctx context.Context, params *bedrockdataautomation.ListDataAutomationProjectsInput, optFns ...func(*bedrockdataautomation.Options)) (*bedrockdataautomation.ListDataAutomationProjectsOutput, error)
	CreateDataAutomationProject(ctx context.Context, params *bedrockdataautomation.CreateDataAutomationProjectInput, optFns ...func(*bedrockdataautomation.Options)) (*bedrockdataautomation.CreateDataAutomationProjectOutput, error)
}

// Resolver finds or creates processing projects by name.
type Resolver struct {
	client      API
	description string
}

// NewResolver builds a Resolver. description is used only for projects it creates.
func NewResolver(client API, description string) *Resolver {
	return &Resolver{client: client, description: description}
}

// Find looks up a project by exact name within stage. When several projects share
// the name the first listed wins and the duplicate is logged.
func (r *Resolver) Find(ctx context.Context, name, stage string) (Ref, bool, error) {
	var (
		found Ref
		ok    bool
		dupes []string
		token *string
	)
	for {
		out, err := r.client.ListDataAutomationProjects(ctx, &bedrockdataautomation.ListDataAutomationProjectsInput{
			ProjectStageFilter: types.DataAutomationProjectStageFilter(stage),
			NextToken:          token,
		})
		if err != nil {
			code, msg := awserr.Detail(err)
			return Ref{}, false, RemoteServiceError{Op: "list", Project: name, Code: code, Message: msg, Err: err}
		}
		for _, p := range out.Projects {
			if aws.ToString(p.ProjectName) != name {
				continue
			}
			arn := aws.ToString(p.ProjectArn)
			if ok {
				dupes = append(dupes, arn)
				continue
			}
			found = Ref{Name: name, Arn: arn, Stage: stage}
			if p.ProjectStage != "" {
				found.Stage = string(p.ProjectStage)
			}
			ok = true
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		token = out.NextToken
	}

	if len(dupes) > 0 {
		telemetry.Warn("projects.duplicate_name", map[string]any{
			"project":    name,
			"stage":      stage,
			"selected":   found.Arn,
			"duplicates": dupes,
		})
	}
	if ok {
		telemetry.Debug("projects.found", map[string]any{"project": name, "arn": found.Arn})
	}
	return found, ok, nil
}

// Resolve returns the project named name in stage, creating it bound to refs when absent.
// An existing project is returned as-is; its blueprint bindings are not compared with refs.
func (r *Resolver) Resolve(ctx context.Context, name string, refs []blueprints.Ref, stage string) (Ref, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ref{}, fmt.Errorf("%w: project name is empty", ErrInvalidConfiguration)
	}
	existing, ok, err := r.Find(ctx, name, stage)
	if err != nil {
		return Ref{}, err
	}
	if ok {
		return existing, nil
	}

	bound := make([]blueprints.Ref, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.Arn) != "" {
			bound = append(bound, ref)
		}
	}
	if len(bound) == 0 {
		return Ref{}, fmt.Errorf("%w: project %s needs at least one blueprint", ErrInvalidConfiguration, name)
	}

	input := &bedrockdataautomation.CreateDataAutomationProjectInput{
		ProjectName:                 aws.String(name),
		ProjectStage:                types.DataAutomationProjectStage(stage),
		StandardOutputConfiguration: standardOutput(),
		CustomOutputConfiguration:   customOutput(bound, stage),
		OverrideConfiguration:       splitterOverride(),
		ClientToken:                 aws.String(util.IdempotencyToken("project", name, stage)),
	}
	if r.description != "" {
		input.ProjectDescription = aws.String(r.description)
	}

	out, err := r.client.CreateDataAutomationProject(ctx, input)
	if err != nil {
		code, msg := awserr.Detail(err)
		telemetry.Error("projects.create.failed", map[string]any{
			"project": name,
			"code":    code,
			"error":   msg,
		})
		return Ref{}, RemoteServiceError{Op: "create", Project: name, Code: code, Message: msg, Err: err}
	}
	arn := aws.ToString(out.ProjectArn)
	if arn == "" {
		return Ref{}, RemoteServiceError{Op: "create", Project: name, Message: "response carried no project arn"}
	}

	telemetry.Info("projects.created", map[string]any{
		"project":    name,
		"arn":        arn,
		"stage":      stage,
		"blueprints": len(bound),
	})
	return Ref{Name: name, Arn: arn, Stage: stage}, nil
}
