package blueprints

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/awserr"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

// API is the subset of the data automation control-plane client used for blueprints.
type API interface {
	CreateBlueprint(ctx context.Context, params *bedrockdataautomation.CreateBlueprintInput, optFns ...func(*bedrockdataautomation.Options)) (*bedrockdataautomation.CreateBlueprintOutput, error)
	ListBlueprints(ctx context.Context, params *bedrockdataautomation.ListBlueprintsInput, optFns ...func(*bedrockdataautomation.Options)) (*bedrockdataautomation.ListBlueprintsOutput, error)
}

// Provisioner registers blueprint schemas with the remote service.
type Provisioner struct {
	client  API
	schemas SchemaStore
	stage   string
}

// NewProvisioner builds a Provisioner registering blueprints at stage.
func NewProvisioner(client API, schemas SchemaStore, stage string) *Provisioner {
	if strings.TrimSpace(stage) == "" {
		stage = string(types.BlueprintStageLive)
	}
	return &Provisioner{client: client, schemas: schemas, stage: stage}
}

// Provision loads the schema for name and registers it. It does not check for an
// existing blueprint of the same name; the remote service decides whether that conflicts.
func (p *Provisioner) Provision(ctx context.Context, name string) (Ref, error) {
	schema, err := p.schemas.Load(name)
	if err != nil {
		return Ref{}, err
	}
	if err := validateSchema(schema.Name, schema.Document); err != nil {
		return Ref{}, ProvisioningError{Name: schema.Name, Op: "validate", Code: "InvalidSchema", Message: err.Error(), Err: err}
	}

	out, err := p.client.CreateBlueprint(ctx, &bedrockdataautomation.CreateBlueprintInput{
		BlueprintName:  aws.String(schema.Name),
		Schema:         aws.String(string(schema.Document)),
		Type:           types.TypeDocument,
		BlueprintStage: types.BlueprintStage(p.stage),
	})
	if err != nil {
		code, msg := awserr.Detail(err)
		telemetry.Error("blueprints.create.failed", map[string]any{
			"blueprint": schema.Name,
			"code":      code,
			"error":     msg,
		})
		return Ref{}, ProvisioningError{Name: schema.Name, Op: "create", Code: code, Message: msg, Err: err}
	}
	if out == nil || out.Blueprint == nil || aws.ToString(out.Blueprint.BlueprintArn) == "" {
		return Ref{}, ProvisioningError{Name: schema.Name, Op: "create", Message: "response carried no blueprint arn"}
	}

	ref := Ref{Name: schema.Name, Arn: aws.ToString(out.Blueprint.BlueprintArn), Stage: p.stage}
	telemetry.Info("blueprints.created", map[string]any{
		"blueprint": ref.Name,
		"arn":       ref.Arn,
		"stage":     ref.Stage,
	})
	return ref, nil
}

// Find looks a blueprint up by exact name across all stages.
func (p *Provisioner) Find(ctx context.Context, name string) (Ref, bool, error) {
	refs, err := p.List(ctx)
	if err != nil {
		return Ref{}, false, err
	}
	for _, ref := range refs {
		if ref.Name == name {
			return ref, true, nil
		}
	}
	return Ref{}, false, nil
}

// ProvisionOrReuse returns an existing blueprint named name, registering it only when absent.
func (p *Provisioner) ProvisionOrReuse(ctx context.Context, name string) (Ref, error) {
	ref, ok, err := p.Find(ctx, name)
	if err != nil {
		return Ref{}, err
	}
	if ok {
		telemetry.Info("blueprints.reused", map[string]any{"blueprint": name, "arn": ref.Arn})
		return ref, nil
	}
	return p.Provision(ctx, name)
}

// List returns every blueprint visible to the caller, following pagination.
func (p *Provisioner) List(ctx context.Context) ([]Ref, error) {
	var (
		refs  []Ref
		token *string
	)
	for {
		out, err := p.client.ListBlueprints(ctx, &bedrockdataautomation.ListBlueprintsInput{
			BlueprintStageFilter: types.BlueprintStageFilterAll,
			NextToken:            token,
		})
		if err != nil {
			code, msg := awserr.Detail(err)
			return nil, ProvisioningError{Op: "list", Code: code, Message: msg, Err: err}
		}
		for _, bp := range out.Blueprints {
			refs = append(refs, Ref{
				Name:  aws.ToString(bp.BlueprintName),
				Arn:   aws.ToString(bp.BlueprintArn),
				Stage: string(bp.BlueprintStage),
			})
		}
		if aws.ToString(out.NextToken) == "" {
			return refs, nil
		}
		token = out.NextToken
	}
}
