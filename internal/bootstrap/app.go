package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomation"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/blueprints"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/jobs"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/orchestrator"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/projects"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/queue"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/results"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/services/health"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/db"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	localstore "github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object/local"
	s3store "github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object/s3"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/tracker"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/uploads"
)

// App holds shared dependencies for every binary.
type App struct {
	Config config.Config
	AWS    aws.Config
	DB     *sql.DB
	Store  object.Store
	SQS    *sqs.Client
	Queue  queue.Client

	Schemas      *blueprints.FileSchemaStore
	Blueprints   *blueprints.Provisioner
	Projects     *projects.Resolver
	Submitter    *jobs.Submitter
	Poller       *jobs.Poller
	Extractor    *results.Extractor
	Results      results.Repo
	Orchestrator *orchestrator.Orchestrator
	Tracker      *tracker.Tracker
	Uploader     *uploads.Uploader
	Presign      *s3.PresignClient

	Router *gin.Engine
}

// Build loads AWS configuration and wires every component from cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return BuildWithAWS(ctx, cfg, awsCfg)
}

// BuildWithAWS wires the application over an already loaded AWS configuration.
func BuildWithAWS(ctx context.Context, cfg config.Config, awsCfg aws.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)

	app := &App{
		Config:  cfg,
		AWS:     awsCfg,
		DB:      sqlDB,
		Store:   buildStore(cfg, s3Client),
		SQS:     sqsClient,
		Presign: s3.NewPresignClient(s3Client),
	}

	if strings.TrimSpace(cfg.TrackingQueueURL) != "" {
		q, err := queue.NewSQSClient(sqsClient, cfg.TrackingQueueURL, 0)
		if err != nil {
			return nil, err
		}
		app.Queue = q
	}

	buildServices(app, awsCfg)
	app.Router = server.NewRouter(cfg, app.Handlers()...)
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db.memory", map[string]any{"env": cfg.Env})
		return nil, nil
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.DetectRuntime())
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.fallback", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}

	if config.IsDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			telemetry.Warn("bootstrap.db.migrate_failed", map[string]any{"error": err})
		}
	}
	return sqlDB, nil
}

func buildStore(cfg config.Config, client *s3.Client) object.Store {
	switch cfg.ObjectStoreType {
	case "local":
		return localstore.New(cfg.LocalStoreDir)
	default:
		return s3store.New(client, cfg.SSEKMSKeyID)
	}
}

func buildServices(app *App, awsCfg aws.Config) {
	cfg := app.Config
	control := bedrockdataautomation.NewFromConfig(awsCfg)
	runtime := bedrockdataautomationruntime.NewFromConfig(awsCfg)

	app.Schemas = blueprints.NewFileSchemaStore(cfg.SchemaDir)
	app.Blueprints = blueprints.NewProvisioner(control, app.Schemas, cfg.ProjectStage)
	app.Projects = projects.NewResolver(control, cfg.ProjectDescription)
	app.Submitter = jobs.NewSubmitter(runtime, jobs.NewCallerAccount(sts.NewFromConfig(awsCfg)), cfg.AWSRegion, cfg.ProfileName)
	app.Poller = jobs.NewPoller(runtime, jobs.PollerConfig{
		Interval:     cfg.PollInterval,
		Timeout:      cfg.PollTimeout,
		MaxAttempts:  cfg.PollMaxAttempts,
		QueryRetries: cfg.PollQueryRetries,
	})
	app.Extractor = results.NewExtractor(app.Store)

	if app.DB != nil {
		app.Results = &results.PGRepo{DB: app.DB}
	} else {
		app.Results = results.NewMemoryRepo()
	}

	app.Orchestrator = orchestrator.New(app.Projects, app.Submitter, app.Queue, app.Poller, orchestrator.Config{
		ProjectName:       cfg.ProjectName,
		Stage:             cfg.ProjectStage,
		OutputPrefix:      cfg.OutputPrefix,
		Filter:            orchestrator.Filter{Prefix: cfg.InputPrefix, Suffixes: cfg.InputSuffixes},
		WaitForCompletion: cfg.WaitForCompletion,
	})
	app.Tracker = tracker.New(app.Poller, app.Extractor, app.Results, app.Store, tracker.Config{
		Fields:        cfg.ResultFields,
		ResultsPrefix: cfg.ResultsPrefix,
	})
	app.Uploader = uploads.NewUploader(app.Store, uploads.UploaderConfig{
		Bucket:      cfg.DocumentBucket,
		Prefix:      cfg.InputPrefix,
		Suffixes:    cfg.InputSuffixes,
		MaxPDFPages: cfg.MaxPDFPages,
	})
}

// Handlers returns the HTTP route registrars for the API.
func (a *App) Handlers() []server.RouteRegistrar {
	var pinger health.Pinger
	if a.DB != nil {
		pinger = a.DB
	}
	return []server.RouteRegistrar{
		health.NewHandler(health.NewService(pinger, a.Config.ObjectStoreType, a.Queue != nil)),
		orchestrator.NewHandler(a.Orchestrator),
		jobs.NewHandler(a.Poller),
		results.NewHandler(a.Extractor, a.Results),
		uploads.NewHandler(a.Presign, a.Config.DocumentBucket, a.Config.InputPrefix, a.Config.InputSuffixes),
	}
}

// Close releases the database pool unless it is the shared Lambda singleton.
func (a *App) Close() error {
	if a == nil || a.DB == nil || db.IsLambdaRuntime() {
		return nil
	}
	return a.DB.Close()
}
