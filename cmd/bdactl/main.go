package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/blueprints"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/bootstrap"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/jobs"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/projects"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/results"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/uploads"
)

const (
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *cliError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &cliError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &cliError{code: exitNotFound, err: fmt.Errorf(format, args...)}
}

type blueprintService interface {
	Provision(ctx context.Context, name string) (blueprints.Ref, error)
	ProvisionOrReuse(ctx context.Context, name string) (blueprints.Ref, error)
	List(ctx context.Context) ([]blueprints.Ref, error)
}

type projectService interface {
	Find(ctx context.Context, name, stage string) (projects.Ref, bool, error)
	Resolve(ctx context.Context, name string, refs []blueprints.Ref, stage string) (projects.Ref, error)
}

type jobService interface {
	Submit(ctx context.Context, req jobs.SubmitRequest) (jobs.Handle, error)
}

type statusService interface {
	Status(ctx context.Context, invocationArn string) (jobs.Outcome, error)
	Wait(ctx context.Context, h jobs.Handle) (jobs.Outcome, error)
}

type resultReader interface {
	Extract(ctx context.Context, uri, field string) (results.Table, error)
	SegmentPaths(ctx context.Context, metadataURI string) ([]string, error)
	ReadSegment(ctx context.Context, index int, uri string, fields []string) (results.Segment, error)
}

type dirUploader interface {
	UploadDir(ctx context.Context, dir string) (uploads.Summary, error)
	List(ctx context.Context) ([]string, error)
}

// deps is the slice of the application the commands drive.
type deps struct {
	cfg        config.Config
	blueprints blueprintService
	projects   projectService
	submitter  jobService
	poller     statusService
	results    resultReader
	uploader   dirUploader
}

var loadDeps = func(ctx context.Context) (*deps, error) {
	cfg := config.Load()
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &deps{
		cfg:        app.Config,
		blueprints: app.Blueprints,
		projects:   app.Projects,
		submitter:  app.Submitter,
		poller:     app.Poller,
		results:    app.Extractor,
		uploader:   app.Uploader,
	}, nil
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var schemaMissing blueprints.SchemaNotFoundError
	var fieldMissing results.FieldNotFoundError
	switch {
	case errors.As(err, &schemaMissing), errors.As(err, &fieldMissing), errors.Is(err, results.ErrNotFound):
		return exitNotFound
	case errors.Is(err, projects.ErrInvalidConfiguration), errors.Is(err, blueprints.ErrInvalidName), errors.Is(err, object.ErrInvalidURI):
		return exitUsage
	}
	return exitFailure
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bdactl",
		Short:         "Operate the document extraction pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBlueprintCommand())
	root.AddCommand(newProjectCommand())
	root.AddCommand(newSetupCommand())
	root.AddCommand(newJobCommand())
	root.AddCommand(newResultsCommand())
	root.AddCommand(newUploadCommand())
	return root
}

// exactArgs reports argument count mistakes as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("%s expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func withDeps(run func(cmd *cobra.Command, args []string, d *deps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd.Context())
		if err != nil {
			return err
		}
		return run(cmd, args, d)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBlueprintCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "blueprint", Short: "Manage extraction blueprints"}

	var reuse bool
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Register the blueprint schema NAME",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			provision := d.blueprints.Provision
			if reuse {
				provision = d.blueprints.ProvisionOrReuse
			}
			ref, err := provision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ref)
		}),
	}
	create.Flags().BoolVar(&reuse, "reuse", false, "return an existing blueprint of the same name instead of creating one")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered blueprints",
		Args:  exactArgs(0),
		RunE: withDeps(func(cmd *cobra.Command, _ []string, d *deps) error {
			refs, err := d.blueprints.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), refs)
		}),
	}

	cmd.AddCommand(create, list)
	return cmd
}

func newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Find or create the processing project"}

	var name, stage string
	find := &cobra.Command{
		Use:   "find",
		Short: "Look up the configured project",
		Args:  exactArgs(0),
		RunE: withDeps(func(cmd *cobra.Command, _ []string, d *deps) error {
			projectName, projectStage := pick(name, d.cfg.ProjectName), pick(stage, d.cfg.ProjectStage)
			ref, ok, err := d.projects.Find(cmd.Context(), projectName, projectStage)
			if err != nil {
				return err
			}
			if !ok {
				return notFoundError("project %s not found in stage %s", projectName, projectStage)
			}
			return writeJSON(cmd.OutOrStdout(), ref)
		}),
	}

	var blueprintArns []string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Return the configured project, creating it when absent",
		Args:  exactArgs(0),
		RunE: withDeps(func(cmd *cobra.Command, _ []string, d *deps) error {
			projectStage := pick(stage, d.cfg.ProjectStage)
			refs := make([]blueprints.Ref, 0, len(blueprintArns))
			for _, arn := range blueprintArns {
				refs = append(refs, blueprints.Ref{Arn: arn, Stage: projectStage})
			}
			ref, err := d.projects.Resolve(cmd.Context(), pick(name, d.cfg.ProjectName), refs, projectStage)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ref)
		}),
	}
	resolve.Flags().StringSliceVar(&blueprintArns, "blueprint", nil, "blueprint ARN to bind when the project is created (repeatable)")

	for _, c := range []*cobra.Command{find, resolve} {
		c.Flags().StringVar(&name, "name", "", "project name (default from BDA_PROJECT_NAME)")
		c.Flags().StringVar(&stage, "stage", "", "project stage (default from BDA_PROJECT_STAGE)")
	}
	cmd.AddCommand(find, resolve)
	return cmd
}

func newJobCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "job", Short: "Submit and track extraction jobs"}

	var wait bool
	submit := &cobra.Command{
		Use:   "submit S3_URI",
		Short: "Start an extraction job for one stored document",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			loc, err := object.ParseURI(args[0])
			if err != nil {
				return usageError("%v", err)
			}
			project, ok, err := d.projects.Find(cmd.Context(), d.cfg.ProjectName, d.cfg.ProjectStage)
			if err != nil {
				return err
			}
			if !ok {
				return notFoundError("project %s not found in stage %s", d.cfg.ProjectName, d.cfg.ProjectStage)
			}
			handle, err := d.submitter.Submit(cmd.Context(), jobs.SubmitRequest{
				Project:      project,
				InputURI:     loc.URI(),
				OutputPrefix: object.URI(loc.Bucket, d.cfg.OutputPrefix),
			})
			if err != nil {
				return err
			}
			if !wait {
				return writeJSON(cmd.OutOrStdout(), handle)
			}
			outcome, err := d.poller.Wait(cmd.Context(), handle)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), outcome)
		}),
	}
	submit.Flags().BoolVar(&wait, "wait", false, "poll until the job reaches a terminal state")

	status := &cobra.Command{
		Use:   "status INVOCATION_ARN",
		Short: "Query a job once",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			outcome, err := d.poller.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), outcome)
		}),
	}

	waitCmd := &cobra.Command{
		Use:   "wait INVOCATION_ARN",
		Short: "Poll a job until it finishes or the poll bound is reached",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			outcome, err := d.poller.Wait(cmd.Context(), jobs.Handle{InvocationArn: args[0]})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), outcome)
		}),
	}

	cmd.AddCommand(submit, status, waitCmd)
	return cmd
}

func newResultsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "results", Short: "Read extraction output"}

	var (
		fields   []string
		xlsxPath string
	)
	extract := &cobra.Command{
		Use:   "extract URI",
		Short: "Extract tabular fields from a result document or job_metadata.json",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			if len(fields) == 0 {
				return usageError("at least one --field is required")
			}
			tables, err := extractTables(cmd.Context(), d.results, args[0], fields)
			if err != nil {
				return err
			}
			if xlsxPath == "" {
				return writeJSON(cmd.OutOrStdout(), tables)
			}
			data, err := results.WriteXLSX(tables)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", xlsxPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d table(s) to %s\n", len(tables), xlsxPath)
			return nil
		}),
	}
	extract.Flags().StringSliceVar(&fields, "field", nil, "inference_result field to extract (repeatable)")
	extract.Flags().StringVar(&xlsxPath, "xlsx", "", "write the tables to this workbook instead of stdout")

	segments := &cobra.Command{
		Use:   "segments METADATA_URI",
		Short: "Summarize every custom output segment listed in job_metadata.json",
		Args:  exactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			paths, err := d.results.SegmentPaths(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := make([]results.Segment, 0, len(paths))
			for i, p := range paths {
				seg, err := d.results.ReadSegment(cmd.Context(), i, p, fields)
				if err != nil {
					return err
				}
				out = append(out, seg)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		}),
	}
	segments.Flags().StringSliceVar(&fields, "field", nil, "restrict tables to these fields (default all tabular fields)")

	cmd.AddCommand(extract, segments)
	return cmd
}

func extractTables(ctx context.Context, r resultReader, uri string, fields []string) ([]results.Table, error) {
	docs := []string{uri}
	if strings.HasSuffix(uri, "job_metadata.json") {
		paths, err := r.SegmentPaths(ctx, uri)
		if err != nil {
			return nil, err
		}
		docs = paths
	}
	var tables []results.Table
	for _, doc := range docs {
		for _, field := range fields {
			table, err := r.Extract(ctx, doc, field)
			if err != nil {
				return nil, err
			}
			tables = append(tables, table)
		}
	}
	return tables, nil
}

func newUploadCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "upload [DIR]",
		Short: "Upload the documents in DIR to the input prefix",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return exactArgs(0)(cmd, args)
			}
			return exactArgs(1)(cmd, args)
		},
		RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
			if list {
				uris, err := d.uploader.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), uris)
			}
			summary, err := d.uploader.UploadDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		}),
	}
	cmd.Flags().BoolVar(&list, "list", false, "list documents already under the input prefix")
	return cmd
}

func pick(flag, fallback string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return fallback
}
