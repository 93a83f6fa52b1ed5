package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/blueprints"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/projects"
)

// setupFile describes the blueprints a project is built from.
type setupFile struct {
	Project struct {
		Name  string `yaml:"name"`
		Stage string `yaml:"stage"`
	} `yaml:"project"`
	Blueprints []string `yaml:"blueprints"`
	// Reuse keeps existing blueprints of the same name instead of registering new ones.
	Reuse *bool `yaml:"reuse"`
}

type setupResult struct {
	Blueprints []blueprints.Ref `json:"blueprints"`
	Project    projects.Ref     `json:"project"`
}

func parseSetupFile(data []byte) (setupFile, error) {
	var f setupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return setupFile{}, usageError("parse setup file: %v", err)
	}
	names := f.Blueprints[:0]
	for _, name := range f.Blueprints {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	f.Blueprints = names
	if len(f.Blueprints) == 0 {
		return setupFile{}, usageError("setup file lists no blueprints")
	}
	if f.Project.Stage != "" {
		f.Project.Stage = strings.ToUpper(f.Project.Stage)
	}
	return f, nil
}

func (f setupFile) reuse() bool {
	return f.Reuse == nil || *f.Reuse
}

func newSetupCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision every blueprint in a setup file and resolve the project over them",
		Args:  exactArgs(0),
		RunE: withDeps(func(cmd *cobra.Command, _ []string, d *deps) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return usageError("read setup file: %v", err)
			}
			f, err := parseSetupFile(data)
			if err != nil {
				return err
			}

			provision := d.blueprints.Provision
			if f.reuse() {
				provision = d.blueprints.ProvisionOrReuse
			}
			var out setupResult
			for _, name := range f.Blueprints {
				ref, err := provision(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("blueprint %s: %w", name, err)
				}
				out.Blueprints = append(out.Blueprints, ref)
			}

			out.Project, err = d.projects.Resolve(cmd.Context(), pick(f.Project.Name, d.cfg.ProjectName), out.Blueprints, pick(f.Project.Stage, d.cfg.ProjectStage))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		}),
	}
	cmd.Flags().StringVarP(&path, "file", "f", "bda.yaml", "setup file")
	return cmd
}
