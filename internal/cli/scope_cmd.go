package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
)

func newScopeCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Manage a project's scope document",
	}
	cmd.AddCommand(newScopeShowCmd(a), newScopeSetCmd(a), newScopeRemoveCmd(a))
	return cmd
}

// scopeFile is the on-disk form read by "scope set". JSON is accepted too,
// since it parses as YAML.
type scopeFile struct {
	Management struct {
		DefinitionMethod   string `yaml:"definition_method"`
		WBSMethod          string `yaml:"wbs_method"`
		BaselineApproval   string `yaml:"baseline_approval"`
		DeliverablesImpact string `yaml:"deliverables_impact"`
	} `yaml:"scope_management"`
	Requirements struct {
		PlanningApproach string `yaml:"planning_approach"`
		ChangeControl    string `yaml:"change_control"`
		Prioritization   string `yaml:"prioritization"`
		Metrics          string `yaml:"metrics"`
	} `yaml:"requirement_management"`
	Documentation struct {
		StakeholderNeeds       []string `yaml:"stakeholder_needs"`
		QuantifiedExpectations []string `yaml:"quantified_expectations"`
		Traceability           string   `yaml:"traceability"`
	} `yaml:"requirement_documentation"`
	Statement struct {
		EndProductScope    string   `yaml:"end_product_scope"`
		Deliverables       []string `yaml:"deliverables"`
		AcceptanceCriteria string   `yaml:"acceptance_criteria"`
		Exclusions         string   `yaml:"exclusions"`
		StatementOfWork    string   `yaml:"statement_of_work"`
	} `yaml:"scope_statement"`
	BaselineReference string `yaml:"baseline_reference"`
}

func readScopeFile(path, projectID string) (*domain.ScopeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f scopeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.Invalidf("parsing %s: %v", path, err)
	}
	return &domain.ScopeDocument{
		ProjectID: projectID,
		Management: domain.ScopeManagementPlan{
			DefinitionMethod:   f.Management.DefinitionMethod,
			WBSMethod:          f.Management.WBSMethod,
			BaselineApproval:   f.Management.BaselineApproval,
			DeliverablesImpact: f.Management.DeliverablesImpact,
		},
		Requirements: domain.RequirementManagementPlan{
			PlanningApproach: f.Requirements.PlanningApproach,
			ChangeControl:    f.Requirements.ChangeControl,
			Prioritization:   f.Requirements.Prioritization,
			Metrics:          f.Requirements.Metrics,
		},
		Documentation: domain.RequirementDocumentation{
			StakeholderNeeds:       f.Documentation.StakeholderNeeds,
			QuantifiedExpectations: f.Documentation.QuantifiedExpectations,
			Traceability:           f.Documentation.Traceability,
		},
		Statement: domain.ScopeStatement{
			EndProductScope:    f.Statement.EndProductScope,
			Deliverables:       f.Statement.Deliverables,
			AcceptanceCriteria: f.Statement.AcceptanceCriteria,
			Exclusions:         f.Statement.Exclusions,
			StatementOfWork:    f.Statement.StatementOfWork,
		},
		BaselineReference: f.BaselineReference,
	}, nil
}

func newScopeShowCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the scope document and work breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			doc, err := a.Scopes.Get(ctx, projectID)
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(out(cmd), formatter.Dim("No scope document. Write one with: taskup scope set --file scope.yaml"))
				return nil
			}
			if err != nil {
				return err
			}
			wps, err := a.WorkPackages.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.FormatScope(doc, wps))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newScopeSetCmd(a *App) *cobra.Command {
	var projectRef, path string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write the scope document from a YAML or JSON file",
		Long: `Write the scope document from a YAML or JSON file. The file replaces
the whole document; sections it leaves out are cleared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			doc, err := readScopeFile(path, projectID)
			if err != nil {
				return err
			}
			verb := "Updated"
			_, err = a.Scopes.Get(ctx, projectID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				verb = "Created"
				err = a.Scopes.Create(ctx, doc)
			case err == nil:
				err = a.Scopes.Replace(ctx, doc)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s scope document for %s\n", verb, projectRef)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	cmd.Flags().StringVarP(&path, "file", "f", "", "Scope file (.yaml or .json)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newScopeRemoveCmd(a *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete the scope document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, a, projectRef)
			if err != nil {
				return err
			}
			if err := a.Scopes.Delete(ctx, projectID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed scope document for %s\n", projectRef)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project", "", "Project short ID or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
