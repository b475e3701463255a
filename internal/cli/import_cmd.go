package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project from a JSON or YAML file",
		Long: `Import a project with its users, stakeholders, risks, tasks, resources
and work packages. The file is checked against the import schema first and
then written in one transaction: on any error nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Import.ImportFile(cmd.Context(), args[0])
			if err != nil {
				var se *importer.SchemaError
				if errors.As(err, &se) {
					for _, p := range se.Problems {
						fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render("  ✖ ")+p.Error())
					}
				}
				return err
			}

			fmt.Fprintf(out(cmd), "Imported project %s [%s]\n", res.Project.Name, res.Project.DisplayID())
			fmt.Fprintln(out(cmd), formatter.RenderFields([][2]string{
				{"Users created", strconv.Itoa(res.UsersCreated)},
				{"Stakeholders", strconv.Itoa(res.StakeholderCount)},
				{"Risks", strconv.Itoa(res.RiskCount)},
				{"Plans", strconv.Itoa(res.PlanCount)},
				{"Tasks", strconv.Itoa(res.TaskCount)},
				{"Resources", strconv.Itoa(res.ResourceCount)},
				{"Work packages", strconv.Itoa(res.WorkPackageCount)},
			}))
			return nil
		},
	}
}
