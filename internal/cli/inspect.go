package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/wfimport/internal/report"
	"github.com/shaiso/wfimport/internal/workflow"
)

// NewInspectCmd создаёт команду просмотра документа без загрузки на сервер.
func NewInspectCmd(outputFn func() *report.Output) *cobra.Command {
	var showPayload bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Load a workflow file and show what would be uploaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			doc, err := workflow.Load(args[0])
			if err != nil {
				return err
			}

			if showPayload {
				out.JSON(doc.Payload())
				return nil
			}

			m := doc.Meta
			out.Print(
				[]string{"FILE", "NAME", "NODES", "ACTIVE", "TAGS", "SIZE"},
				[][]string{{
					doc.Path,
					m.Name,
					strconv.Itoa(m.NodeCount),
					strconv.FormatBool(m.Active),
					strconv.FormatBool(m.HasTags),
					strconv.Itoa(m.SizeBytes),
				}},
				m,
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPayload, "payload", false, "Print the request body instead of the summary")

	return cmd
}
