package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/wfimport/internal/config"
	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/repo"
	"github.com/shaiso/wfimport/internal/report"
)

// NewHistoryCmd создаёт команду просмотра журнала импортов.
func NewHistoryCmd(settingsFn func() (config.Config, error), outputFn func() *report.Output) *cobra.Command {
	var limit int
	var importID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded imports (requires $" + config.EnvDBURL + ")",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uuid.UUID
			if importID != "" {
				parsed, err := uuid.Parse(importID)
				if err != nil {
					return fmt.Errorf("invalid import id %q: %w", importID, err)
				}
				id = parsed
			}

			cfg, err := settingsFn()
			if err != nil {
				return err
			}
			out := outputFn()

			pool, err := repo.NewPool(cmd.Context(), cfg.DBURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			imports := repo.NewImportRepo(pool)

			if importID != "" {
				imp, err := imports.GetByID(cmd.Context(), id)
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("import %s: %w", id, err)
				}
				if err != nil {
					return err
				}
				if out.JSONMode() {
					out.JSON(imp)
					return nil
				}
				out.Table(historyHeaders, historyRows([]domain.ImportResult{*imp}))
				report.NewReporter(out).Attempts(imp.Attempts)
				return nil
			}

			list, err := imports.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out.Print(historyHeaders, historyRows(list), list)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().StringVar(&importID, "id", "", "Show a single import with its attempts")

	return cmd
}

var historyHeaders = []string{"IMPORT_ID", "STARTED", "RESULT", "WORKFLOW_ID", "NAME", "VIA", "ATTEMPTS"}

func historyRows(imports []domain.ImportResult) [][]string {
	rows := make([][]string, len(imports))
	for i, imp := range imports {
		result := "FAILED"
		via := "-"
		if imp.Succeeded {
			result = "SUCCEEDED"
			via = string(imp.Scheme) + " " + imp.Endpoint
		}
		rows[i] = []string{
			imp.ImportID.String(),
			imp.StartedAt.Format(time.RFC3339),
			result,
			imp.WorkflowID,
			imp.WorkflowName,
			via,
			strconv.Itoa(len(imp.Attempts)),
		}
	}
	return rows
}
