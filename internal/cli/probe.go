package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/wfimport/internal/config"
	"github.com/shaiso/wfimport/internal/importer"
	"github.com/shaiso/wfimport/internal/report"
	"github.com/shaiso/wfimport/internal/telemetry"
)

// NewProbeCmd создаёт команду проверки доступности сервера.
func NewProbeCmd(settingsFn func() (config.Config, error), outputFn func() *report.Output) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the n8n server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settingsFn()
			if err != nil {
				return err
			}
			out := outputFn()

			prober := importer.NewProber(importer.Config{
				BaseURL: cfg.BaseURL,
				Logger:  telemetry.FromContext(cmd.Context()),
			})
			result := prober.Probe(cmd.Context())

			if out.JSONMode() {
				out.JSON(result)
			} else {
				report.NewReporter(out).Probe(importer.NormalizeBaseURL(cfg.BaseURL), result)
			}

			if !result.Reachable {
				return fmt.Errorf("%w: %s", importer.ErrUnreachable, cfg.BaseURL)
			}
			return nil
		},
	}
}
