package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/wfimport/internal/config"
	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/importer"
	"github.com/shaiso/wfimport/internal/mq"
	"github.com/shaiso/wfimport/internal/repo"
	"github.com/shaiso/wfimport/internal/report"
	"github.com/shaiso/wfimport/internal/telemetry"
	"github.com/shaiso/wfimport/internal/workflow"
)

// ResultSink получает итог импорта: журнал, брокер событий.
type ResultSink interface {
	Record(ctx context.Context, res *domain.ImportResult) error
}

type importFlags struct {
	apiKey      string
	username    string
	password    string
	skipProbe   bool
	journal     bool
	notify      bool
	metricsFile string
}

// NewImportCmd создаёт команду импорта workflow.
func NewImportCmd(settingsFn func() (config.Config, error), outputFn func() *report.Output) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Upload a workflow JSON file to n8n",
		Long: "Upload a workflow JSON file to n8n, trying API key, basic auth and\n" +
			"unauthenticated requests against each known API endpoint until one succeeds.\n" +
			"The workflow is always created inactive.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settingsFn()
			if err != nil {
				return err
			}
			applyImportFlags(cmd, &cfg, f)

			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			path, err := cfg.ResolveWorkflowFile(arg)
			if err != nil {
				return err
			}

			return runImport(cmd.Context(), cfg, f, path, outputFn())
		},
	}

	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "n8n API key (default $"+config.EnvAPIKey+")")
	cmd.Flags().StringVar(&f.username, "username", "", "Basic auth user (default $"+config.EnvUsername+")")
	cmd.Flags().StringVar(&f.password, "password", "", "Basic auth password (default $"+config.EnvPassword+")")
	cmd.Flags().BoolVar(&f.skipProbe, "skip-probe", false, "Do not check server reachability before uploading")
	cmd.Flags().BoolVar(&f.journal, "journal", false, "Record the result in PostgreSQL ($"+config.EnvDBURL+")")
	cmd.Flags().BoolVar(&f.notify, "notify", false, "Publish the result to RabbitMQ ($"+config.EnvRabbitMQURL+")")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file (default $"+config.EnvMetricsFile+")")

	return cmd
}

// applyImportFlags переносит явно заданные флаги поверх окружения.
func applyImportFlags(cmd *cobra.Command, cfg *config.Config, f importFlags) {
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("username") {
		cfg.Username = f.username
	}
	if cmd.Flags().Changed("password") {
		cfg.Password = f.password
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

func runImport(ctx context.Context, cfg config.Config, f importFlags, path string, out *report.Output) error {
	if ctx == nil {
		ctx = context.Background()
	}

	importID := uuid.New()
	logger := telemetry.WithImportID(telemetry.FromContext(ctx), importID.String())
	ctx = telemetry.WithLogger(ctx, logger)

	reporter := report.NewReporter(out)
	reporter.Header()

	// Загрузка: ошибки файла прерывают запуск до любых сетевых запросов
	doc, err := workflow.Load(path)
	if err != nil {
		logger.Error("failed to load workflow", "path", path, "error", err)
		return err
	}
	logger.Info("workflow loaded",
		"path", path,
		"name", doc.Meta.Name,
		"nodes", doc.Meta.NodeCount,
	)
	reporter.Loaded(doc)

	metrics := telemetry.NewMetrics()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("failed to write metrics file", "path", cfg.MetricsFile, "error", err)
			}
		}()
	}

	httpCfg := importer.Config{
		BaseURL: cfg.BaseURL,
		Logger:  logger,
		Metrics: metrics,
	}

	if !f.skipProbe {
		probe := importer.NewProber(httpCfg).Probe(ctx)
		reporter.Probe(importer.NormalizeBaseURL(cfg.BaseURL), probe)
		if !probe.Reachable {
			if out.JSONMode() {
				out.JSON(probe)
			}
			return fmt.Errorf("%w: %s", importer.ErrUnreachable, cfg.BaseURL)
		}
	}

	creds := domain.Credentials(cfg.APIKey, cfg.Username, cfg.Password)
	logger.Info("uploading workflow", "base_url", cfg.BaseURL, "schemes", len(creds))

	result := importer.NewUploader(httpCfg).Upload(ctx, doc.Payload(), creds)
	result.ImportID = importID
	result.SourceFile = path

	reporter.Result(result)

	sinks, closeSinks := openSinks(ctx, cfg, f, logger)
	defer closeSinks()
	recordResult(ctx, out, logger, sinks, result)

	if !result.Succeeded {
		return fmt.Errorf("%w: %s", importer.ErrImportFailed, cfg.BaseURL)
	}
	return nil
}

// recordResult передаёт итог во все sinks. Ошибки только логируются.
func recordResult(ctx context.Context, out *report.Output, logger *slog.Logger, sinks []ResultSink, result *domain.ImportResult) {
	for _, sink := range sinks {
		name := sinkName(sink)
		if err := sink.Record(ctx, result); err != nil {
			logger.Warn("failed to record import result", "sink", name, "error", err)
			continue
		}
		out.Success(fmt.Sprintf("Import %s recorded: %s", result.ImportID, name))
	}
}

func sinkName(sink ResultSink) string {
	switch sink.(type) {
	case *repo.ImportRepo:
		return "journal"
	case *mq.Publisher:
		return "events"
	default:
		return fmt.Sprintf("%T", sink)
	}
}

// openSinks подключает журнал и брокер, если они запрошены флагами.
// Недоступный sink логируется и пропускается.
func openSinks(ctx context.Context, cfg config.Config, f importFlags, logger *slog.Logger) ([]ResultSink, func()) {
	var sinks []ResultSink
	var closers []func()

	if f.journal {
		pool, err := repo.NewPool(ctx, cfg.DBURL)
		if err != nil {
			logger.Warn("import journal unavailable", "error", err)
		} else {
			closers = append(closers, pool.Close)
			importRepo := repo.NewImportRepo(pool)
			if err := importRepo.EnsureSchema(ctx); err != nil {
				logger.Warn("import journal unavailable", "error", err)
			} else {
				sinks = append(sinks, importRepo)
			}
		}
	}

	if f.notify {
		if cfg.RabbitMQURL == "" {
			logger.Warn("event notification unavailable", "error", "RABBITMQ_URL is not set")
		} else if conn, err := mq.NewConnection(cfg.RabbitMQURL, logger); err != nil {
			logger.Warn("event notification unavailable", "error", err)
		} else {
			closers = append(closers, func() { conn.Close() })
			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			} else {
				sinks = append(sinks, mq.NewPublisher(conn, logger))
			}
		}
	}

	return sinks, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
