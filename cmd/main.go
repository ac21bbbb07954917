package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/bryan-cox/taskmessager/internal/clipboard"
	"github.com/bryan-cox/taskmessager/internal/config"
	"github.com/bryan-cox/taskmessager/internal/domain"
	"github.com/bryan-cox/taskmessager/internal/logging"
	"github.com/bryan-cox/taskmessager/internal/metrics"
	"github.com/bryan-cox/taskmessager/internal/model"
	"github.com/bryan-cox/taskmessager/internal/report"
	"github.com/bryan-cox/taskmessager/internal/request"
	"github.com/bryan-cox/taskmessager/internal/server"
	"github.com/bryan-cox/taskmessager/internal/service"
	"github.com/bryan-cox/taskmessager/internal/webhook"
)

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	envFile     string
	domainsFile string
	logLevel    string
	inputFile   string
	transport   string
	host        string
	port        int
	baseURL     string
	format      string
	copyOutput  bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:           "taskmessager",
		Short:         "Send structured task reports to Google Chat.",
		Long:          `TaskMessager validates task-report requests, formats them as Google Chat cards and posts them to a webhook. It runs as an MCP tool server or as a one-shot CLI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// serveCmd represents the serve command
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server.",
		Long:  `Serves the send_google_chat_message and list_domains tools over stdio or SSE.`,
		RunE:  runServeCommand,
	}

	// sendCmd represents the send command
	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Send one task report from a JSON file.",
		Long:  `Reads a task-report JSON object from --file (or stdin with "-"), sends it to the webhook and prints the result.`,
		RunE:  runSendCommand,
	}

	// previewCmd represents the preview command
	previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Print the card for a task report without sending it.",
		Long:  `Validates a task-report JSON object and prints the resulting card JSON or a Markdown rendering.`,
		RunE:  runPreviewCommand,
	}

	// domainsCmd represents the domains command
	domainsCmd = &cobra.Command{
		Use:   "domains",
		Short: "List the available task domains.",
		RunE:  runDomainsCommand,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	// Add persistent flags to the root command (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file.")
	rootCmd.PersistentFlags().StringVar(&domainsFile, "domains-file", "", "YAML file with additional or replacement domains (overrides DOMAINS_FILE).")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL).")

	serveCmd.Flags().StringVar(&transport, "transport", "", "MCP transport: stdio or sse (overrides MCP_TRANSPORT).")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen host for sse (overrides MCP_HOST).")
	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port for sse (overrides MCP_PORT).")
	serveCmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL advertised to SSE clients.")

	sendCmd.Flags().StringVar(&inputFile, "file", "-", "Path to the task-report JSON file, or - for stdin.")

	previewCmd.Flags().StringVar(&inputFile, "file", "-", "Path to the task-report JSON file, or - for stdin.")
	previewCmd.Flags().StringVar(&format, "format", "card", "Output format: card or markdown.")
	previewCmd.Flags().BoolVar(&copyOutput, "copy", false, "Also copy the output to the system clipboard.")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(domainsCmd)
}

// --- Main Application Entry Point ---

func main() {
	// Logs go to stderr; stdout carries the stdio transport and command output.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	Execute()
}

// --- Command Execution Logic ---

// app bundles the pieces every command builds from configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	catalog  domain.Catalog
	registry *prometheus.Registry
	service  *service.Service
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if domainsFile != "" {
		cfg.DomainsFile = domainsFile
	}

	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	catalog := domain.Builtin()
	if cfg.DomainsFile != "" {
		catalog, err = domain.LoadFile(cfg.DomainsFile)
		if err != nil {
			return nil, &config.Error{Key: config.EnvDomainsFile, Reason: err.Error()}
		}
	}

	registry := prometheus.NewRegistry()
	rec, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	sender := webhook.NewSender(cfg.WebhookURL, webhook.WithLogger(logger), webhook.WithMetrics(rec))
	svc := service.New(request.NewNormalizer(catalog, cfg.TaskOwner), sender, logger, rec)

	return &app{cfg: cfg, logger: logger, catalog: catalog, registry: registry, service: svc}, nil
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := a.cfg.RequireWebhook(); err != nil {
		return err
	}

	if err := a.cfg.ResolveServe(transport, port); err != nil {
		return err
	}
	if host != "" {
		a.cfg.Host = host
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv, err := server.New(a.service, a.catalog, a.logger, a.registry)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Transport == config.TransportStdio {
		return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return srv.ServeSSE(ctx, a.cfg.Addr(), advertisedURL(a.cfg))
}

func runSendCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := a.cfg.RequireWebhook(); err != nil {
		return err
	}

	in, err := readInput(cmd, inputFile)
	if err != nil {
		if request.IsValidationError(err) {
			return writeResult(cmd.OutOrStdout(), model.WebhookResult{Success: false, Message: "Invalid input: " + err.Error()}, err)
		}
		return err
	}

	res, err := a.service.SendTaskReport(cmd.Context(), in)
	if err == nil && !res.Success {
		err = fmt.Errorf("webhook delivery failed: %s", res.Message)
	}
	return writeResult(cmd.OutOrStdout(), res, err)
}

// writeResult prints res and returns cause, so the result is on stdout even
// when the command fails.
func writeResult(out io.Writer, res model.WebhookResult, cause error) error {
	if err := writeJSON(out, res); err != nil {
		return err
	}
	return cause
}

func runPreviewCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	in, err := readInput(cmd, inputFile)
	if err != nil {
		return err
	}
	req, payload, err := a.service.Preview(in)
	if err != nil {
		return err
	}

	var out string
	switch format {
	case "card":
		data, err := marshalJSON(payload)
		if err != nil {
			return err
		}
		out = string(data)
	case "markdown", "md":
		out = report.Markdown(req)
	default:
		return fmt.Errorf("unknown format %q, use card or markdown", format)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	if copyOutput {
		if err := clipboard.Copy(out); err != nil {
			a.logger.Warn("could not copy preview to clipboard", "error", err)
		}
	}
	return nil
}

func runDomainsCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	summaries := a.catalog.Summaries()
	keys := make([]string, 0, len(summaries))
	for key := range summaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	for _, key := range keys {
		s := summaries[key]
		fmt.Fprintf(out, "%s (%s)\n", key, s.Label)
		for _, step := range s.DefaultSteps {
			fmt.Fprintf(out, "    • %s\n", step)
		}
		fmt.Fprintf(out, "    Kabul kriterleri: %d\n", s.DefaultCriteriaCount)
	}
	return nil
}

// --- Helper Functions ---

func readInput(cmd *cobra.Command, path string) (model.TaskReportInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.TaskReportInput{}, fmt.Errorf("could not read request '%s': %w", path, err)
	}
	return request.DecodeJSON(data)
}

func marshalJSON(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeJSON(out io.Writer, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func advertisedURL(cfg config.Config) string {
	if baseURL != "" {
		return baseURL
	}
	h := cfg.Host
	if h == "" || h == "0.0.0.0" || h == "::" {
		h = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", h, cfg.Port)
}
