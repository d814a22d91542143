package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/statusboard/internal/adapters/server"
	servercommon "github.com/hylla/statusboard/internal/adapters/server/common"
	"github.com/hylla/statusboard/internal/adapters/storage/sqlite"
	"github.com/hylla/statusboard/internal/adapters/webapi"
	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/config"
	"github.com/hylla/statusboard/internal/domain"
	"github.com/hylla/statusboard/internal/platform"
	"github.com/hylla/statusboard/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version), fang.WithoutManpage())
}

// cli holds the persistent flag values shared by every command.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr, appName: platform.DefaultAppName}
	if envApp := strings.TrimSpace(os.Getenv("STATUSBOARD_APP_NAME")); envApp != "" {
		c.appName = envApp
	}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("STATUSBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}

	root := &cobra.Command{
		Use:   "statusboard",
		Short: "Kanban board over the option-set fields of a record view",
		Long: `statusboard renders the records of one view as cards grouped by an
option-set field. Dragging a card to another column writes the new option
value back to the record.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.appName, "app", c.appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		c.serveCommand(),
		c.boardCommand(),
		c.moveCommand(),
		c.metadataCommand(),
		c.seedCommand(),
		c.pathsCommand(),
		c.versionCommand(),
	)
	return root
}

// versionCommand prints the build version.
func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(c.stdout, "%s %s\n", c.appName, version)
			return err
		},
	}
}

// pathsCommand prints the resolved runtime paths.
func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data, and log paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := c.paths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.stdout, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(c.stdout, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(c.stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(c.stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(c.stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(c.stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// seedCommand installs the demo view into the local store.
func (c *cli) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the demo opportunity view into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.open("seed", true)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			repo, err := env.openRepository()
			if err != nil {
				return err
			}
			seeded, err := sqlite.Seed(cmd.Context(), repo, sqlite.SeedOptions{IDGen: uuid.NewString})
			if err != nil {
				env.logger.Error("seed failed", "err", err)
				return fmt.Errorf("seed demo view: %w", err)
			}
			if !seeded {
				_, _ = fmt.Fprintf(c.stdout, "demo view %s already present\n", sqlite.DemoViewID)
				return nil
			}
			env.logger.Info("demo view seeded", "view", sqlite.DemoViewID, "db_path", env.cfg.Database.Path)
			_, _ = fmt.Fprintf(c.stdout, "seeded demo view %s\n", sqlite.DemoViewID)
			return nil
		},
	}
}

// metadataCommand prints the ordered options of one field.
func (c *cli) metadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <entity> <field>",
		Short: "Print the ordered option metadata of one field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdapter(cmd.Context(), "metadata", func(_ *environment, adapter *servercommon.AppServiceAdapter) error {
				out, err := adapter.OptionMetadata(cmd.Context(), servercommon.OptionMetadataRequest{Entity: args[0], Field: args[1]})
				if err != nil {
					return err
				}
				return writeJSON(c.stdout, out)
			})
		},
	}
}

// boardCommand prints one board snapshot.
func (c *cli) boardCommand() *cobra.Command {
	var req servercommon.BoardRequest
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the current board as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withAdapter(cmd.Context(), "board", func(_ *environment, adapter *servercommon.AppServiceAdapter) error {
				out, err := adapter.Board(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(c.stdout, out)
			})
		},
	}
	cmd.Flags().StringVar(&req.Attribute, "attribute", "", "group by this option-set field")
	cmd.Flags().StringVar(&req.Page, "page", "", "move one page: next or previous")
	cmd.Flags().BoolVar(&req.Refresh, "refresh", false, "re-read records before rendering")
	return cmd
}

// moveCommand moves one card to a column without the TUI.
func (c *cli) moveCommand() *cobra.Command {
	var attribute string
	cmd := &cobra.Command{
		Use:   "move <record-id> <column-key>",
		Short: "Move one card to another column and write the option value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withAdapter(cmd.Context(), "move", func(_ *environment, adapter *servercommon.AppServiceAdapter) error {
				if attribute != "" {
					if _, err := adapter.Board(cmd.Context(), servercommon.BoardRequest{Attribute: attribute}); err != nil {
						return err
					}
				}
				out, err := adapter.MoveCard(cmd.Context(), servercommon.MoveCardRequest{RecordID: args[0], TargetKey: args[1]})
				if writeErr := writeJSON(c.stdout, out); writeErr != nil && err == nil {
					err = writeErr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&attribute, "attribute", "", "group by this option-set field before moving")
	return cmd
}

// serveCommand runs the HTTP API and MCP endpoints.
func (c *cli) serveCommand() *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withAdapter(cmd.Context(), "serve", func(env *environment, adapter *servercommon.AppServiceAdapter) error {
				cfg := env.cfg
				return serveCommandRunner(cmd.Context(), serveradapter.Config{
					HTTPBind:      firstNonEmpty(httpBind, cfg.Server.HTTPBind),
					APIEndpoint:   firstNonEmpty(apiEndpoint, cfg.Server.APIEndpoint),
					MCPEndpoint:   firstNonEmpty(mcpEndpoint, cfg.Server.MCPEndpoint),
					ServerName:    c.appName,
					ServerVersion: version,
				}, serveradapter.Dependencies{
					OptionMetadata: adapter,
					Boards:         adapter,
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	return cmd
}

// runTUI runs the interactive board.
func (c *cli) runTUI(ctx context.Context) error {
	env, err := c.open("tui", false)
	if err != nil {
		return err
	}
	defer env.close(c.stderr)

	session, _, err := env.openSession(ctx)
	if err != nil {
		return err
	}
	m := tui.NewModel(
		session,
		tui.WithTitle(c.appName),
		tui.WithKeyConfig(toTUIKeyConfig(env.cfg.Keys)),
	)
	env.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

// withAdapter opens one session and hands the server adapter to fn.
func (c *cli) withAdapter(ctx context.Context, command string, fn func(*environment, *servercommon.AppServiceAdapter) error) error {
	env, err := c.open(command, true)
	if err != nil {
		return err
	}
	defer env.close(c.stderr)

	session, options, err := env.openSession(ctx)
	if err != nil {
		return err
	}
	env.logger.Info("command flow start", "command", command)
	if err := fn(env, servercommon.NewAppServiceAdapter(session, options)); err != nil {
		env.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	env.logger.Info("command flow complete", "command", command)
	return nil
}

// environment holds resolved configuration and opened resources for one command.
type environment struct {
	appName    string
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
}

// paths resolves platform paths for the current flags.
func (c *cli) paths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
}

// open resolves paths, loads config, and configures logging.
func (c *cli) open(command string, console bool) (*environment, error) {
	paths, err := c.paths()
	if err != nil {
		return nil, err
	}

	configPath := c.configPath
	dbPath := c.dbPath
	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("STATUSBOARD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("STATUSBOARD_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, paths.LogDir, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
	logger.SetConsoleEnabled(console)

	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "source", cfg.Board.Source, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &environment{
		appName:    c.appName,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// close releases the repository and the log sink.
func (e *environment) close(stderr io.Writer) {
	if e.repo != nil {
		if err := e.repo.Close(); err != nil {
			e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
		}
	}
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		// Keep TUI shutdown quiet on the terminal when console logging is intentionally muted.
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// openRepository opens the local sqlite store once.
func (e *environment) openRepository() (*sqlite.Repository, error) {
	if e.repo != nil {
		return e.repo, nil
	}
	e.logger.Info("opening sqlite repository", "db_path", e.cfg.Database.Path)
	if err := os.MkdirAll(filepath.Dir(e.cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	repo, err := sqlite.Open(e.cfg.Database.Path)
	if err != nil {
		e.logger.Error("sqlite open failed", "db_path", e.cfg.Database.Path, "err", err)
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	e.logger.Info("sqlite repository ready", "db_path", e.cfg.Database.Path, "migrations", "ensured")
	e.repo = repo
	return repo, nil
}

// openSession wires the configured source into one board session.
func (e *environment) openSession(ctx context.Context) (*app.Session, *app.OptionMetadataService, error) {
	timeout, err := e.cfg.Board.Timeout()
	if err != nil {
		return nil, nil, err
	}

	var (
		provider app.DataProvider
		metadata app.MetadataProvider
		updater  app.RecordUpdater
	)
	switch e.cfg.Board.Source {
	case config.SourceWebAPI:
		provider, metadata, updater, err = e.openWebAPI()
	default:
		provider, metadata, updater, err = e.openLocal(ctx)
	}
	if err != nil {
		return nil, nil, err
	}

	loader := app.NewMetadataLoader(metadata, app.MetadataLoaderConfig{
		LanguageID:         e.cfg.Board.LanguageID,
		FallbackLanguageID: e.cfg.Board.FallbackLanguageID,
		FetchTimeout:       timeout,
	})
	controller := app.NewDragDropController(updater, e.logger, app.DragDropConfig{UpdateTimeout: timeout})
	session := app.NewSession(provider, loader, controller, e.logger, app.SessionConfig{
		EntityType: e.cfg.Board.Entity,
		Attribute:  e.cfg.Board.Attribute,
		PageSize:   e.cfg.Board.PageSize,
	})
	e.logger.Debug("board session initialized", "entity", session.EntityType(), "attribute", e.cfg.Board.Attribute, "page_size", e.cfg.Board.PageSize)
	return session, app.NewOptionMetadataService(loader), nil
}

// openLocal binds the session to one stored view, seeding the demo view on first run.
func (e *environment) openLocal(ctx context.Context) (app.DataProvider, app.MetadataProvider, app.RecordUpdater, error) {
	repo, err := e.openRepository()
	if err != nil {
		return nil, nil, nil, err
	}
	if e.cfg.Board.View == sqlite.DemoViewID {
		seeded, err := sqlite.Seed(ctx, repo, sqlite.SeedOptions{IDGen: uuid.NewString})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("seed demo view: %w", err)
		}
		if seeded {
			e.logger.Info("demo view seeded", "view", sqlite.DemoViewID)
		}
	}
	dataSet, err := sqlite.NewDataSet(ctx, repo, e.cfg.Board.View, sqlite.DataSetOptions{
		LanguageID:         e.cfg.Board.LanguageID,
		FallbackLanguageID: e.cfg.Board.FallbackLanguageID,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open local view: %w", err)
	}
	return dataSet, repo, repo, nil
}

// openWebAPI binds the session to one remote entity collection.
func (e *environment) openWebAPI() (app.DataProvider, app.MetadataProvider, app.RecordUpdater, error) {
	timeout, _ := e.cfg.Board.Timeout()
	client, err := webapi.NewClient(webapi.Config{
		BaseURL:    e.cfg.WebAPI.BaseURL,
		APIVersion: e.cfg.WebAPI.APIVersion,
		Token:      firstNonEmpty(os.Getenv("STATUSBOARD_WEBAPI_TOKEN"), e.cfg.WebAPI.Token),
		Procedure:  e.cfg.WebAPI.Procedure,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configure web api client: %w", err)
	}
	definitions := webapi.NewMetadataClient(client)
	var metadata app.MetadataProvider = definitions
	if e.cfg.WebAPI.Metadata == config.MetadataProcedure {
		metadata = webapi.NewProcedureClient(client)
	}
	records := webapi.NewRecordClient(client, definitions)
	recordSet, err := webapi.NewRecordSet(client, records, webapi.RecordSetConfig{
		EntityType: e.cfg.Board.Entity,
		Columns:    toViewColumns(e.cfg.WebAPI.Columns),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configure web api record set: %w", err)
	}
	e.logger.Info("web api source ready", "api_url", client.APIURL(), "entity", e.cfg.Board.Entity, "metadata", e.cfg.WebAPI.Metadata)
	return recordSet, metadata, records, nil
}

// toViewColumns maps configured columns into view columns in declaration order.
func toViewColumns(in []config.ColumnConfig) []domain.ViewColumn {
	out := make([]domain.ViewColumn, 0, len(in))
	for idx, column := range in {
		out = append(out, domain.ViewColumn{
			Name:        strings.ToLower(strings.TrimSpace(column.Name)),
			DisplayName: strings.TrimSpace(column.DisplayName),
			DataType:    strings.TrimSpace(column.DataType),
			Order:       idx,
		})
	}
	return out
}

// toTUIKeyConfig maps persisted key bindings into model options.
func toTUIKeyConfig(cfg config.KeyConfig) tui.KeyConfig {
	return tui.KeyConfig{
		Grab:          cfg.Grab,
		Drop:          cfg.Drop,
		OpenRecord:    cfg.OpenRecord,
		NextAttribute: cfg.NextAttribute,
		CopyID:        cfg.CopyID,
	}
}

// writeJSON writes one indented JSON document.
func writeJSON(w io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, logDir string, now func() time.Time) (*runtimeLogger, error) {
	rawLevel := strings.TrimSpace(cfg.Level)
	if rawLevel == "" {
		rawLevel = "info"
	}
	level, err := charmLog.ParseLevel(rawLevel)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(logDir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.emit(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}

// emit sends one event to every enabled sink.
func (l *runtimeLogger) emit(write func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if l.shouldLogToSink(sink) {
			write(sink)
		}
	}
}

// devLogFilePath resolves the dev log file path for the current run day.
func devLogFilePath(logDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(logDir)
	if baseDir == "" {
		return "", errors.New("log dir is required")
	}
	fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	stem := strings.TrimSpace(appName)
	if stem == "" {
		return platform.DefaultAppName
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem = strings.Trim(replacer.Replace(stem), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
