package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	serveradapter "github.com/hylla/statusboard/internal/adapters/server"
	servercommon "github.com/hylla/statusboard/internal/adapters/server/common"
	"github.com/hylla/statusboard/internal/config"
	"github.com/hylla/statusboard/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("STATUSBOARD_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// isolatePaths points platform path resolution at a temp dir.
func isolatePaths(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("STATUSBOARD_CONFIG", "")
	t.Setenv("STATUSBOARD_DB_PATH", "")
	return root
}

// localArgs returns flags for a temp database and a missing config file.
func localArgs(t *testing.T, root string, args ...string) []string {
	t.Helper()
	base := []string{"--db", filepath.Join(root, "statusboard.db"), "--config", filepath.Join(root, "missing.toml")}
	return append(base, args...)
}

// readBoard runs the board command and decodes its snapshot.
func readBoard(t *testing.T, root string, args ...string) servercommon.BoardSnapshot {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), localArgs(t, root, append([]string{"board"}, args...)...), &out, io.Discard); err != nil {
		t.Fatalf("run(board) error = %v", err)
	}
	var board servercommon.BoardSnapshot
	if err := json.Unmarshal(out.Bytes(), &board); err != nil {
		t.Fatalf("decode board output %q: %v", out.String(), err)
	}
	return board
}

// TestRunVersion verifies the version command output.
func TestRunVersion(t *testing.T) {
	isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "statusboard dev") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies the root command builds the board model and starts the program.
func TestRunStartsProgram(t *testing.T) {
	root := isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	var started tea.Model
	programFactory = func(m tea.Model) program {
		started = m
		return fakeProgram{}
	}
	if err := run(context.Background(), localArgs(t, root), io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := started.(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", started)
	}
	if _, err := os.Stat(filepath.Join(root, "statusboard.db")); err != nil {
		t.Fatalf("expected database created, stat error %v", err)
	}
}

// TestRunProgramErrorPropagates verifies TUI failures surface from run.
func TestRunProgramErrorPropagates(t *testing.T) {
	root := isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(tea.Model) program {
		return fakeProgram{runErr: errors.New("terminal gone")}
	}
	err := run(context.Background(), localArgs(t, root), io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "terminal gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunUnknownCommand verifies unknown commands fail.
func TestRunUnknownCommand(t *testing.T) {
	isolatePaths(t)
	if err := run(context.Background(), []string{"bogus"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unknown command error")
	}
}

// TestRunSeedCommand verifies demo seeding is idempotent.
func TestRunSeedCommand(t *testing.T) {
	root := isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), localArgs(t, root, "seed"), &out, io.Discard); err != nil {
		t.Fatalf("run(seed) error = %v", err)
	}
	if !strings.Contains(out.String(), "seeded demo view open-opportunities") {
		t.Fatalf("unexpected seed output %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), localArgs(t, root, "seed"), &out, io.Discard); err != nil {
		t.Fatalf("run(seed again) error = %v", err)
	}
	if !strings.Contains(out.String(), "already present") {
		t.Fatalf("unexpected second seed output %q", out.String())
	}
}

// TestRunBoardAndMoveCommands verifies a headless move persists across runs.
func TestRunBoardAndMoveCommands(t *testing.T) {
	root := isolatePaths(t)
	board := readBoard(t, root)
	if board.EntityType != "opportunity" || board.StateHash == "" || len(board.Columns) == 0 {
		t.Fatalf("unexpected board %#v", board)
	}

	var (
		recordID string
		source   string
		target   string
	)
	for _, column := range board.Columns {
		if !column.DropTarget {
			continue
		}
		if recordID == "" && len(column.Cards) > 0 {
			recordID = column.Cards[0].RecordID
			source = column.Key
			continue
		}
		if target == "" && column.Key != source {
			target = column.Key
		}
	}
	if recordID == "" || target == "" {
		t.Fatalf("expected a movable card and a target column in %#v", board.Columns)
	}

	var out bytes.Buffer
	if err := run(context.Background(), localArgs(t, root, "move", recordID, target), &out, io.Discard); err != nil {
		t.Fatalf("run(move) error = %v", err)
	}
	var result servercommon.MoveCardResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode move output %q: %v", out.String(), err)
	}
	if result.Outcome != "applied" || result.SourceKey != source || result.TargetKey != target {
		t.Fatalf("unexpected move result %#v", result)
	}

	after := readBoard(t, root, "--attribute", board.Attribute)
	found := false
	for _, column := range after.Columns {
		for _, card := range column.Cards {
			if card.RecordID == recordID {
				found = column.Key == target
			}
		}
	}
	if !found {
		t.Fatalf("expected %s in column %s after reload", recordID, target)
	}
	if after.StateHash == board.StateHash {
		t.Fatal("expected state hash to change after move")
	}
}

// TestRunMoveCommandRejectsUnknownRecord verifies headless move errors.
func TestRunMoveCommandRejectsUnknownRecord(t *testing.T) {
	root := isolatePaths(t)
	err := run(context.Background(), localArgs(t, root, "move", "missing", "0;1"), io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected move of unknown record to fail")
	}
	if err := run(context.Background(), localArgs(t, root, "move", "only-one"), io.Discard, io.Discard); err == nil {
		t.Fatal("expected argument count error")
	}
}

// TestRunMetadataCommand verifies option metadata output for the status field.
func TestRunMetadataCommand(t *testing.T) {
	root := isolatePaths(t)
	var out bytes.Buffer
	if err := run(context.Background(), localArgs(t, root, "metadata", "opportunity", "statuscode"), &out, io.Discard); err != nil {
		t.Fatalf("run(metadata) error = %v", err)
	}
	var metadata servercommon.OptionMetadata
	if err := json.Unmarshal(out.Bytes(), &metadata); err != nil {
		t.Fatalf("decode metadata output %q: %v", out.String(), err)
	}
	if metadata.Field != "statuscode" || len(metadata.Options) == 0 {
		t.Fatalf("unexpected metadata %#v", metadata)
	}
	for _, opt := range metadata.Options {
		if opt.StateCode == nil {
			t.Fatalf("expected status options to carry a state code, got %#v", opt)
		}
	}

	if err := run(context.Background(), localArgs(t, root, "metadata", "opportunity", "nosuchfield"), io.Discard, io.Discard); err == nil {
		t.Fatal("expected unknown field to fail")
	}
}

// TestRunServeCommandUsesConfig verifies serve flags fall back to config values.
func TestRunServeCommandUsesConfig(t *testing.T) {
	root := isolatePaths(t)
	cfgPath := filepath.Join(root, "config.toml")
	content := "[server]\nhttp_bind = \"127.0.0.1:9999\"\napi_endpoint = \"/api/v2\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	origRunner := serveCommandRunner
	t.Cleanup(func() { serveCommandRunner = origRunner })
	var (
		gotCfg   serveradapter.Config
		gotBoard servercommon.BoardSnapshot
	)
	serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
		gotCfg = cfg
		if deps.OptionMetadata == nil || deps.Boards == nil {
			t.Fatal("expected serve dependencies")
		}
		board, err := deps.Boards.Board(ctx, servercommon.BoardRequest{})
		gotBoard = board
		return err
	}

	args := []string{"--db", filepath.Join(root, "serve.db"), "--config", cfgPath, "serve", "--mcp-endpoint", "/tools"}
	if err := run(context.Background(), args, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}
	want := serveradapter.Config{
		HTTPBind:      "127.0.0.1:9999",
		APIEndpoint:   "/api/v2",
		MCPEndpoint:   "/tools",
		ServerName:    "statusboard",
		ServerVersion: "dev",
	}
	if gotCfg != want {
		t.Fatalf("serve config = %#v, want %#v", gotCfg, want)
	}
	if gotBoard.EntityType != "opportunity" {
		t.Fatalf("expected live board through serve deps, got %#v", gotBoard)
	}
}

// TestRunConfigAndDBEnvOverrides verifies env path overrides.
func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	root := isolatePaths(t)
	dbPath := filepath.Join(root, "env.db")
	cfgPath := filepath.Join(root, "env.toml")
	if err := os.WriteFile(cfgPath, []byte("[database]\npath = \"/tmp/ignore-me.db\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("STATUSBOARD_CONFIG", cfgPath)
	t.Setenv("STATUSBOARD_DB_PATH", dbPath)

	if err := run(context.Background(), []string{"seed"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(seed with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
}

// TestRunRejectsInvalidConfig verifies config validation failures stop startup.
func TestRunRejectsInvalidConfig(t *testing.T) {
	root := isolatePaths(t)
	cases := map[string]string{
		"logging level": "[logging]\nlevel = \"verbose\"\n",
		"source":        "[board]\nsource = \"ftp\"\n",
		"duplicate key": "[keys]\ngrab = \"o\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfgPath := filepath.Join(root, strings.ReplaceAll(name, " ", "-")+".toml")
			if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			args := []string{"--db", filepath.Join(root, "bad.db"), "--config", cfgPath, "board"}
			if err := run(context.Background(), args, io.Discard, io.Discard); err == nil {
				t.Fatal("expected invalid config error")
			}
		})
	}
}

// TestRunPathsCommand verifies path output honors app and dev flags.
func TestRunPathsCommand(t *testing.T) {
	isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "boardx", "--dev", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: boardx", "dev_mode: true", "boardx-dev", "log_dir:"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	root := isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	var stderr bytes.Buffer
	if err := run(context.Background(), append([]string{"--dev"}, localArgs(t, root)...), io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(root, "data", "statusboard-dev", "logs")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected runtime log file to include TUI lifecycle entries, got %q", string(content))
	}
}

// TestParseBoolEnv verifies boolean env parsing.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("STATUSBOARD_BOOL_TEST", "true")
	if v, ok := parseBoolEnv("STATUSBOARD_BOOL_TEST"); !ok || !v {
		t.Fatalf("expected true/true, got %t/%t", v, ok)
	}
	t.Setenv("STATUSBOARD_BOOL_TEST", "nope")
	if _, ok := parseBoolEnv("STATUSBOARD_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
	t.Setenv("STATUSBOARD_BOOL_TEST", "")
	if _, ok := parseBoolEnv("STATUSBOARD_BOOL_TEST"); ok {
		t.Fatal("expected empty bool to be ignored")
	}
}

// TestDevLogFilePath verifies dev log file naming.
func TestDevLogFilePath(t *testing.T) {
	now := time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	got, err := devLogFilePath("/tmp/logs", "my board", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	if want := filepath.Join("/tmp/logs", "my-board-20260223.log"); got != want {
		t.Fatalf("devLogFilePath() = %q, want %q", got, want)
	}
	if _, err := devLogFilePath(" ", "statusboard", now); err == nil {
		t.Fatal("expected blank log dir to fail")
	}
	if got := sanitizeLogFileStem(" / "); got != "statusboard" {
		t.Fatalf("sanitizeLogFileStem() = %q, want statusboard", got)
	}
}

// TestConfigMappings verifies config values map onto runtime types.
func TestConfigMappings(t *testing.T) {
	columns := toViewColumns([]config.ColumnConfig{
		{Name: " Name ", DisplayName: "Topic", DataType: "SingleLine.Text"},
		{Name: "StatusCode", DisplayName: "Status Reason", DataType: "Status"},
	})
	if len(columns) != 2 || columns[0].Name != "name" || columns[1].Name != "statuscode" || columns[1].Order != 1 {
		t.Fatalf("unexpected view columns %#v", columns)
	}

	keys := toTUIKeyConfig(config.Default("/tmp/statusboard.db").Keys)
	if keys.Grab != "space" || keys.Drop != "enter" || keys.CopyID != "y" {
		t.Fatalf("unexpected key config %#v", keys)
	}
	if got := firstNonEmpty(" ", "", " a "); got != "a" {
		t.Fatalf("firstNonEmpty() = %q, want a", got)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies console muting.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/statusboard.db").Logging

	logger, err := newRuntimeLogger(&console, "statusboard", false, cfg, t.TempDir(), func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")

	out := console.String()
	if !strings.Contains(out, "before") {
		t.Fatalf("expected console log to include 'before', got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include 'after', got %q", out)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}
}
