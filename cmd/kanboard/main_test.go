package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/platform"
	"github.com/evanschultz/kanboard/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("KANBOARD_DEV_MODE", "false")
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram drives the model handed to programFactory inside run().
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

// applyModelCmd executes one command chain to completion (bounded for safety).
func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	out := model
	currentCmd := cmd
	for i := 0; i < 8 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		out = updated
		currentCmd = nextCmd
	}
	return out
}

func stubProgram(t *testing.T) {
	t.Helper()
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }
}

// captureOpenedBoard replaces the program with one that loads the board and records it.
func captureOpenedBoard(t *testing.T) *tui.Model {
	t.Helper()
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	var opened tui.Model
	programFactory = func(m tea.Model) program {
		return scriptedProgram{model: m, runFn: func(model tea.Model) (tea.Model, error) {
			model = applyModelMsg(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
			model = applyModelCmd(t, model, model.Init())
			casted, ok := model.(tui.Model)
			if !ok {
				t.Fatalf("expected tui.Model, got %T", model)
			}
			opened = casted
			return model, nil
		}}
	}
	return &opened
}

func writeDemoSnapshot(t *testing.T, path string) {
	t.Helper()
	encoded, err := app.EncodeBoardSnapshot(path, app.DemoSnapshot())
	if err != nil {
		t.Fatalf("EncodeBoardSnapshot() error = %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "kanboard dev") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRunStartsProgram(t *testing.T) {
	stubProgram(t)

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml")}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunTUIOpensDemoBoardWhenStoreIsEmpty(t *testing.T) {
	opened := captureOpenedBoard(t)

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "tui"}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := opened.Board().ID; got != "board-id-01" {
		t.Fatalf("expected demo board, got %q", got)
	}
	if got := opened.Board().ColumnOrderIDs; len(got) != 4 {
		t.Fatalf("expected four demo columns, got %#v", got)
	}
}

func TestRunTUIOpensBoardFile(t *testing.T) {
	opened := captureOpenedBoard(t)

	tmp := t.TempDir()
	boardPath := filepath.Join(tmp, "sprint.yaml")
	content := "_id: sprint\ntitle: Sprint\ncolumns:\n  - _id: todo\n    title: Todo\n    cards:\n      - title: Write tests\n"
	if err := os.WriteFile(boardPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "--file", boardPath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	board := opened.Board()
	if board.ID != "sprint" || len(board.Columns) != 1 {
		t.Fatalf("unexpected board %#v", board)
	}
	cards := board.Columns[0].RealCards()
	if len(cards) != 1 || cards[0].ID == "" {
		t.Fatalf("expected generated card id, got %#v", cards)
	}
}

func TestRunTUIOpensStoredBoardByID(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanboard.db")
	cfgPath := filepath.Join(tmp, "config.toml")
	inPath := filepath.Join(tmp, "demo.json")
	writeDemoSnapshot(t, inPath)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	opened := captureOpenedBoard(t)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "--board", "board-id-01"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	column, ok := opened.Board().Column("column-id-02")
	if !ok {
		t.Fatal("expected stored column")
	}
	if got := column.CardIDs(); len(got) != 2 || got[0] != "card-id-05" {
		t.Fatalf("expected stored card order, got %#v", got)
	}
}

func TestRunInvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunRejectsUnsupportedBoardFile(t *testing.T) {
	stubProgram(t)
	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "--file", "board.txt"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid board.file") {
		t.Fatalf("expected board file validation error, got %v", err)
	}
}

func TestRunImportExportRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanboard.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	inPath := filepath.Join(tmp, "demo.yaml")
	writeDemoSnapshot(t, inPath)

	var importOut strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, &importOut, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}
	if !strings.Contains(importOut.String(), "imported board board-id-01") {
		t.Fatalf("unexpected import output %q", importOut.String())
	}

	outPath := filepath.Join(tmp, "out", "snapshot.json")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--board", "board-id-01", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.BoardSnapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion || snap.ID != "board-id-01" {
		t.Fatalf("unexpected snapshot header %q %q", snap.Version, snap.ID)
	}
	if len(snap.Columns) != 4 {
		t.Fatalf("expected four columns, got %d", len(snap.Columns))
	}
	if got := snap.Columns[1].CardOrderIDs; len(got) != 2 || got[0] != "card-id-05" {
		t.Fatalf("expected stored card order, got %#v", got)
	}
	if got := snap.Columns[3].CardOrderIDs; len(got) != 0 {
		t.Fatalf("expected empty done column without placeholder, got %#v", got)
	}
}

func TestRunExportErrors(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanboard.db")
	cfgPath := filepath.Join(tmp, "config.toml")

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found export error on empty store, got %v", err)
	}

	inPath := filepath.Join(tmp, "demo.json")
	writeDemoSnapshot(t, inPath)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--out", "-"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export stdout) error = %v", err)
	}
	if !strings.Contains(out.String(), "\"columnOrderIds\"") {
		t.Fatalf("expected snapshot json on stdout, got %q", out.String())
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--out", filepath.Join(tmp, "out.csv")}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unsupported export format error")
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "extra"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unexpected argument error")
	}
}

func TestRunImportErrors(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanboard.db")
	cfgPath := filepath.Join(tmp, "config.toml")

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import error for missing --in")
	}

	badIn := filepath.Join(tmp, "bad.json")
	if err := os.WriteFile(badIn, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", badIn}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import decode error")
	}

	mismatched := filepath.Join(tmp, "mismatched.json")
	content := `{"_id":"b1","title":"Bad","columnOrderIds":["c1","ghost"],"columns":[{"_id":"c1","title":"Todo","cards":[]}]}`
	if err := os.WriteFile(mismatched, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", mismatched}, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "invalid snapshot") {
		t.Fatalf("expected invalid snapshot error, got %v", err)
	}
}

func TestRunBoardsCommand(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanboard.db")
	cfgPath := filepath.Join(tmp, "config.toml")

	var empty strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "boards"}, &empty, io.Discard); err != nil {
		t.Fatalf("run(boards) error = %v", err)
	}
	if !strings.Contains(empty.String(), "no boards stored") {
		t.Fatalf("unexpected empty boards output %q", empty.String())
	}

	inPath := filepath.Join(tmp, "demo.json")
	writeDemoSnapshot(t, inPath)
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "boards"}, &out, io.Discard); err != nil {
		t.Fatalf("run(boards) error = %v", err)
	}
	for _, want := range []string{"ID", "Title", "board-id-01", "Demo board", "6"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in boards table:\n%s", want, out.String())
		}
	}
}

func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	cfgContent := "[database]\npath = \"/tmp/ignore-me.db\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("KANBOARD_CONFIG", cfgPath)
	t.Setenv("KANBOARD_DB_PATH", dbPath)

	err := run(context.Background(), []string{"boards"}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run(boards with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
}

func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--app", "kanboardx", "--dev", "paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: kanboardx", "dev_mode: true", "kanboardx-dev", "log_dir: ", "snapshot_dir: "} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("KANBOARD_BOOL_TEST", "true")
	got, ok := parseBoolEnv("KANBOARD_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("KANBOARD_BOOL_TEST", "not-bool")
	_, ok = parseBoolEnv("KANBOARD_BOOL_TEST")
	if ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	stubProgram(t)

	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Chdir(workspace)

	var stderr bytes.Buffer
	err := run(context.Background(), []string{"--dev", "--db", filepath.Join(workspace, "kanboard.db"), "--config", filepath.Join(workspace, "config.toml")}, io.Discard, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".kanboard", "log")
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
		t.Fatalf("expected TUI lifecycle entries in log file, got %q", string(content))
	}
}

func TestRunCommandLogsToConsole(t *testing.T) {
	tmp := t.TempDir()
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "boards"}, io.Discard, &stderr)
	if err != nil {
		t.Fatalf("run(boards) error = %v", err)
	}
	if !strings.Contains(stderr.String(), "command flow complete") {
		t.Fatalf("expected console runtime logs, got %q", stderr.String())
	}
}

// useDataHome points the XDG roots at temp dirs and returns the data root.
func useDataHome(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("XDG roots only apply on linux")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", dataHome)
	return dataHome
}

func TestRunExportSaveThenImportByName(t *testing.T) {
	dataHome := useDataHome(t)
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	inPath := filepath.Join(tmp, "demo.json")
	writeDemoSnapshot(t, inPath)

	if err := run(context.Background(), []string{"--db", filepath.Join(tmp, "a.db"), "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}
	var saveOut strings.Builder
	if err := run(context.Background(), []string{"--db", filepath.Join(tmp, "a.db"), "--config", cfgPath, "export", "--save"}, &saveOut, io.Discard); err != nil {
		t.Fatalf("run(export --save) error = %v", err)
	}
	saved := filepath.Join(dataHome, "kanboard", "boards", "board-id-01.json")
	if !strings.Contains(saveOut.String(), "saved board board-id-01 to "+saved) {
		t.Fatalf("unexpected save output %q", saveOut.String())
	}
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected saved snapshot, stat error %v", err)
	}

	t.Chdir(t.TempDir())
	var importOut strings.Builder
	if err := run(context.Background(), []string{"--db", filepath.Join(tmp, "b.db"), "--config", cfgPath, "import", "--in", "board-id-01.json"}, &importOut, io.Discard); err != nil {
		t.Fatalf("run(import by name) error = %v", err)
	}
	if !strings.Contains(importOut.String(), "imported board board-id-01") {
		t.Fatalf("unexpected import output %q", importOut.String())
	}
}

func TestRunExportRejectsSaveWithOut(t *testing.T) {
	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "export", "--save", "--out", filepath.Join(tmp, "x.json")}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected flag conflict error, got %v", err)
	}
}

func TestRunDevLogOutsideWorkspaceUsesDataLogDir(t *testing.T) {
	dataHome := useDataHome(t)
	outside := t.TempDir()
	if _, found := platform.WorkspaceRoot(outside); found {
		t.Skip("temp dir is inside a workspace")
	}
	t.Chdir(outside)

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--dev", "--db", filepath.Join(tmp, "kanboard.db"), "--config", filepath.Join(tmp, "config.toml"), "boards"}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run(boards) error = %v", err)
	}
	logs, err := filepath.Glob(filepath.Join(dataHome, "kanboard-dev", "log", "kanboard-dev-*.log"))
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one dev log under the data dir, got %v (err %v)", logs, err)
	}
	if _, err := os.Stat(filepath.Join(outside, ".kanboard")); err == nil {
		t.Fatal("expected no .kanboard dir outside a workspace")
	}
}

func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "kanboard.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanboard.db"), "--config", cfgPath, "boards"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level error, got %v", err)
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/kanboard.db").Logging

	logger, err := newRuntimeLogger(&console, "kanboard", false, cfg, platform.Paths{}, func() time.Time {
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
