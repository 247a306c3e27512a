package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/kanboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/evanschultz/kanboard/internal/platform"
	"github.com/evanschultz/kanboard/internal/tui"
	"github.com/google/uuid"
)

var version = "dev"

// program is the part of tea.Program that run depends on.
type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses global flags, resolves config and storage, then dispatches the command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("kanboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		boardID    string
		boardFile  string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("KANBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANBOARD_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = platform.DefaultAppName
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.StringVar(&boardID, "board", "", "board id to open or export")
	fs.StringVar(&boardFile, "file", "", "open a JSON or YAML board snapshot instead of the database")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "kanboard %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
		_, _ = fmt.Fprintf(stdout, "snapshot_dir: %s\n", paths.SnapshotDir)
		return nil
	case "", "tui", "export", "import", "boards":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KANBOARD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KANBOARD_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	if id := strings.TrimSpace(boardID); id != "" {
		cfg.Board.DefaultID = id
	}
	if file := strings.TrimSpace(boardFile); file != "" {
		cfg.Board.File = file
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	tuiMode := command == "" || command == "tui"
	logger, err := newRuntimeLogger(stderr, appName, devMode, cfg.Logging, paths, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if tuiMode {
		// Runtime logs stay in the dev-file sink while the board owns the terminal.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	svc := app.NewService(repo, uuid.NewString)

	if !tuiMode {
		logger.Info("command flow start", "command", command)
		var cmdErr error
		switch command {
		case "export":
			cmdErr = runExport(ctx, svc, paths, cfg.Board.DefaultID, fs.Args()[1:], stdout)
		case "import":
			cmdErr = runImport(ctx, svc, paths, fs.Args()[1:], stdout)
		case "boards":
			cmdErr = runBoards(ctx, svc, fs.Args()[1:], stdout)
		}
		if cmdErr != nil {
			logger.Error("command flow failed", "command", command, "err", cmdErr)
			return fmt.Errorf("run %s command: %w", command, cmdErr)
		}
		logger.Info("command flow complete", "command", command)
		return nil
	}

	logger.Info("command flow start", "command", "tui", "board_id", cfg.Board.DefaultID, "board_file", cfg.Board.File)
	m := tui.NewModel(
		boardLoader(svc, cfg.Board, logger),
		tui.WithLogger(logger),
		tui.WithActivationDistance(cfg.Drag.ActivationDistance),
		tui.WithLayout(tui.LayoutConfig{
			ColumnWidth: cfg.Layout.ColumnWidth,
			CardHeight:  cfg.Layout.CardHeight,
			ColumnGap:   cfg.Layout.ColumnGap,
		}),
		tui.WithKeyConfig(tui.KeyConfig{
			Reload:     cfg.Keys.Reload,
			CancelDrag: cfg.Keys.CancelDrag,
		}),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// boardLoader resolves the board the TUI opens: a snapshot file, then the configured
// stored board, then the first stored board, then the demo board.
func boardLoader(svc *app.Service, cfg config.BoardConfig, logger *runtimeLogger) tui.LoadFunc {
	if file := strings.TrimSpace(cfg.File); file != "" {
		return func(context.Context) (domain.Board, error) {
			return loadBoardFile(file)
		}
	}
	boardID := strings.TrimSpace(cfg.DefaultID)
	return func(ctx context.Context) (domain.Board, error) {
		board, err := svc.LoadBoard(ctx, boardID)
		if err == nil {
			return board, nil
		}
		if boardID == "" && app.IsNotFound(err) {
			logger.Info("no stored boards, opening demo board")
			return app.DemoSnapshot().ToBoard(uuid.NewString)
		}
		return domain.Board{}, err
	}
}

// loadBoardFile decodes a board snapshot file. Missing ids are generated.
func loadBoardFile(path string) (domain.Board, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Board{}, fmt.Errorf("read board file: %w", err)
	}
	snap, err := app.DecodeBoardSnapshot(path, content)
	if err != nil {
		return domain.Board{}, fmt.Errorf("decode board file %q: %w", path, err)
	}
	return snap.ToBoard(uuid.NewString)
}

// runExport writes a board snapshot to stdout, to --out, or with --save to the
// snapshot dir as <board-id>.json.
func runExport(ctx context.Context, svc *app.Service, paths platform.Paths, defaultBoardID string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("kanboard export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		outPath string
		boardID string
		save    bool
	)
	fs.StringVar(&outPath, "out", "-", "output file path ('-' for stdout, .yaml/.yml for YAML)")
	fs.StringVar(&boardID, "board", defaultBoardID, "board id to export (default first board)")
	fs.BoolVar(&save, "save", false, "save into the snapshot dir as <board-id>.json")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected export arguments: %v", fs.Args())
	}
	if save && outPath != "-" {
		return errors.New("--save and --out are mutually exclusive")
	}

	snap, err := svc.ExportSnapshot(ctx, boardID)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	if save {
		outPath = paths.SnapshotPath(snap.ID, ".json")
	}
	encoded, err := app.EncodeBoardSnapshot(outPath, snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	if save {
		_, _ = fmt.Fprintf(stdout, "saved board %s to %s\n", snap.ID, outPath)
	}
	return nil
}

// runImport stores a snapshot file. Bare file names missing from the working dir
// are looked up in the snapshot dir.
func runImport(ctx context.Context, svc *app.Service, paths platform.Paths, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("kanboard import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input snapshot JSON or YAML file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse import flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected import arguments: %v", fs.Args())
	}
	if inPath == "" {
		return errors.New("--in is required")
	}

	inPath = paths.FindSnapshot(inPath)
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	snap, err := app.DecodeBoardSnapshot(inPath, content)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	board, err := svc.ImportSnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "imported board %s (%s)\n", board.ID, board.Title)
	return nil
}

// runBoards prints the stored boards as a table.
func runBoards(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected boards arguments: %v", args)
	}
	boards, err := svc.ListBoards(ctx)
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}
	if len(boards) == 0 {
		_, _ = fmt.Fprintln(stdout, "no boards stored; import one with: kanboard import --in <file>")
		return nil
	}
	_, _ = fmt.Fprintln(stdout, boardsTable(boards))
	return nil
}

func boardsTable(boards []domain.Board) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "Title", "Columns", "Cards").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, board := range boards {
		cards := 0
		for _, column := range board.Columns {
			cards += len(column.RealCards())
		}
		t.Row(board.ID, board.Title, strconv.Itoa(len(board.Columns)), strconv.Itoa(cards))
	}
	return t.String()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses a boolean environment variable. ok is false when unset or invalid.
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

// newRuntimeLogger configures runtime log sinks from CLI/config state. The dev log
// file location comes from paths.DevLogPath.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, paths platform.Paths, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
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
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working dir: %w", err)
	}
	devLogPath := paths.DevLogPath(cfg.DevFile.Dir, cwd, now().UTC())
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// File output stays unstyled logfmt.
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

func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

func (l *runtimeLogger) each(fn func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if l.shouldLogToSink(sink) {
			fn(sink)
		}
	}
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg any, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg any, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg any, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg any, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}
