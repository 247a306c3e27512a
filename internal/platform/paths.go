package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultAppName names the config and data directories when no override is given.
const DefaultAppName = "kanboard"

// workspaceLogDir is the dev log directory used inside a workspace checkout.
var workspaceLogDir = filepath.Join(".kanboard", "log")

// workspaceMarkers identify a workspace root when walking up from the working dir.
var workspaceMarkers = []string{"go.mod", ".git", ".kanboard"}

// rootOverrides lists the variables that relocate the config and data roots.
var rootOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// Paths locates everything kanboard keeps on disk for one app name.
type Paths struct {
	// AppName is the resolved directory name, including any -dev suffix.
	AppName    string
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
	// SnapshotDir receives saved exports and is searched by import for bare names.
	SnapshotDir string
}

// Options selects the app name and dev-mode isolation.
type Options struct {
	AppName string
	DevMode bool
}

// Name returns the directory name for o. Dev mode keeps its own config and data.
func (o Options) Name() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// System is the host state paths are derived from.
type System struct {
	GOOS      string
	ConfigDir string
	HomeDir   string
	Getenv    func(string) string
}

// CurrentSystem reads the running host.
func CurrentSystem() (System, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return System{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return System{}, fmt.Errorf("user home dir: %w", err)
	}
	return System{GOOS: runtime.GOOS, ConfigDir: configDir, HomeDir: home, Getenv: os.Getenv}, nil
}

// DefaultPathsWithOptions resolves paths for opts on the running host.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	sys, err := CurrentSystem()
	if err != nil {
		return Paths{}, err
	}
	return sys.Paths(opts.Name())
}

// Paths resolves the locations for appName on s.
func (s System) Paths(appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	configRoot, dataRoot, err := s.roots()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(dataRoot, appName)
	return Paths{
		AppName:     appName,
		ConfigPath:  filepath.Join(configRoot, appName, "config.toml"),
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, appName+".db"),
		LogDir:      filepath.Join(dataDir, "log"),
		SnapshotDir: filepath.Join(dataDir, "boards"),
	}, nil
}

// roots returns the config and data base directories. Linux keeps data under
// ~/.local/share; elsewhere data sits next to config unless overridden.
func (s System) roots() (string, string, error) {
	configRoot := strings.TrimSpace(s.ConfigDir)
	if configRoot == "" {
		return "", "", errors.New("empty config dir")
	}
	dataRoot := configRoot
	if s.GOOS == "linux" && strings.TrimSpace(s.HomeDir) != "" {
		dataRoot = filepath.Join(s.HomeDir, ".local", "share")
	}
	if vars, ok := rootOverrides[s.GOOS]; ok && s.Getenv != nil {
		if v := strings.TrimSpace(s.Getenv(vars.config)); v != "" {
			configRoot = v
		}
		if v := strings.TrimSpace(s.Getenv(vars.data)); v != "" {
			dataRoot = v
		}
	}
	return configRoot, dataRoot, nil
}

// DevLogPath picks the dev log file for day. An absolute dir is used as is and a
// relative one is anchored at the workspace root above cwd. With no dir the log
// goes to .kanboard/log inside a workspace and to LogDir outside one.
func (p Paths) DevLogPath(dir, cwd string, day time.Time) string {
	name := LogFileName(p.AppName, day)
	dir = strings.TrimSpace(dir)
	if dir != "" && filepath.IsAbs(dir) {
		return filepath.Join(filepath.Clean(dir), name)
	}
	root, found := WorkspaceRoot(cwd)
	if dir == "" {
		if !found && p.LogDir != "" {
			return filepath.Join(p.LogDir, name)
		}
		dir = workspaceLogDir
	}
	return filepath.Join(root, filepath.Clean(dir), name)
}

// LogFileName returns the per-day log file name for appName.
func LogFileName(appName string, day time.Time) string {
	return fmt.Sprintf("%s-%s.log", fileStem(appName), day.Format("20060102"))
}

// SnapshotPath returns where a saved export of boardID lives. ext defaults to .json.
func (p Paths) SnapshotPath(boardID, ext string) string {
	if ext == "" {
		ext = ".json"
	}
	return filepath.Join(p.SnapshotDir, fileStem(boardID)+ext)
}

// FindSnapshot resolves an import argument. Existing paths win; otherwise a bare
// file name is looked up in SnapshotDir. Unresolved names are returned unchanged.
func (p Paths) FindSnapshot(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) || exists(name) || p.SnapshotDir == "" {
		return name
	}
	if filepath.Base(name) != name {
		return name
	}
	if candidate := filepath.Join(p.SnapshotDir, name); exists(candidate) {
		return candidate
	}
	return name
}

// WorkspaceRoot returns the nearest ancestor of start holding a workspace marker,
// or start with found=false when there is none.
func WorkspaceRoot(start string) (string, bool) {
	start = strings.TrimSpace(start)
	if start == "" {
		return ".", false
	}
	start = filepath.Clean(start)
	for dir := start; ; {
		for _, marker := range workspaceMarkers {
			if exists(filepath.Join(dir, marker)) {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, false
		}
		dir = parent
	}
}

// fileStem turns a name into a single safe file-name segment.
func fileStem(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(name)), "-")
	if stem == "" {
		return DefaultAppName
	}
	return stem
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
