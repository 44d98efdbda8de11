package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appDirName       = "lawchat"
	databaseFileName = "lawchat.db"
	filesDirName     = "sessions"
	backupDirName    = "backups"
	configFileName   = "config.yaml"
)

// StoragePaths holds the resolved locations of lawchat's local data
type StoragePaths struct {
	DataDir      string // base directory
	DatabasePath string // sqlite medium
	FilesDir     string // file medium
	BackupDir    string // default backup target
	ConfigPath   string // default config file
}

// DetectDataDir returns the per-user data directory for the operating system
func DetectDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library/Application Support", appDirName), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		return filepath.Join(home, ".config", appDirName), nil
	case "windows":
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, appDirName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appDirName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// PathsForDir lays out the storage paths under dataDir
func PathsForDir(dataDir string) StoragePaths {
	return StoragePaths{
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, databaseFileName),
		FilesDir:     filepath.Join(dataDir, filesDirName),
		BackupDir:    filepath.Join(dataDir, backupDirName),
		ConfigPath:   filepath.Join(dataDir, configFileName),
	}
}

// GetStoragePaths resolves storage paths from a custom location, or detects them when
// custom is empty. A custom path ending in ".db" names the sqlite database directly.
func GetStoragePaths(custom string) (StoragePaths, error) {
	if custom == "" {
		dataDir, err := DetectDataDir()
		if err != nil {
			return StoragePaths{}, err
		}
		return PathsForDir(dataDir), nil
	}

	custom = expandHome(custom)
	absPath, err := filepath.Abs(custom)
	if err != nil {
		return StoragePaths{}, fmt.Errorf("invalid storage path %q: %w", custom, err)
	}

	if strings.HasSuffix(absPath, ".db") {
		paths := PathsForDir(filepath.Dir(absPath))
		paths.DatabasePath = absPath
		return paths, nil
	}
	return PathsForDir(absPath), nil
}

// EnsureDataDir creates the data directory
func (sp StoragePaths) EnsureDataDir() error {
	return os.MkdirAll(sp.DataDir, 0755)
}

// DatabaseExists checks if the sqlite database file exists
func (sp StoragePaths) DatabaseExists() bool {
	_, err := os.Stat(sp.DatabasePath)
	return err == nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
