package config

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir is ~/.taskup, or ./.taskup when the home directory is unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

func defaultDBPath() string {
	return filepath.Join(HomeDir(), DefaultDBFileName)
}

func findUserConfigFile() string {
	return existingFile(filepath.Join(HomeDir(), DefaultFileName))
}

func findProjectConfigFile() string {
	for _, name := range []string{DefaultFileName, "." + DefaultFileName} {
		if p := existingFile(name); p != "" {
			return p
		}
	}
	return ""
}

func existingFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// expandPath expands a leading ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
