package editorlog

import (
	"os"
	"path/filepath"
)

// ResolveLogPath returns the Editor.log location for the current
// environment. LOCALAPPDATA points at the log directory on Windows;
// when it is unset the path falls back to the WSL view of the Windows
// user profile.
func ResolveLogPath() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		user := os.Getenv("USER")
		if user == "" {
			user = "Unknown"
		}
		base = filepath.Join("/mnt/c/Users", user, "AppData", "Local")
	}
	return filepath.Join(base, "Unity", "Editor", "Editor.log")
}
