package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// ~username is not supported.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Expand replaces ${USER} and ${HOME} in s.
func Expand(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "${USER}") {
		s = strings.ReplaceAll(s, "${USER}", getUser())
	}
	if strings.Contains(s, "${HOME}") {
		s = strings.ReplaceAll(s, "${HOME}", getHome())
	}
	return s
}

// ExpandPath expands variables and the tilde, then resolves a relative
// result against base.
func ExpandPath(path, base string) string {
	if path == "" {
		return path
	}
	path = ExpandTilde(Expand(path))
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func getUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func getHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "~"
	}
	return home
}
