// Package config resolves git-casefile's settings: the git/diff binaries,
// the shared-casefiles ref, the referenced-commits ref prefix, the default
// remote, and the subprocess timeout. Precedence is flags (handled by the
// caller) > GIT_CASEFILE_* environment variables > an optional YAML file in
// Dir() > the Defaults below. It also loads .env-style files ahead of that
// resolution, so a repository can check in GIT_CASEFILE_* defaults without
// forcing every contributor to export them by hand.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SharedCasefilesRef is the ref that encodes all shared casefiles (§3).
const SharedCasefilesRef = "refs/collaboration/shared-casefiles"

// ReferencedCommitsRefPrefix anchors commits referenced from bookmark pegs.
const ReferencedCommitsRefPrefix = "refs/collaboration/referenced-commits/"

// EmptyTreeHash is the Git object hash of the canonical empty tree.
const EmptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Options holds the resolved settings for a GitDriver/DiffDriver pair.
type Options struct {
	GitPath    string
	DiffPath   string
	Remote     string
	Ref        string
	RefsPrefix string
	Timeout    time.Duration
}

// fileOptions mirrors Options for YAML decoding; zero fields are ignored.
type fileOptions struct {
	GitPath  string `yaml:"git_path"`
	DiffPath string `yaml:"diff_path"`
	Remote   string `yaml:"remote"`
	TimeoutS int    `yaml:"timeout_seconds"`
}

// Defaults returns the built-in defaults before env/file overrides.
func Defaults() Options {
	return Options{
		GitPath:    "git",
		DiffPath:   "diff",
		Remote:     "origin",
		Ref:        SharedCasefilesRef,
		RefsPrefix: ReferencedCommitsRefPrefix,
		Timeout:    30 * time.Second,
	}
}

// Load resolves Options from the config file (if present) and environment,
// layered on top of Defaults(). Environment variables take precedence over
// the file; flags (applied by the caller afterward) take precedence over
// both.
func Load() Options {
	opts := Defaults()
	applyFile(&opts, filepath.Join(Dir(), "config.yml"))
	applyEnv(&opts)
	return opts
}

func applyFile(opts *Options, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fo fileOptions
	if err := yaml.Unmarshal(data, &fo); err != nil {
		return
	}
	if fo.GitPath != "" {
		opts.GitPath = fo.GitPath
	}
	if fo.DiffPath != "" {
		opts.DiffPath = fo.DiffPath
	}
	if fo.Remote != "" {
		opts.Remote = fo.Remote
	}
	if fo.TimeoutS > 0 {
		opts.Timeout = time.Duration(fo.TimeoutS) * time.Second
	}
}

func applyEnv(opts *Options) {
	if v := os.Getenv("GIT_CASEFILE_GIT_PATH"); v != "" {
		opts.GitPath = v
	}
	if v := os.Getenv("GIT_CASEFILE_DIFF_PATH"); v != "" {
		opts.DiffPath = v
	}
	if v := os.Getenv("GIT_CASEFILE_REMOTE"); v != "" {
		opts.Remote = v
	}
	if v := os.Getenv("GIT_CASEFILE_REF"); v != "" {
		opts.Ref = v
	}
	if v := os.Getenv("GIT_CASEFILE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Timeout = time.Duration(n) * time.Second
		}
	}
}

// Dir returns the git-casefile configuration directory.
//
// Resolution:
//   - $GIT_CASEFILE_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/git-casefile if set (respects XDG on any platform)
//   - %AppData%/git-casefile on Windows
//   - ~/.config/git-casefile on macOS and Linux
func Dir() string {
	if dir := os.Getenv("GIT_CASEFILE_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git-casefile")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "git-casefile")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "git-casefile")
}

// LoadEnvFiles loads .env-style files in priority order. First match for
// each variable wins; environment variables already set always take
// precedence over any file.
//
// Resolution order:
//  1. $CWD/.env.local
//  2. $CWD/.env
//  3. Dir()/env
func LoadEnvFiles() {
	loadEnvFile(".env.local")
	loadEnvFile(".env")
	if dir := Dir(); dir != "" {
		loadEnvFile(filepath.Join(dir, "env"))
	}
}

// loadEnvFile reads one .env file and sets any variables not already in
// the environment. A missing file is not an error.
func loadEnvFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close() //nolint:errcheck // best-effort close on read-only file

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// parseEnvLine extracts KEY=VALUE from a line, stripping an optional
// "export " prefix and matching quotes around the value.
func parseEnvLine(line string) (key, value string, ok bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	key = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", false
	}

	key = strings.TrimPrefix(key, "export ")
	key = strings.TrimSpace(key)

	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}

	return key, value, true
}
