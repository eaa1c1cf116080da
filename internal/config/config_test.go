package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"GIT_CASEFILE_CONFIG_HOME", "XDG_CONFIG_HOME",
		"GIT_CASEFILE_GIT_PATH", "GIT_CASEFILE_DIFF_PATH",
		"GIT_CASEFILE_REMOTE", "GIT_CASEFILE_REF", "GIT_CASEFILE_TIMEOUT_SECONDS",
	} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}

func TestDir_Default(t *testing.T) {
	clearConfigEnv(t)

	dir := Dir()
	if dir == "" {
		t.Fatal("Dir() returned empty string")
	}
	if runtime.GOOS != "windows" && filepath.Base(dir) != "git-casefile" {
		t.Errorf("Dir() = %q, want path ending in %q", dir, "git-casefile")
	}
}

func TestDir_ExplicitOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GIT_CASEFILE_CONFIG_HOME", "/custom/path")

	if got := Dir(); got != "/custom/path" {
		t.Errorf("Dir() = %q, want %q", got, "/custom/path")
	}
}

func TestDir_XDGOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	want := filepath.Join("/xdg/config", "git-casefile")
	if got := Dir(); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.GitPath != "git" {
		t.Errorf("GitPath = %q, want %q", d.GitPath, "git")
	}
	if d.Ref != SharedCasefilesRef {
		t.Errorf("Ref = %q, want %q", d.Ref, SharedCasefilesRef)
	}
	if d.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", d.Timeout)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, o Options)
	}{
		{
			name: "git path override",
			env:  map[string]string{"GIT_CASEFILE_GIT_PATH": "/usr/local/bin/git"},
			check: func(t *testing.T, o Options) {
				if o.GitPath != "/usr/local/bin/git" {
					t.Errorf("GitPath = %q, want override", o.GitPath)
				}
			},
		},
		{
			name: "remote override",
			env:  map[string]string{"GIT_CASEFILE_REMOTE": "upstream"},
			check: func(t *testing.T, o Options) {
				if o.Remote != "upstream" {
					t.Errorf("Remote = %q, want %q", o.Remote, "upstream")
				}
			},
		},
		{
			name: "timeout override",
			env:  map[string]string{"GIT_CASEFILE_TIMEOUT_SECONDS": "45"},
			check: func(t *testing.T, o Options) {
				if o.Timeout != 45*time.Second {
					t.Errorf("Timeout = %v, want 45s", o.Timeout)
				}
			},
		},
		{
			name: "non-numeric timeout is ignored",
			env:  map[string]string{"GIT_CASEFILE_TIMEOUT_SECONDS": "not-a-number"},
			check: func(t *testing.T, o Options) {
				if o.Timeout != 30*time.Second {
					t.Errorf("Timeout = %v, want default 30s", o.Timeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := Defaults()
			applyEnv(&opts)
			tt.check(t, opts)
		})
	}
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := "git_path: /opt/git\nremote: fork\ntimeout_seconds: 60\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := Defaults()
	applyFile(&opts, path)

	if opts.GitPath != "/opt/git" {
		t.Errorf("GitPath = %q, want %q", opts.GitPath, "/opt/git")
	}
	if opts.Remote != "fork" {
		t.Errorf("Remote = %q, want %q", opts.Remote, "fork")
	}
	if opts.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", opts.Timeout)
	}
}

func TestApplyFile_MissingFileIsIgnored(t *testing.T) {
	opts := Defaults()
	applyFile(&opts, "/nonexistent/config.yml")

	if opts != Defaults() {
		t.Errorf("applyFile mutated opts for a missing file: %+v", opts)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	t.Setenv("GIT_CASEFILE_CONFIG_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("remote: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GIT_CASEFILE_REMOTE", "from-env")

	opts := Load()
	if opts.Remote != "from-env" {
		t.Errorf("Remote = %q, want %q (env should win over file)", opts.Remote, "from-env")
	}
}

func TestLoadEnvFiles_SetsUnsetVars(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	content := "TEST_ENVFILE_A=hello\nTEST_ENVFILE_B=world\n"
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_ENVFILE_A", "")
	t.Setenv("TEST_ENVFILE_B", "")
	_ = os.Unsetenv("TEST_ENVFILE_A")
	_ = os.Unsetenv("TEST_ENVFILE_B")
	t.Setenv("GIT_CASEFILE_CONFIG_HOME", t.TempDir())

	LoadEnvFiles()

	if got := os.Getenv("TEST_ENVFILE_A"); got != "hello" {
		t.Errorf("TEST_ENVFILE_A = %q, want %q", got, "hello")
	}
	if got := os.Getenv("TEST_ENVFILE_B"); got != "world" {
		t.Errorf("TEST_ENVFILE_B = %q, want %q", got, "world")
	}
}

func TestLoadEnvFiles_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TEST_ENVFILE_C=from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_ENVFILE_C", "from_env")
	t.Setenv("GIT_CASEFILE_CONFIG_HOME", t.TempDir())

	LoadEnvFiles()

	if got := os.Getenv("TEST_ENVFILE_C"); got != "from_env" {
		t.Errorf("TEST_ENVFILE_C = %q, want %q (env should take precedence)", got, "from_env")
	}
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line    string
		wantKey string
		wantVal string
		wantOK  bool
	}{
		{"KEY=value", "KEY", "value", true},
		{`KEY="quoted value"`, "KEY", "quoted value", true},
		{"KEY='single quoted'", "KEY", "single quoted", true},
		{"export KEY=value", "KEY", "value", true},
		{"  KEY = value  ", "KEY", "value", true},
		{"no-equals-sign", "", "", false},
		{"=no-key", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, val, ok := parseEnvLine(tt.line)
			if ok != tt.wantOK || key != tt.wantKey || val != tt.wantVal {
				t.Errorf("parseEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.line, key, val, ok, tt.wantKey, tt.wantVal, tt.wantOK)
			}
		})
	}
}

// chdir changes to dir and returns a function that restores the previous
// working directory.
func chdir(t *testing.T, dir string) func() {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	return func() { _ = os.Chdir(orig) }
}
