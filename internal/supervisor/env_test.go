package supervisor

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func makeFakeVenv(t *testing.T, venv string) string {
	t.Helper()
	binDir := filepath.Join(venv, "bin")
	python := "python"
	if runtime.GOOS == "windows" {
		binDir = filepath.Join(venv, "Scripts")
		python = "python.exe"
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, python), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return binDir
}

func pathOf(env []string) (string, bool) {
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			return e[5:], true
		}
	}
	return "", false
}

func TestDetectEnvironmentFindsVenv(t *testing.T) {
	tmp := t.TempDir()
	binDir := makeFakeVenv(t, filepath.Join(tmp, ".venv"))

	env := DetectEnvironment(tmp, "")

	if env.Dir != tmp {
		t.Errorf("Dir = %q, want %q", env.Dir, tmp)
	}
	if env.BinDir != binDir {
		t.Errorf("BinDir = %q, want %q", env.BinDir, binDir)
	}
	path, ok := pathOf(env.Env)
	if !ok {
		t.Fatal("PATH not found in Env")
	}
	if !strings.HasPrefix(path, binDir) {
		t.Errorf("PATH does not start with venv bin dir\nPATH=%s", path)
	}
}

func TestDetectEnvironmentOverrideTakesPrecedence(t *testing.T) {
	tmp := t.TempDir()
	makeFakeVenv(t, filepath.Join(tmp, ".venv"))
	override := filepath.Join(tmp, "custom-venv")
	overrideBin := makeFakeVenv(t, override)

	env := DetectEnvironment(tmp, override)

	if env.BinDir != overrideBin {
		t.Errorf("BinDir = %q, want %q", env.BinDir, overrideBin)
	}
	found := false
	for _, e := range env.Env {
		if e == "VIRTUAL_ENV="+override {
			found = true
		}
	}
	if !found {
		t.Error("VIRTUAL_ENV not set to the override venv")
	}
}

func TestDetectEnvironmentNoVenv(t *testing.T) {
	tmp := t.TempDir()

	env := DetectEnvironment(tmp, "")

	if env.Dir != tmp {
		t.Errorf("Dir = %q, want %q", env.Dir, tmp)
	}
	if env.Env != nil {
		t.Error("Env should be nil when no venv is found")
	}
	if env.BinDir != "" {
		t.Errorf("BinDir = %q, want empty", env.BinDir)
	}
}

func TestResolvePrefersBinDir(t *testing.T) {
	tmp := t.TempDir()
	binDir := makeFakeVenv(t, filepath.Join(tmp, ".venv"))
	env := DetectEnvironment(tmp, "")

	want := filepath.Join(binDir, exeName("python"))
	if got := env.resolve("python"); got != want {
		t.Errorf("resolve(python) = %q, want %q", got, want)
	}
	if got := env.resolve("arduino-cli"); got != "arduino-cli" {
		t.Errorf("resolve(arduino-cli) = %q, want unchanged", got)
	}
	if got := env.resolve("./python"); got != "./python" {
		t.Errorf("resolve(./python) = %q, want unchanged", got)
	}
}
