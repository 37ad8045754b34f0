package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Environment is applied to every child a runner starts.
type Environment struct {
	// Dir is the child's working directory. Empty means the parent's.
	Dir string
	// BinDir is searched before $PATH when resolving bare program names.
	BinDir string
	// Env replaces the child's environment. Nil means the parent's.
	Env []string
}

// DetectEnvironment looks for a Python virtual environment and, when one is
// found, prepends its bin/ directory to PATH for all children.
// Detection order: venvOverride → <dir>/.venv → <dir>/venv → none.
func DetectEnvironment(dir, venvOverride string) Environment {
	env := Environment{Dir: dir}

	var candidates []string
	if venvOverride != "" {
		candidates = append(candidates, venvOverride)
	}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".venv"), filepath.Join(dir, "venv"))
	}

	for _, venv := range candidates {
		binDir := venvBinDir(venv)
		if _, err := os.Stat(filepath.Join(binDir, exeName("python"))); err == nil {
			env.BinDir = binDir
			env.Env = append(buildEnvWithPath(binDir), "VIRTUAL_ENV="+venv)
			return env
		}
	}
	return env
}

// venvBinDir returns the bin (or Scripts on Windows) directory for a venv.
func venvBinDir(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvPath, "Scripts")
	}
	return filepath.Join(venvPath, "bin")
}

func exeName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		return name + ".exe"
	}
	return name
}

// buildEnvWithPath creates a copy of the current environment with binDir
// prepended to PATH.
func buildEnvWithPath(binDir string) []string {
	env := os.Environ()
	result := make([]string, 0, len(env)+1)
	pathSet := false

	for _, e := range env {
		switch {
		case strings.HasPrefix(e, "PATH="):
			result = append(result, "PATH="+binDir+string(os.PathListSeparator)+e[5:])
			pathSet = true
		case strings.HasPrefix(e, "VIRTUAL_ENV="):
			// replaced by the detected venv
		default:
			result = append(result, e)
		}
	}

	if !pathSet {
		result = append(result, "PATH="+binDir)
	}

	return result
}

// resolve maps a bare program name to BinDir when the program lives there.
// exec.Command searches the parent's PATH, not the child's, so the venv has
// to be consulted explicitly.
func (e Environment) resolve(program string) string {
	if e.BinDir == "" || strings.ContainsRune(program, filepath.Separator) || strings.Contains(program, "/") {
		return program
	}
	candidate := filepath.Join(e.BinDir, exeName(program))
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return program
}

// apply sets the environment and working directory on an exec.Cmd.
func (e Environment) apply(cmd *exec.Cmd) {
	if e.Env != nil {
		cmd.Env = e.Env
	}
	if e.Dir != "" {
		cmd.Dir = e.Dir
	}
}
