package runner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// findGoBinary locates the Go executable, checking PATH first and then
// common install locations.
func findGoBinary() string {
	if path, err := exec.LookPath("go"); err == nil {
		return path
	}

	commonPaths := []string{
		"/usr/local/go/bin/go",
		"/opt/homebrew/bin/go",
		"/usr/bin/go",
		"/usr/local/bin/go",
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Fall back to "go" and let exec fail with a clearer message
	return "go"
}

// goModInfo contains parsed go.mod information.
type goModInfo struct {
	ModulePath string
	GoModDir   string
	Replaces   []string // replace directive lines
}

// findGoModInfo walks up from dir to find go.mod and parses the module
// path and any replace directives.
func findGoModInfo(dir string) (*goModInfo, error) {
	for {
		goModPath := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(goModPath)
		if err == nil {
			return parseGoMod(string(data), dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no go.mod found")
		}
		dir = parent
	}
}

func parseGoMod(content, dir string) (*goModInfo, error) {
	info := &goModInfo{GoModDir: dir}

	inReplaceBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "module ") {
			info.ModulePath = strings.TrimSpace(strings.TrimPrefix(trimmed, "module "))
		}

		if trimmed == "replace (" {
			inReplaceBlock = true
			continue
		}
		if inReplaceBlock {
			if trimmed == ")" {
				inReplaceBlock = false
				continue
			}
			if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
				info.Replaces = append(info.Replaces, "replace "+trimmed)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "replace ") && !strings.HasPrefix(trimmed, "replace (") {
			info.Replaces = append(info.Replaces, trimmed)
		}
	}

	if info.ModulePath == "" {
		return nil, fmt.Errorf("no module directive in go.mod")
	}
	return info, nil
}

// resolveReplacePath converts a relative replace target to an absolute path.
func resolveReplacePath(replaceLine, goModDir string) string {
	parts := strings.Split(replaceLine, " => ")
	if len(parts) != 2 {
		return replaceLine
	}

	oldPart := parts[0]
	newPart := strings.TrimSpace(parts[1])

	if strings.HasPrefix(newPart, ".") && !filepath.IsAbs(newPart) {
		return oldPart + " => " + filepath.Join(goModDir, newPart)
	}
	return replaceLine
}
