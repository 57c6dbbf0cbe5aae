package shell

import "os/exec"

// ToolChecker answers whether a tool binary is available. The generator uses
// it to decide which tool-specific aliases to render.
type ToolChecker interface {
	Present(name string) bool
}

// PathToolChecker checks tool presence by looking the binary up on PATH.
type PathToolChecker struct{}

// Present reports whether name resolves to an executable on PATH.
func (PathToolChecker) Present(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// StaticToolChecker is a fixed-answer checker for tests and dry runs.
type StaticToolChecker map[string]bool

// Present reports the configured answer, false for unknown tools.
func (c StaticToolChecker) Present(name string) bool {
	return c[name]
}
