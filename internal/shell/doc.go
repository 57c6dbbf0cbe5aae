// Package shell provides the shell-facing surface of zshift.
//
// This package handles:
//   - Detecting the user's shell (zsh, bash, fish)
//   - Locating shell configuration files (rc files)
//   - Syntax-checking generated rc files via the target shell itself
//   - Answering whether a tool binary is present on PATH
//
// Syntax checking and tool presence are exposed as small interfaces so that
// the generator can be tested without a zsh binary installed.
package shell
