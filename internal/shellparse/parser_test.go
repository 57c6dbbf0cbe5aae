package shellparse

import (
	"strings"
	"testing"
)

func TestParse_AliasesAndExports(t *testing.T) {
	input := `# my zshrc
alias ll='ls -la'
export EDITOR=vim
alias gs='git status'
# alias commented='not real'
export PATH="$HOME/bin:$PATH"
`

	p := NewParser(nil)
	result, err := p.Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(result.Aliases))
	}
	if result.Aliases[0].Name != "ll" {
		t.Errorf("first alias name = %q, want ll", result.Aliases[0].Name)
	}
	if result.Aliases[0].RawLine != `alias ll='ls -la'` {
		t.Errorf("first alias raw line = %q", result.Aliases[0].RawLine)
	}

	if len(result.Exports) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(result.Exports))
	}
	if result.Exports[0].Name != "EDITOR" {
		t.Errorf("first export name = %q, want EDITOR", result.Exports[0].Name)
	}
	if result.Exports[1].Name != "PATH" {
		t.Errorf("second export name = %q, want PATH", result.Exports[1].Name)
	}
}

func TestParse_DuplicateLinesDeduplicated(t *testing.T) {
	input := `alias ll='ls -la'
export EDITOR=vim
alias ll='ls -la'
export EDITOR=vim
`

	result, err := NewParser(nil).Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Aliases) != 1 {
		t.Errorf("expected 1 alias after dedupe, got %d", len(result.Aliases))
	}
	if len(result.Exports) != 1 {
		t.Errorf("expected 1 export after dedupe, got %d", len(result.Exports))
	}
}

func TestParse_FirstDefinitionWinsByName(t *testing.T) {
	// Redefinitions with different bodies keep only the first; emitting both
	// would let the later one win once zsh sources the file.
	input := `alias ll='ls -la'
export EDITOR=vim
alias ll='ls -l'
export EDITOR=nano
`

	result, err := NewParser(nil).Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Aliases) != 1 {
		t.Fatalf("expected 1 alias after name dedupe, got %d: %+v", len(result.Aliases), result.Aliases)
	}
	if result.Aliases[0].RawLine != `alias ll='ls -la'` {
		t.Errorf("kept alias = %q, want the first definition", result.Aliases[0].RawLine)
	}

	if len(result.Exports) != 1 {
		t.Fatalf("expected 1 export after name dedupe, got %d: %+v", len(result.Exports), result.Exports)
	}
	if result.Exports[0].RawLine != "export EDITOR=vim" {
		t.Errorf("kept export = %q, want the first definition", result.Exports[0].RawLine)
	}
}

func TestParse_Functions(t *testing.T) {
	t.Run("multi-line body", func(t *testing.T) {
		input := `greet() {
  echo "hello $1"
}
`
		result, err := NewParser(nil).Parse(input)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Functions) != 1 {
			t.Fatalf("expected 1 function, got %d", len(result.Functions))
		}
		fn := result.Functions[0]
		if fn.Name != "greet" {
			t.Errorf("name = %q, want greet", fn.Name)
		}
		if fn.StartLine != 1 || fn.EndLine != 3 {
			t.Errorf("lines = %d..%d, want 1..3", fn.StartLine, fn.EndLine)
		}
		if !strings.Contains(fn.Body, `echo "hello $1"`) {
			t.Errorf("body missing echo line: %q", fn.Body)
		}
	})

	t.Run("keyword style", func(t *testing.T) {
		input := "function deploy() {\n  ship_it\n}\n"
		result, err := NewParser(nil).Parse(input)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Functions) != 1 || result.Functions[0].Name != "deploy" {
			t.Fatalf("expected function deploy, got %+v", result.Functions)
		}
	})

	t.Run("single line", func(t *testing.T) {
		input := "mkcd() { mkdir -p \"$1\" && cd \"$1\"; }\n"
		result, err := NewParser(nil).Parse(input)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Functions) != 1 {
			t.Fatalf("expected 1 function, got %d", len(result.Functions))
		}
		fn := result.Functions[0]
		if fn.StartLine != fn.EndLine {
			t.Errorf("single-line function spans %d..%d", fn.StartLine, fn.EndLine)
		}
	})

	t.Run("nested braces stay in one entry", func(t *testing.T) {
		input := `foo() {
  if true; then
    { echo hi; }
  fi
}
bar() {
  echo bar
}
`
		result, err := NewParser(nil).Parse(input)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Functions) != 2 {
			t.Fatalf("expected 2 functions, got %d", len(result.Functions))
		}
		if result.Functions[0].Name != "foo" {
			t.Errorf("first function = %q, want foo", result.Functions[0].Name)
		}
		if !strings.Contains(result.Functions[0].Body, "{ echo hi; }") {
			t.Errorf("nested block lost from body: %q", result.Functions[0].Body)
		}
		if result.Functions[0].EndLine != 5 {
			t.Errorf("foo end line = %d, want 5", result.Functions[0].EndLine)
		}
	})

	t.Run("first definition wins on name conflict", func(t *testing.T) {
		input := `dup() {
  echo first
}
dup() {
  echo second
}
`
		result, err := NewParser(nil).Parse(input)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(result.Functions) != 1 {
			t.Fatalf("expected 1 function, got %d", len(result.Functions))
		}
		if !strings.Contains(result.Functions[0].Body, "first") {
			t.Errorf("kept body should be the first definition: %q", result.Functions[0].Body)
		}
	})
}

func TestParse_ReservedNamesDropped(t *testing.T) {
	// Scenario: deploy is supplied by the base template, so the user's
	// version is excluded entirely.
	input := `alias ll='ls -la'
export EDITOR=vim
deploy() { echo hi }
`
	reserved := NewReservedNameSet("deploy")
	result, err := NewParser(reserved).Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Aliases) != 1 || result.Aliases[0].RawLine != `alias ll='ls -la'` {
		t.Errorf("aliases = %+v", result.Aliases)
	}
	if len(result.Exports) != 1 || result.Exports[0].RawLine != "export EDITOR=vim" {
		t.Errorf("exports = %+v", result.Exports)
	}
	if len(result.Functions) != 0 {
		t.Errorf("reserved function should be dropped, got %+v", result.Functions)
	}
}

func TestParse_UnterminatedFunction(t *testing.T) {
	input := `broken() {
  echo "never closed"
`
	result, err := NewParser(nil).Parse(input)
	if err != nil {
		t.Fatalf("Parse() must not fail hard on malformed input, got %v", err)
	}

	if len(result.Functions) != 1 {
		t.Fatalf("expected buffered function to be emitted, got %d", len(result.Functions))
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	if !strings.Contains(result.Warnings[0].Message, "broken") {
		t.Errorf("warning should name the function: %v", result.Warnings[0])
	}
}

// TestParse_RejoinProperty checks that re-joining extracted alias/export lines
// reproduces exactly the set of non-duplicate, non-comment alias/export lines
// in the input.
func TestParse_RejoinProperty(t *testing.T) {
	input := `# header
alias a='1'
export B=2
some_other_line
alias c='3'
alias a='1'
# alias hidden='x'
export D=4
`
	result, err := NewParser(nil).Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var got []string
	for _, a := range result.Aliases {
		got = append(got, a.RawLine)
	}
	for _, e := range result.Exports {
		got = append(got, e.RawLine)
	}

	want := []string{"alias a='1'", "alias c='3'", "export B=2", "export D=4"}
	if len(got) != len(want) {
		t.Fatalf("rejoined lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParse_NonDefinitionLinesIgnored(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"command substitution", `result=$(date)` + "\n"},
		{"call with parens in string", `echo "use foo() here"` + "\n"},
		{"plain command", "ls -la\n"},
		{"if block without function", "if true; then\n  echo hi\nfi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewParser(nil).Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(result.Functions) != 0 {
				t.Errorf("unexpected functions: %+v", result.Functions)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	result, err := NewParser(nil).Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(result.Aliases)+len(result.Exports)+len(result.Functions) != 0 {
		t.Errorf("empty input produced entries: %+v", result)
	}
}
