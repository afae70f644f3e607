package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

const (
	defaultMaxCmdConstructorLines = 100
	maxRunFuncLines               = 120
)

// TestCommandFunctionsStaySmall keeps command wiring readable: constructors
// declare flags and delegate, run helpers stay a screen or two long.
func TestCommandFunctionsStaySmall(t *testing.T) {
	limits := []struct {
		kind  string
		match func(name string) bool
		max   int
	}{
		{"constructor", isCommandConstructor, maxCmdConstructorLines()},
		{"run helper", func(name string) bool { return strings.HasPrefix(name, "run") }, maxRunFuncLines},
	}

	fset := token.NewFileSet()
	for _, path := range commandSourceFiles(t) {
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Body == nil {
				continue
			}
			length := fset.Position(fn.Body.Rbrace).Line - fset.Position(fn.Body.Lbrace).Line + 1
			for _, limit := range limits {
				if limit.match(fn.Name.Name) && length > limit.max {
					t.Errorf("%s %s in %s is too large: %d lines (max %d)",
						limit.kind, fn.Name.Name, filepath.Base(path), length, limit.max)
				}
			}
		}
	}
}

func commandSourceFiles(t *testing.T) []string {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(self), "*.go"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	files := matches[:0]
	for _, path := range matches {
		if !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		t.Fatal("no command sources found")
	}
	return files
}

func isCommandConstructor(name string) bool {
	return strings.HasPrefix(name, "new") && strings.HasSuffix(name, "Cmd")
}

func maxCmdConstructorLines() int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv("SHEETDASH_MAX_CMD_CONSTRUCTOR_LINES")))
	if err != nil || parsed <= 0 {
		return defaultMaxCmdConstructorLines
	}
	return parsed
}
