// If you are AI: This file implements the source convention checks run by trinity-lint:
// file headers, doc comments on functions, and a per-file line limit.

package lint

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// HeaderMarker is the text every non-test source file must carry in its header.
const HeaderMarker = "If you are AI:"

// Options selects which checks run.
type Options struct {
	MaxLines     int  // 0 disables the line limit
	RequireDocs  bool // every function declaration needs a doc comment
	IncludeTests bool // also check _test.go files
}

// Violation is one convention failure.
type Violation struct {
	Path    string
	Line    int
	Message string
}

// String formats the violation as path:line: message.
func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", v.Path, v.Line, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// CheckSource checks a single file's contents.
func CheckSource(path string, src []byte, opts Options) []Violation {
	var out []Violation
	content := string(src)

	if !strings.Contains(content, HeaderMarker) {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf("missing %q header", HeaderMarker)})
	}

	if opts.MaxLines > 0 {
		if lines := strings.Count(content, "\n"); lines > opts.MaxLines {
			out = append(out, Violation{Path: path, Message: fmt.Sprintf("%d lines (max %d)", lines, opts.MaxLines)})
		}
	}

	if !opts.RequireDocs {
		return out
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		// Unparseable files are left to the compiler
		return out
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || exemptFunc(fn.Name.Name) {
			continue
		}
		if fn.Doc == nil || len(fn.Doc.List) == 0 {
			out = append(out, Violation{
				Path:    path,
				Line:    fset.Position(fn.Pos()).Line,
				Message: fmt.Sprintf("function %s missing comment", fn.Name.Name),
			})
		}
	}
	return out
}

// CheckTree walks root and checks every Go file, skipping vendor, testdata
// and directories whose name starts with "_" or ".".
func CheckTree(root string, opts Options) ([]Violation, error) {
	var out []Violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") && !opts.IncludeTests {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, CheckSource(path, src, opts)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

// exemptFunc reports functions that never need a doc comment.
func exemptFunc(name string) bool {
	return name == "init" ||
		strings.HasPrefix(name, "Test") ||
		strings.HasPrefix(name, "Benchmark") ||
		strings.HasPrefix(name, "Fuzz")
}
