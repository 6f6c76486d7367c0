// Command sqllint checks that every inline SQL constant starts with the
// "--sql <uuid>" marker the SQL runner requires. Run it over internal/sqlinline
// before adding queries.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	statementPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create|alter|drop)\b`)
	markerPattern    = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type violation struct {
	file string
	name string
	line int
}

func main() {
	flag.Parse()
	os.Exit(run(flag.Args(), os.Stderr))
}

func run(targets []string, stderr io.Writer) int {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	violations, seen, err := lint(targets)
	if err != nil {
		fmt.Fprintf(stderr, "sqllint: %v\n", err)
		return 1
	}
	if len(violations) > 0 {
		fmt.Fprintln(stderr, "sqllint: missing or invalid --sql <uuid> marker")
		for _, v := range violations {
			fmt.Fprintf(stderr, "  %s:%d %s\n", v.file, v.line, v.name)
		}
		return 1
	}
	// Two queries sharing a marker make the runner logs ambiguous.
	if dup := duplicateMarker(seen); dup != "" {
		fmt.Fprintf(stderr, "sqllint: marker %s used more than once\n", dup)
		return 1
	}
	return 0
}

func lint(targets []string) ([]violation, []string, error) {
	var (
		violations []violation
		markers    []string
	)
	for _, target := range targets {
		err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != target && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			vs, ms, err := lintFile(path)
			if err != nil {
				return err
			}
			violations = append(violations, vs...)
			markers = append(markers, ms...)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return violations, markers, nil
}

func lintFile(path string) ([]violation, []string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, nil, err
	}
	var (
		violations []violation
		markers    []string
	)
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw, err := unquote(lit.Value)
			if err != nil || !statementPattern.MatchString(raw) {
				continue
			}
			marker := firstLine(raw)
			if markerPattern.MatchString(marker) {
				markers = append(markers, marker)
				continue
			}
			violations = append(violations, violation{
				file: path,
				line: fset.Position(lit.Pos()).Line,
				name: joinNames(spec.Names),
			})
		}
		return true
	})
	return violations, markers, nil
}

func duplicateMarker(markers []string) string {
	seen := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		if _, ok := seen[m]; ok {
			return m
		}
		seen[m] = struct{}{}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if strings.HasPrefix(v, "`") {
		return strings.Trim(v, "`"), nil
	}
	return strconv.Unquote(v)
}

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
