// Command check_boundaries enforces the layering of the contexts tree:
// components never import each other, and domain, application and ports
// packages stay free of adapters and runtime infrastructure.
//
//	go run ./scripts -root .
package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the component layers a layer may import besides the
// standard library, and whether the shared event contracts are allowed.
type layerRule struct {
	allowed        []string
	allowContracts bool
}

var layerRules = map[string]layerRule{
	"domain":      {allowed: []string{"domain"}},
	"ports":       {allowed: []string{"domain", "ports"}, allowContracts: true},
	"application": {allowed: []string{"application", "domain", "ports"}, allowContracts: true},
}

func main() {
	root := flag.String("root", ".", "repository root containing go.mod and contexts/")
	flag.Parse()

	modulePath, err := readModulePath(filepath.Join(*root, "go.mod"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	violations, err := collectViolations(filepath.Join(*root, "contexts"), modulePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func readModulePath(goModPath string) (string, error) {
	raw, err := os.ReadFile(goModPath)
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	modulePath := modfile.ModulePath(raw)
	if modulePath == "" {
		return "", fmt.Errorf("%s has no module directive", goModPath)
	}
	return modulePath, nil
}

// collectViolations walks contexts/<context>/<component>/<layer>/... and
// checks every non-test Go file. Results are sorted by file and line.
func collectViolations(contextsDir string, modulePath string) ([]violation, error) {
	var violations []violation

	err := filepath.WalkDir(contextsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(contextsDir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}

		component := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		fileViolations, err := checkFile(path, "contexts/"+filepath.ToSlash(rel), parts[2], component, modulePath)
		if err != nil {
			return err
		}
		violations = append(violations, fileViolations...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations, nil
}

func checkFile(path string, display string, layer string, component string, modulePath string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: display, Line: 1, Rule: "file must parse"}}, nil
	}

	rule, layered := layerRules[layer]
	var out []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		report := func(reason string) {
			out = append(out, violation{
				File:   display,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, component) {
			report("components must not import each other")
			continue
		}
		if !layered {
			continue
		}
		if !hasPrefix(importPath, modulePath) && isStdlib(importPath) {
			continue
		}
		if strings.Contains(importPath, "/adapters/") || strings.HasSuffix(importPath, "/adapters") {
			report(layer + " must not import adapters")
			continue
		}
		if hasPrefix(importPath, modulePath+"/internal") {
			report(layer + " must not import runtime infrastructure")
			continue
		}
		if !rule.permits(importPath, component, modulePath) {
			report(layer + " import is outside its allowlist")
		}
	}
	return out, nil
}

func (r layerRule) permits(importPath string, component string, modulePath string) bool {
	for _, layer := range r.allowed {
		if hasPrefix(importPath, component+"/"+layer) {
			return true
		}
	}
	return r.allowContracts && hasPrefix(importPath, modulePath+"/contracts")
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isStdlib treats any import whose first element has no dot as standard
// library.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
