// Package nowinject provides a linter that keeps wall-clock reads out of code
// that should receive the current time from its caller.
package nowinject

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const name = "nowinject"

// Analyzer reports calls to time.Now, time.Since and time.Until outside the
// clock package and outside tests.
var Analyzer = &analysis.Analyzer{
	Name: name,
	Doc:  "checks that the current time is injected (clock.Func or a now parameter) instead of read with time.Now",
	Run:  run,
}

// clockReaders are the time functions that read the wall clock.
var clockReaders = map[string]bool{
	"Now":   true,
	"Since": true,
	"Until": true,
}

func run(pass *analysis.Pass) (any, error) {
	if isClockPackage(pass.Pkg.Path()) {
		return nil, nil
	}

	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			fn, ok := clockRead(pass, call)
			if !ok {
				return true
			}

			if hasNolintComment(pass, file, call) {
				return true
			}

			pass.Reportf(call.Pos(), "time.%s() reads the wall clock; inject the current time instead", fn)
			return true
		})
	}

	return nil, nil
}

// clockRead reports whether call is time.Now, time.Since or time.Until and
// returns the function name. Resolution goes through type info so renamed
// imports are caught and local identifiers named time are not.
func clockRead(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "time" {
		return "", false
	}

	// Methods such as Time.Sub also live in package time.
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		return "", false
	}

	return fn.Name(), clockReaders[fn.Name()]
}

func isClockPackage(path string) bool {
	return path == "clock" || strings.HasSuffix(path, "/clock")
}

// hasNolintComment checks for //nolint or //nolint:nowinject on the call's
// line or the line before it.
func hasNolintComment(pass *analysis.Pass, file *ast.File, call *ast.CallExpr) bool {
	line := pass.Fset.Position(call.Pos()).Line

	for _, cg := range file.Comments {
		for _, comment := range cg.List {
			commentLine := pass.Fset.Position(comment.Pos()).Line
			if commentLine != line && commentLine != line-1 {
				continue
			}

			text := strings.TrimPrefix(comment.Text, "//")
			directive, _, _ := strings.Cut(strings.TrimSpace(text), " ")
			if directive == "nolint" {
				return true
			}
			if linters, ok := strings.CutPrefix(directive, "nolint:"); ok {
				for _, l := range strings.Split(linters, ",") {
					if l == name {
						return true
					}
				}
			}
		}
	}

	return false
}
