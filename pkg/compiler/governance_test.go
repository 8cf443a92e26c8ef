//go:build governance

package compiler_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/talkpp-lang/talkpp"

// =============================================================================
// BOUNDARY TEST - pkg/... depends on itself and the standard library only
// =============================================================================

// TestGovernance_PublicPackageBoundary verifies that no package under pkg/
// imports internal/ or a third-party module. The public compiler surface must
// stay embeddable without dragging in the CLI stack.
func TestGovernance_PublicPackageBoundary(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}
	if len(pkgs) == 0 {
		t.Fatal("No packages found under pkg/")
	}

	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			for _, e := range p.Errors {
				t.Errorf("%s: load error: %v", p.PkgPath, e)
			}
			continue
		}

		for importPath := range p.Imports {
			if isStdlib(importPath) {
				continue
			}
			if strings.HasPrefix(importPath, modulePath+"/pkg/") {
				continue
			}
			if strings.Contains(importPath, "/internal/") || strings.HasPrefix(importPath, modulePath+"/internal") {
				t.Errorf("BOUNDARY VIOLATION: '%s' imports internal package '%s'.\n"+
					"   Fix: Invert the dependency or move the shared code under pkg/.",
					strings.TrimPrefix(p.PkgPath, modulePath+"/"), importPath)
				continue
			}
			t.Errorf("BOUNDARY VIOLATION: '%s' imports third-party package '%s'.\n"+
				"   Fix: Public compiler packages must build from the standard library alone.",
				strings.TrimPrefix(p.PkgPath, modulePath+"/"), importPath)
		}
	}
}

// isStdlib treats any import without a dotted first path segment as part of
// the standard library.
func isStdlib(importPath string) bool {
	first := importPath
	if i := strings.Index(importPath, "/"); i >= 0 {
		first = importPath[:i]
	}
	return !strings.Contains(first, ".")
}
