package graph

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// --- TypeScript: relative imports ---

func TestResolveTS_Relative(t *testing.T) {
	r := NewResolver("", []string{
		"src/index.ts",
		"src/service.ts",
		"src/types.ts",
		"src/view.tsx",
		"src/components/index.ts",
		"src/sub/handler.ts",
		"lib/legacy.js",
	})

	tests := []struct {
		name       string
		specifier  string
		sourceFile string
		want       string
		wantOK     bool
	}{
		{"dot-slash", "./service", "src/index.ts", "src/service.ts", true},
		{"exact file", "./types.ts", "src/index.ts", "src/types.ts", true},
		{"tsx probe", "./view", "src/index.ts", "src/view.tsx", true},
		{"parent dir", "../types", "src/sub/handler.ts", "src/types.ts", true},
		{"directory index", "./components", "src/index.ts", "src/components/index.ts", true},
		{"js extension on ts source", "./service.js", "src/index.ts", "src/service.ts", true},
		{"rooted", "/lib/legacy", "src/index.ts", "lib/legacy.js", true},
		{"escapes root", "../../outside", "src/index.ts", "", false},
		{"not found", "./nonexistent", "src/index.ts", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.specifier, tt.sourceFile, LangTypeScript)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Locality ---

func TestResolver_IsLocal(t *testing.T) {
	r := NewResolver("", nil)
	r.SetGoModulePath("github.com/example/project")

	tests := []struct {
		specifier string
		lang      Language
		want      bool
	}{
		{"./a", LangTypeScript, true},
		{"../a", LangTypeScript, true},
		{"/src/a", LangTypeScript, true},
		{"lodash", LangTypeScript, false},
		{"@scope/pkg", LangTypeScript, false},
		{".models", LangPython, true},
		{"..", LangPython, true},
		{"os.path", LangPython, false},
		{"crate::model", LangRust, true},
		{"super::util", LangRust, true},
		{"self::inner", LangRust, true},
		{"std::collections::HashMap", LangRust, false},
		{"github.com/example/project/internal/graph", LangGo, true},
		{"github.com/example/project", LangGo, true},
		{"github.com/example/projectx/foo", LangGo, false},
		{"fmt", LangGo, false},
		{"./a", Language("cobol"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+" "+tt.specifier, func(t *testing.T) {
			if got := r.IsLocal(tt.specifier, tt.lang); got != tt.want {
				t.Errorf("IsLocal(%q) = %v, want %v", tt.specifier, got, tt.want)
			}
		})
	}
}

func TestResolver_IsLocalGoWithoutModule(t *testing.T) {
	r := NewResolver("", nil)
	if r.IsLocal("github.com/example/project/x", LangGo) {
		t.Fatal("Go imports cannot be local without a module path")
	}
}

// --- Go resolution ---

func TestResolveGo_LocalModule(t *testing.T) {
	r := NewResolver("", []string{
		"internal/graph/schema.go",
		"internal/graph/schema_test.go",
		"internal/graph/store.go",
		"internal/only/only_test.go",
		"cmd/main.go",
		"root.go",
	})
	r.SetGoModulePath("github.com/example/project")

	tests := []struct {
		name      string
		specifier string
		want      string
		wantOK    bool
	}{
		{"package dir", "github.com/example/project/internal/graph", "internal/graph/schema.go", true},
		{"module root", "github.com/example/project", "root.go", true},
		{"tests only", "github.com/example/project/internal/only", "", false},
		{"unknown package", "github.com/example/project/pkg/none", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.specifier, "cmd/main.go", LangGo)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAll_GoPackageFiles(t *testing.T) {
	r := NewResolver("", []string{
		"svc/b.go",
		"svc/a.go",
		"svc/a_test.go",
		"main.go",
		"web/app.ts",
		"web/util.ts",
	})
	r.SetGoModulePath("example.com/m")

	tests := []struct {
		name      string
		specifier string
		from      string
		lang      Language
		want      []string
	}{
		{"go package", "example.com/m/svc", "main.go", LangGo, []string{"svc/a.go", "svc/b.go"}},
		{"go module root", "example.com/m", "svc/a.go", LangGo, []string{"main.go"}},
		{"go unknown", "example.com/m/none", "main.go", LangGo, nil},
		{"typescript", "./util", "web/app.ts", LangTypeScript, []string{"web/util.ts"}},
		{"typescript missing", "./ghost", "web/app.ts", LangTypeScript, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveAll(tt.specifier, tt.from, tt.lang)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveAll = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveGo_ReadsGoMod(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/tool\n\ngo 1.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(root, []string{"pkg/a/a.go", "main.go"})
	if !r.IsLocal("example.com/tool/pkg/a", LangGo) {
		t.Fatal("expected module path from go.mod")
	}
	got, ok := r.Resolve("example.com/tool/pkg/a", "main.go", LangGo)
	if !ok || got != "pkg/a/a.go" {
		t.Errorf("Resolve = %q, %v; want pkg/a/a.go", got, ok)
	}
}

// --- Python resolution ---

func TestResolvePython_Relative(t *testing.T) {
	r := NewResolver("", []string{
		"app/__init__.py",
		"app/main.py",
		"app/models.py",
		"app/db/__init__.py",
		"app/db/session.py",
		"app/api/routes.py",
	})

	tests := []struct {
		name       string
		specifier  string
		sourceFile string
		want       string
		wantOK     bool
	}{
		{"sibling module", ".models", "app/main.py", "app/models.py", true},
		{"package init", ".db", "app/main.py", "app/db/__init__.py", true},
		{"dotted module", ".db.session", "app/main.py", "app/db/session.py", true},
		{"current package", ".", "app/main.py", "app/__init__.py", true},
		{"parent package", "..models", "app/api/routes.py", "app/models.py", true},
		{"missing", ".ghost", "app/main.py", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.specifier, tt.sourceFile, LangPython)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Rust resolution ---

func TestResolveRust(t *testing.T) {
	r := NewResolver("", []string{
		"src/main.rs",
		"src/model.rs",
		"src/service/mod.rs",
		"src/service/handler.rs",
		"src/service/util.rs",
	})

	tests := []struct {
		name       string
		specifier  string
		sourceFile string
		want       string
		wantOK     bool
	}{
		{"crate module", "crate::model", "src/main.rs", "src/model.rs", true},
		{"crate item", "crate::model::User", "src/main.rs", "src/model.rs", true},
		{"crate use list", "crate::model::{User, Repository}", "src/service/handler.rs", "src/model.rs", true},
		{"mod.rs dir", "crate::service", "src/main.rs", "src/service/mod.rs", true},
		{"self", "self::util", "src/service/handler.rs", "src/service/util.rs", true},
		{"super", "super::model", "src/service/handler.rs", "src/model.rs", true},
		{"unknown", "crate::ghost", "src/main.rs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.specifier, tt.sourceFile, LangRust)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}
