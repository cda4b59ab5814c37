package wizfolder

import (
	"io/fs"
	"testing"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/identity"
)

func TestIsWizFolder(t *testing.T) {
	fsys := filesystem.NewTestFileSystem()
	if err := fsys.WriteFile("src/page.main/view.pug", []byte("div"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll("src/plain", 0755); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile("src/apiish/api.py", nil, fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}

	if !IsWizFolder(fsys, "src/page.main") {
		t.Error("view.pug should mark a wiz folder")
	}
	if !IsWizFolder(fsys, "src/apiish") {
		t.Error("api.py should mark a wiz folder")
	}
	if IsWizFolder(fsys, "src/plain") {
		t.Error("plain directory misdetected")
	}
}

func TestInsideWizFolder(t *testing.T) {
	fsys := filesystem.NewTestFileSystem()
	if err := fsys.WriteFile("src/page.main/view.pug", []byte("div"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}

	if !InsideWizFolder(fsys, "src/page.main/assets/logo.png") {
		t.Error("descendant of a wiz folder not detected")
	}
	if InsideWizFolder(fsys, "src/page.main") {
		t.Error("the wiz folder itself is not inside one")
	}
	if InsideWizFolder(fsys, "src/other/file.txt") {
		t.Error("unrelated path misdetected")
	}
}

func TestReadMode(t *testing.T) {
	fsys := filesystem.NewTestFileSystem()
	if err := fsys.WriteFile("a/app.json", []byte(`{"mode":"page"}`), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile("b/app.json", []byte(`{broken`), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile("c/app.json", []byte(`{"mode":"widget"}`), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll("d", 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct{ dir, want string }{
		{"a", identity.ModePage},
		{"b", identity.ModeUnknown}, // malformed json
		{"c", identity.ModeUnknown}, // unrecognized mode
		{"d", identity.ModeUnknown}, // no app.json
	}
	for _, tt := range tests {
		if got := ReadMode(fsys, tt.dir); got != tt.want {
			t.Errorf("ReadMode(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestScaffold(t *testing.T) {
	files, err := Scaffold(&AppConfig{
		Mode:      identity.ModePage,
		ID:        "page.main",
		Namespace: "main",
		Template:  "wiz-page-main()",
	})
	if err != nil {
		t.Fatal(err)
	}

	// app.json, marker, and the six source files.
	if len(files) != 2+len(SourceFiles) {
		t.Errorf("scaffold has %d files, want %d", len(files), 2+len(SourceFiles))
	}
	if len(files[MarkerFile]) != 0 {
		t.Error("marker file must be zero bytes")
	}
	for _, name := range SourceFiles {
		if _, ok := files[name]; !ok {
			t.Errorf("scaffold missing %q", name)
		}
	}
	if appJSON := string(files[AppFile]); appJSON == "" || appJSON[len(appJSON)-1] != '\n' {
		t.Error("app.json must end with a newline")
	}
}

func TestFilenameForKey(t *testing.T) {
	if got := FilenameForKey("pug"); got != "view.pug" {
		t.Errorf("FilenameForKey(pug) = %q", got)
	}
	if got := FilenameForKey("nope"); got != "" {
		t.Errorf("FilenameForKey(nope) = %q, want empty", got)
	}
}

func TestTemplate(t *testing.T) {
	fsys := filesystem.NewTestFileSystem()

	t.Run("from app.json", func(t *testing.T) {
		if err := fsys.WriteFile("a/app.json", []byte(`{"mode":"page","template":"wiz-page-main()"}`), fs.FileMode(0644)); err != nil {
			t.Fatal(err)
		}
		got, err := Template(fsys, "a")
		if err != nil || got != "wiz-page-main()" {
			t.Errorf("Template = (%q, %v)", got, err)
		}
	})

	t.Run("rebuilt from mode and namespace", func(t *testing.T) {
		if err := fsys.WriteFile("b/app.json", []byte(`{"mode":"component","namespace":"nav.bar"}`), fs.FileMode(0644)); err != nil {
			t.Fatal(err)
		}
		got, err := Template(fsys, "b")
		if err != nil || got != "wiz-component-nav-bar()" {
			t.Errorf("Template = (%q, %v)", got, err)
		}
	})
}
