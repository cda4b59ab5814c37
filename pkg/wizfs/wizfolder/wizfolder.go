// Package wizfolder knows what makes a directory a Wiz folder: the marker
// files that identify it, the app.json that configures it, and the scaffold
// file set a new one is born with.
package wizfolder

import (
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/identity"
)

// MarkerFile is the zero-byte file written at creation time.
const MarkerFile = ".wiz"

// AppFile holds the folder's configuration.
const AppFile = "app.json"

// ContentMarkers identify an existing directory as a Wiz folder; one
// suffices. Folders created by hand may lack the zero-byte marker, so
// detection keys off these instead.
var ContentMarkers = []string{"view.pug", "view.ts", "api.py", "socket.py"}

// SourceFiles is the full scaffold set beside app.json, keyed by the
// session file-key order.
var SourceFiles = []string{"view.pug", "view.ts", "view.scss", "view.html", "api.py", "socket.py"}

// AppConfig is the persisted shape of app.json.
type AppConfig struct {
	Mode       string    `json:"mode"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Namespace  string    `json:"namespace"`
	ViewURI    string    `json:"viewuri"`
	Category   string    `json:"category"`
	Controller string    `json:"controller"`
	Template   string    `json:"template"`
	Build      BuildMeta `json:"build"`
	Bind       BindMeta  `json:"bind"`
}

// BuildMeta carries build-output metadata.
type BuildMeta struct {
	Folder   string `json:"folder"`
	Optimize bool   `json:"optimize"`
}

// BindMeta carries UI-binding metadata.
type BindMeta struct {
	Props  map[string]string `json:"props"`
	Events []string          `json:"events"`
}

// IsWizFolder reports whether dir holds at least one content marker.
func IsWizFolder(fsys filesystem.StatFS, dir string) bool {
	for _, marker := range ContentMarkers {
		if filesystem.Exists(fsys, path.Join(dir, marker)) {
			return true
		}
	}
	return false
}

// InsideWizFolder reports whether any ancestor of p (p itself excluded) is
// a Wiz folder. Moving items in or out of one would corrupt the document.
func InsideWizFolder(fsys filesystem.StatFS, p string) bool {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if IsWizFolder(fsys, dir) {
			return true
		}
	}
	return false
}

// ReadMode returns the folder's mode from app.json. A missing or
// malformed app.json degrades to identity.ModeUnknown, never an error.
func ReadMode(fsys filesystem.ReadFS, dir string) string {
	cfg, err := ReadAppConfig(fsys, dir)
	if err != nil {
		return identity.ModeUnknown
	}
	if !identity.IsCreationMode(cfg.Mode) {
		return identity.ModeUnknown
	}
	return cfg.Mode
}

// ReadAppConfig parses dir/app.json.
func ReadAppConfig(fsys filesystem.ReadFS, dir string) (*AppConfig, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, AppFile))
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Scaffold describes the files a new Wiz folder starts with, app.json
// rendered from the derived identity.
func Scaffold(cfg *AppConfig) (map[string][]byte, error) {
	appJSON, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{
		AppFile:    append(appJSON, '\n'),
		MarkerFile: {},
	}
	for _, name := range SourceFiles {
		files[name] = []byte{}
	}
	return files, nil
}

// FileKeys maps session file-keys to filenames, in tab order.
var FileKeys = []struct {
	Key      string
	Label    string
	Filename string
}{
	{"app", "App", "app.json"},
	{"pug", "Pug", "view.pug"},
	{"ts", "Component", "view.ts"},
	{"scss", "SCSS", "view.scss"},
	{"html", "HTML", "view.html"},
	{"api", "API", "api.py"},
	{"socket", "Socket", "socket.py"},
}

// FilenameForKey resolves a session file-key to its filename, or "" for an
// unknown key.
func FilenameForKey(key string) string {
	for _, fk := range FileKeys {
		if fk.Key == key {
			return fk.Filename
		}
	}
	return ""
}

// Template renders the component-invocation text inserted when a Wiz
// folder is dropped into an editor. The folder's own app.json wins when it
// carries a template; otherwise it is rebuilt from mode and namespace.
func Template(fsys filesystem.StatFS, dir string) (string, error) {
	cfg, err := ReadAppConfig(fsys, dir)
	if err == nil && strings.TrimSpace(cfg.Template) != "" {
		return cfg.Template, nil
	}
	mode := ReadMode(fsys, dir)
	if mode == identity.ModeUnknown {
		mode = identity.ModeComponent
	}
	ns := ""
	if cfg != nil {
		ns = cfg.Namespace
	}
	return identity.BuildTemplate(mode, ns, dir)
}
