package identity

import (
	"testing"
)

func TestDeriveIDAndNamespace(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		raw    string
		wantID string
		wantNS string
	}{
		{"page without prefix", ModePage, "nav.admin", "page.nav.admin", "nav.admin"},
		{"page with prefix", ModePage, "page.nav.admin", "page.nav.admin", "nav.admin"},
		{"component without prefix", ModeComponent, "button", "component.button", "button"},
		{"layout with whitespace", ModeLayout, "  layout.main  ", "layout.main", "main"},
		{"portal is taken as-is", ModePortal, " dashboard ", "dashboard", "dashboard"},
		{"already prefixed stays as typed", ModePage, "page..nav.admin.", "page..nav.admin.", "nav.admin"},
		{"empty input gets bare prefix", ModePage, "", "page.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ns := DeriveIDAndNamespace(tt.mode, tt.raw)
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
			if ns != tt.wantNS {
				t.Errorf("namespace = %q, want %q", ns, tt.wantNS)
			}
		})
	}
}

func TestDeriveIDAndNamespaceIdempotent(t *testing.T) {
	// Re-deriving from the produced id must yield the same namespace.
	inputs := []struct{ mode, raw string }{
		{ModePage, "nav.admin"},
		{ModePage, "page..nav.admin."},
		{ModeComponent, "widget.chart"},
		{ModeLayout, "layout"},
	}
	for _, in := range inputs {
		id, ns := DeriveIDAndNamespace(in.mode, in.raw)
		id2, ns2 := DeriveIDAndNamespace(in.mode, id)
		if id2 != id {
			t.Errorf("DeriveIDAndNamespace(%q, %q): id not stable: %q then %q", in.mode, in.raw, id, id2)
		}
		if ns2 != ns {
			t.Errorf("DeriveIDAndNamespace(%q, %q): namespace not stable: %q then %q", in.mode, in.raw, ns, ns2)
		}
	}
}

func TestNormalizeNamespace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nav.admin", "nav.admin"},
		{".nav.admin.", "nav.admin"},
		{"  ..a.b..  ", "a.b"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeNamespace(tt.in); got != tt.want {
			t.Errorf("NormalizeNamespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamespaceToDash(t *testing.T) {
	tests := []struct{ in, want string }{
		{"nav.admin", "nav-admin"},
		{"..a..b..", "a-b"},
		{"...", ""},
		{"", ""},
		{"single", "single"},
	}
	for _, tt := range tests {
		if got := NamespaceToDash(tt.in); got != tt.want {
			t.Errorf("NamespaceToDash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildTemplate(t *testing.T) {
	t.Run("non-portal with namespace", func(t *testing.T) {
		got, err := BuildTemplate(ModePage, "nav.admin", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "wiz-page-nav-admin()" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("non-portal without namespace", func(t *testing.T) {
		got, err := BuildTemplate(ModeComponent, "...", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "wiz-component()" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("portal with app and namespace", func(t *testing.T) {
		got, err := BuildTemplate(ModePortal, "x", "/w/portal/app1/src")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "wiz-portal-app1-x()" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("portal without namespace", func(t *testing.T) {
		got, err := BuildTemplate(ModePortal, "", "/w/portal/app1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "wiz-portal-app1()" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("portal outside portal ancestry fails", func(t *testing.T) {
		if _, err := BuildTemplate(ModePortal, "", "/w/notportal"); err == nil {
			t.Error("expected error for path without portal segment")
		}
	})

	t.Run("portal as final segment fails", func(t *testing.T) {
		if _, err := BuildTemplate(ModePortal, "x", "/w/portal"); err == nil {
			t.Error("expected error when portal has no app segment")
		}
	})
}

func TestPortalFromAncestry(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/w/portal/app1/src", "app1"},
		{"/w/portal/app1/portal/app2/x", "app2"},
		{"/w/other", ""},
		{"/w/portal", ""},
		{"portal/app", "app"},
	}
	for _, tt := range tests {
		if got := PortalFromAncestry(tt.in); got != tt.want {
			t.Errorf("PortalFromAncestry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, base, ext string }{
		{"a.txt", "a", ".txt"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"Makefile", "Makefile", ""},
		{".bashrc", ".bashrc", ""},
		{"view.pug", "view", ".pug"},
	}
	for _, tt := range tests {
		base, ext := SplitName(tt.in)
		if base != tt.base || ext != tt.ext {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.in, base, ext, tt.base, tt.ext)
		}
	}
}
