package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fumiama/clipdib"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`alpha: keep
max_pixels: 4096
sources: [dibv5, dib]
clipboard:
  command: wl-paste
  args: ["--no-newline"]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Settings{
		Alpha:     "keep",
		MaxPixels: 4096,
		Sources:   []string{"dibv5", "dib"},
		Clipboard: Clipboard{Command: "wl-paste", Args: []string{"--no-newline"}},
		LogLevel:  "info",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}

	opts, err := s.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Alpha != clipdib.AlphaKeep || opts.MaxPixels != 4096 {
		t.Errorf("options = %+v", opts)
	}
	order, err := s.Order()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]clipdib.Format{clipdib.FormatDIBV5, clipdib.FormatDIB}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"alpha":   "alpha: sometimes\n",
		"sources": "sources: [dib, emf]\n",
		"pixels":  "max_pixels: -1\n",
		"syntax":  "alpha: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", body)
			}
		})
	}
}
