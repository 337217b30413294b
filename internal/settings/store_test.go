package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/tabshell/internal/inject"
)

func TestStoreSaveReplacesConfig(t *testing.T) {
	s := NewStore(inject.FilterConfig{AdBlock: true})
	if got := s.FilterConfig(); !got.AdBlock || got.TrackerBlock {
		t.Fatalf("FilterConfig() = %+v; want ad block only", got)
	}

	want := inject.FilterConfig{TrackerBlock: true, AlternateDNS: true}
	s.Save(want)
	if got := s.FilterConfig(); got != want {
		t.Fatalf("FilterConfig() = %+v; want %+v", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := "filters:\n  ad_block: true\n  dark_mode: true\n  alternate_dns: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v; want nil", err)
	}
	want := inject.FilterConfig{AdBlock: true, DarkMode: true, AlternateDNS: true}
	if got != want {
		t.Fatalf("LoadFile() = %+v; want %+v", got, want)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile() = %v; want os.ErrNotExist", err)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("filters: [unterminated"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() = nil; want parse error")
	}
}
