package fleet

import (
	"path/filepath"
	"testing"

	"github.com/tonhe/spyglass/internal/config"
	"github.com/tonhe/spyglass/internal/logger"
)

func newTestStatic(t *testing.T) (*StaticList, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Hosts = []config.Host{
		{Name: "srv1", IP: "10.0.0.5", Port: 61209, Username: "user"},
		{Name: "srv2", IP: "10.0.0.6", Port: 61209, Username: "user"},
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	return NewStaticList(cfg, path, logger.Noop()), path
}

func TestStaticListOrder(t *testing.T) {
	s, _ := newTestStatic(t)
	hosts := s.List()
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts[0].Name() != "srv1" || hosts[1].Name() != "srv2" {
		t.Errorf("configuration order not preserved: %q %q", hosts[0].Name(), hosts[1].Name())
	}
}

func TestStaticListColumnsDefault(t *testing.T) {
	s, _ := newTestStatic(t)
	cols := s.Columns()
	if len(cols) != 3 {
		t.Fatalf("expected 3 default columns, got %d", len(cols))
	}
	if cols[0].MetricKey() != "cpu.total" {
		t.Errorf("first column = %q, want cpu.total", cols[0].MetricKey())
	}
}

func TestStaticListSetFieldPersists(t *testing.T) {
	s, path := newTestStatic(t)
	if err := s.SetField(0, "password", "HASHED"); err != nil {
		t.Fatalf("SetField() error: %v", err)
	}
	if got := s.List()[0].Password(); got != "HASHED" {
		t.Errorf("record password = %q, want HASHED", got)
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Hosts[0].Password != "HASHED" {
		t.Errorf("edit not persisted, got %q", loaded.Hosts[0].Password)
	}
}

func TestStaticListSetFieldBounds(t *testing.T) {
	s, _ := newTestStatic(t)
	if err := s.SetField(5, "password", "x"); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := s.SetField(0, "bogus", "x"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestStaticListReloadAddsHosts(t *testing.T) {
	s, path := newTestStatic(t)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Hosts = append(cfg.Hosts, config.Host{Name: "srv3", IP: "10.0.0.7", Port: 61209, Username: "user"})
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	s.reload()
	hosts := s.List()
	if len(hosts) != 3 {
		t.Fatalf("expected 3 hosts after reload, got %d", len(hosts))
	}
	if hosts[2].Name() != "srv3" {
		t.Errorf("new host must be appended, got %q", hosts[2].Name())
	}
}

func TestStaticListSetFieldAfterShrinkingReload(t *testing.T) {
	s, path := newTestStatic(t)

	// The file loses srv2 while the browser is running.
	trimmed := config.DefaultConfig()
	trimmed.Hosts = []config.Host{{Name: "srv1", IP: "10.0.0.5", Port: 61209, Username: "user"}}
	if err := config.SaveConfig(trimmed, path); err != nil {
		t.Fatal(err)
	}
	s.reload()

	if got := len(s.List()); got != 2 {
		t.Fatalf("static records must never shrink mid-run, got %d", got)
	}
	if err := s.SetField(1, "password", "HASHED"); err != nil {
		t.Fatalf("SetField() after shrinking reload: %v", err)
	}
	if got := s.List()[1].Password(); got != "HASHED" {
		t.Errorf("record password = %q, want HASHED", got)
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(loaded.Hosts) != 2 {
		t.Fatalf("expected 2 persisted hosts, got %d", len(loaded.Hosts))
	}
	if loaded.Hosts[1].Name != "srv2" || loaded.Hosts[1].Password != "HASHED" {
		t.Errorf("edit landed on the wrong entry: %+v", loaded.Hosts[1])
	}
	if loaded.Hosts[0].Password != "" {
		t.Errorf("srv1 must be untouched, got password %q", loaded.Hosts[0].Password)
	}
}
