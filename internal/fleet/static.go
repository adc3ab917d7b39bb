package fleet

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tonhe/spyglass/internal/config"
	"github.com/tonhe/spyglass/internal/logger"
)

// StaticList serves the statically configured hosts and columns, and
// persists manual edits back to the configuration file.
type StaticList struct {
	mu      sync.Mutex
	cfg     *config.Config
	path    string
	records []*HostRecord
	columns []ColumnSpec
	log     logger.Logger
}

// NewStaticList builds host records and column specs from cfg. path is the
// configuration file edits are persisted to (empty disables persistence).
func NewStaticList(cfg *config.Config, path string, log logger.Logger) *StaticList {
	s := &StaticList{cfg: cfg, path: path, log: log}
	for _, h := range cfg.Hosts {
		s.records = append(s.records, recordFromConfig(h))
	}
	for _, c := range cfg.Columns {
		s.columns = append(s.columns, ColumnSpec{Plugin: c.Plugin, Field: c.Field, Subkey: c.Subkey})
	}
	return s
}

func recordFromConfig(h config.Host) *HostRecord {
	rec := NewHostRecord(h.Name, h.IP, h.Port, h.Username)
	if h.Password != "" {
		rec.SetPassword(h.Password)
	}
	return rec
}

// List returns the static hosts in configuration order.
func (s *StaticList) List() []*HostRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*HostRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Columns returns the configured metric digest, in order.
func (s *StaticList) Columns() []ColumnSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ColumnSpec, len(s.columns))
	copy(out, s.columns)
	return out
}

// SetField updates one field of the static host at index and persists the
// edit to the configuration file.
func (s *StaticList) SetField(index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) || index >= len(s.cfg.Hosts) {
		return fmt.Errorf("static host index %d out of range", index)
	}
	s.records[index].SetField(field, value)

	switch field {
	case "name":
		s.cfg.Hosts[index].Name = value
	case "ip":
		s.cfg.Hosts[index].IP = value
	case "username":
		s.cfg.Hosts[index].Username = value
	case "password":
		s.cfg.Hosts[index].Password = value
	default:
		return fmt.Errorf("unknown static host field %q", field)
	}
	if s.path == "" {
		return nil
	}
	return config.SaveConfig(s.cfg, s.path)
}

// Watch reloads the static host list when the configuration file changes on
// disk. New hosts are appended; existing records are never removed mid-run.
// It blocks until ctx is cancelled.
func (s *StaticList) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(s.path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("config watch error: %v", err)
		}
	}
}

func (s *StaticList) reload() {
	cfg, err := config.LoadConfig(s.path)
	if err != nil {
		s.log.Warn("config reload failed: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// s.records[i] and s.cfg.Hosts[i] stay aligned: SetField addresses both
	// by the same index. The file's host list is merged append-only, so a
	// removal or reorder on disk cannot shift the in-memory list.
	known := make(map[string]bool, len(s.records))
	for _, rec := range s.records {
		known[rec.Key] = true
	}
	hosts := s.cfg.Hosts
	added := 0
	for _, h := range cfg.Hosts {
		if known[HostKey(h.Name, h.IP, h.Port)] {
			continue
		}
		s.records = append(s.records, recordFromConfig(h))
		hosts = append(hosts, h)
		added++
	}
	cfg.Hosts = hosts
	s.cfg = cfg
	if added > 0 {
		s.log.Info("config reload: %d static host(s) added", added)
	}
}
