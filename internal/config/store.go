package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dkrasnovs/timetrack/internal/logging"
	"gopkg.in/yaml.v3"
)

// Store owns the configuration file. Every mutator persists the whole record
// before returning, so the on-disk file is never behind the in-memory state
// by more than the write in flight.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
	log  logging.Logger
}

// Load reads the configuration at path, filling missing keys from defaults.
// A missing file yields a fresh default record; a corrupt file is an error so
// a live backup snapshot is never silently overwritten.
func Load(path string, log logging.Logger) (*Store, error) {
	s := &Store{path: path, log: log.With("component", "config")}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.cfg = defaultConfig()
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	s.cfg.fillDefaults()
	return s, nil
}

// save writes the record to a sibling temp file and renames it into place.
// Callers must hold s.mu.
func (s *Store) save() error {
	data, err := yaml.Marshal(&s.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current record.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cfg
	c.Projects = slices.Clone(s.cfg.Projects)
	c.WorkPackages = make(map[string][]string, len(s.cfg.WorkPackages))
	for p, wps := range s.cfg.WorkPackages {
		c.WorkPackages[p] = slices.Clone(wps)
	}
	return c
}

// Projects returns the selectable project names.
func (s *Store) Projects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cfg.Projects)
}

// WorkPackages returns the work packages of a project.
func (s *Store) WorkPackages(project string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cfg.WorkPackages[project])
}

func (s *Store) RedmineURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RedmineURL
}

func (s *Store) BackupProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.BackupProject
}

func (s *Store) RedmineUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RedmineUser
}

func (s *Store) Credentials() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Credentials
}

func (s *Store) RemoteConfigUpdated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.RemoteConfigUpdated
}

// Backup returns the live snapshot and whether one exists.
func (s *Store) Backup() (Backup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Backup, s.cfg.HasBackup()
}

// UpdateBackup replaces the live snapshot. Last write wins.
func (s *Store) UpdateBackup(elapsedSeconds float64, project, workPackage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Backup = Backup{
		ElapsedSeconds: elapsedSeconds,
		Project:        project,
		WorkPackage:    workPackage,
		SavedAt:        time.Now(),
	}
	return s.save()
}

// ClearBackup discards the live snapshot.
func (s *Store) ClearBackup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Backup = Backup{}
	return s.save()
}

// SetCredentials caches the encoded credentials and the authenticated login.
func (s *Store) SetCredentials(encoded, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Credentials = encoded
	s.cfg.RedmineUser = user
	return s.save()
}

// SetUser records the authenticated login without touching credentials.
func (s *Store) SetUser(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.RedmineUser = user
	return s.save()
}

// ClearCredentials drops the cached credentials, keeping the login.
func (s *Store) ClearCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Credentials = ""
	return s.save()
}

// SetRemote records the tracker endpoint and the designated backup project.
func (s *Store) SetRemote(url, backupProject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.RedmineURL = url
	s.cfg.BackupProject = backupProject
	return s.save()
}

// SetCatalog replaces the project list and work-package map, then latches the
// one-shot refresh flag so the pass does not repeat within the epoch.
func (s *Store) SetCatalog(projects []string, workPackages map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Projects = slices.Clone(projects)
	s.cfg.WorkPackages = make(map[string][]string, len(workPackages))
	for p, wps := range workPackages {
		s.cfg.WorkPackages[p] = slices.Clone(wps)
	}
	s.cfg.RemoteConfigUpdated = true
	return s.save()
}

// ResetRefreshFlag starts a new catalog refresh epoch.
func (s *Store) ResetRefreshFlag() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.RemoteConfigUpdated = false
	return s.save()
}

// AddProject appends a project if it is not present yet.
func (s *Store) AddProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.cfg.Projects, name) {
		return nil
	}
	s.cfg.Projects = append(s.cfg.Projects, name)
	if s.cfg.WorkPackages[name] == nil {
		s.cfg.WorkPackages[name] = []string{}
	}
	return s.save()
}

// AddWorkPackage appends a work package to a project if it is not present yet.
func (s *Store) AddWorkPackage(project, workPackage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.cfg.WorkPackages[project], workPackage) {
		return nil
	}
	s.cfg.WorkPackages[project] = append(s.cfg.WorkPackages[project], workPackage)
	return s.save()
}

// RemoveProject drops a project and its work packages from the catalog.
// Recorded ledger entries are untouched.
func (s *Store) RemoveProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.cfg.Projects, name)
	if i < 0 {
		return nil
	}
	s.cfg.Projects = slices.Delete(s.cfg.Projects, i, i+1)
	delete(s.cfg.WorkPackages, name)
	return s.save()
}

// RemoveWorkPackage drops one work package from a project.
func (s *Store) RemoveWorkPackage(project, workPackage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.cfg.WorkPackages[project], workPackage)
	if i < 0 {
		return nil
	}
	s.cfg.WorkPackages[project] = slices.Delete(s.cfg.WorkPackages[project], i, i+1)
	return s.save()
}
