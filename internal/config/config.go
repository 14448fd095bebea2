// Package config manages the durable configuration record: the project and
// work-package catalog, the timer backup snapshot, and the remote tracker
// connection settings.
//
// All mutation funnels through a single save path so every update is
// persisted atomically; components receive the *Store by reference and never
// touch the file themselves.
package config

import "time"

// Backup is the single crash-recovery snapshot of the timer. Exactly one
// snapshot is live at a time (last write wins); it is cleared exactly when a
// recording is finalized or explicitly discarded.
type Backup struct {
	ElapsedSeconds float64   `yaml:"elapsed_seconds"`
	Project        string    `yaml:"project"`
	WorkPackage    string    `yaml:"work_package"`
	SavedAt        time.Time `yaml:"saved_at"`
}

// Config is the on-disk configuration record. Missing keys are filled from
// defaults on load; the record round-trips through save/load without loss.
type Config struct {
	// Projects is the ordered list of selectable project names.
	Projects []string `yaml:"projects"`

	// WorkPackages maps a project name to its sorted work-package
	// identifiers ("<ticket id>: <subject>" for remote-backed packages).
	WorkPackages map[string][]string `yaml:"work_packages"`

	// Backup holds the live timer snapshot, or the zero value when none.
	Backup Backup `yaml:"backup"`

	// RedmineURL is the base URL of the remote tracker.
	RedmineURL string `yaml:"redmine_url"`

	// BackupProject is the designated remote project that receives all
	// pushed time-tracking tickets.
	BackupProject string `yaml:"backup_project"`

	// RedmineUser caches the login of the authenticated remote user.
	RedmineUser string `yaml:"redmine_user"`

	// Credentials is the reversibly encoded username:password cache.
	// Storage is an encoding, not encryption; see the credx package.
	Credentials string `yaml:"credentials,omitempty"`

	// RemoteConfigUpdated is the one-shot catalog refresh flag. While set,
	// the refresh pass is skipped; clearing it starts a new epoch.
	RemoteConfigUpdated bool `yaml:"remote_config_updated"`
}

const defaultProject = "General"

func defaultConfig() Config {
	return Config{
		Projects: []string{defaultProject},
		WorkPackages: map[string][]string{
			defaultProject: {"Design", "Development", "Documentation", "Meeting", "Testing"},
		},
	}
}

// fillDefaults completes a loaded Config in place.
func (c *Config) fillDefaults() {
	d := defaultConfig()
	if len(c.Projects) == 0 {
		c.Projects = d.Projects
	}
	if c.WorkPackages == nil {
		c.WorkPackages = d.WorkPackages
	}
}

// HasBackup reports whether a live snapshot with recoverable progress exists.
func (c *Config) HasBackup() bool {
	return c.Backup.ElapsedSeconds > 0
}
