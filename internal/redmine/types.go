// Package redmine talks to a Redmine-compatible tracker over its JSON REST
// API using HTTP basic auth.
package redmine

import "time"

// Named is an id/name reference embedded in other resources.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref is a bare id reference.
type Ref struct {
	ID int64 `json:"id"`
}

// User is the authenticated account, from /users/current.json.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Project is a tracker project, from /projects.json.
type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// Issue is a tracker ticket, from /issues.json.
type Issue struct {
	ID             int64     `json:"id"`
	Subject        string    `json:"subject"`
	Project        Named     `json:"project"`
	Status         Named     `json:"status"`
	EstimatedHours *float64  `json:"estimated_hours"`
	UpdatedOn      time.Time `json:"updated_on"`
	AssignedTo     *Named    `json:"assigned_to"`
}

// TimeEntry is a logged duration, from /time_entries.json. Hours carry the
// tracker's quarter-hour granularity; SpentOn is a plain "2006-01-02" date.
type TimeEntry struct {
	ID       int64   `json:"id"`
	Project  Named   `json:"project"`
	Issue    *Ref    `json:"issue"`
	Hours    float64 `json:"hours"`
	SpentOn  string  `json:"spent_on"`
	Comments string  `json:"comments"`
}
