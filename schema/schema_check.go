package schema

import "time"

// ProjectViolations pairs a reactor project with the violations found in it.
type ProjectViolations struct {
	Project    Project       `json:"-"`
	ProjectID  string        `json:"project"`
	Violations *ViolationSet `json:"violations"`
}

// NewProjectViolations builds a record for project, treating nil as an empty set.
func NewProjectViolations(project Project, violations *ViolationSet) ProjectViolations {
	if violations == nil {
		violations = NewViolationSet()
	}
	return ProjectViolations{
		Project:    project,
		ProjectID:  project.String(),
		Violations: violations,
	}
}

// CheckResult holds the results of a snapshot plugin dependency check.
type CheckResult struct {
	RunID           string              `json:"run_id"`
	Passed          bool                `json:"passed"`
	Projects        []ProjectViolations `json:"projects"`
	TotalProjects   int                 `json:"total_projects"`
	TotalPlugins    int                 `json:"total_plugins"`
	TotalViolations int                 `json:"total_violations"`
	SelfPlugin      string              `json:"self_plugin"`
	IntegrationTest bool                `json:"integration_test"`
	ReactorPath     string              `json:"reactor_path"`
	Duration        time.Duration       `json:"duration_ns"`
}

// FailedProjects returns only the projects that hold violations, in reactor order.
func (r *CheckResult) FailedProjects() []ProjectViolations {
	var failed []ProjectViolations
	for _, p := range r.Projects {
		if !p.Violations.IsEmpty() {
			failed = append(failed, p)
		}
	}
	return failed
}

// ViolationRow is one flattened (project, plugin, dependency) triple.
type ViolationRow struct {
	Project    string `json:"project"`
	Plugin     string `json:"plugin"`
	Dependency string `json:"dependency"`
}

// Rows flattens the failed projects into report rows.
func (r *CheckResult) Rows() []ViolationRow {
	var rows []ViolationRow
	for _, p := range r.FailedProjects() {
		for _, v := range p.Violations.Pairs() {
			rows = append(rows, ViolationRow{
				Project:    p.ProjectID,
				Plugin:     v.Plugin,
				Dependency: v.Dependency,
			})
		}
	}
	return rows
}
