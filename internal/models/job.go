package models

import (
	"fmt"
	"regexp"
	"time"
)

var jobIDPattern = regexp.MustCompile(`-?(\d+)(?:[/?]|$)`)

// Job is one abbreviated posting from a search results page.
type Job struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Company    string    `json:"company"`
	CompanyURL string    `json:"company_url"`
	PostedAt   time.Time `json:"posted_at"`
}

// ID returns the numeric LinkedIn job ID embedded in the listing URL.
func (j Job) ID() (string, error) {
	match := jobIDPattern.FindStringSubmatch(j.URL)
	if match == nil {
		return "", fmt.Errorf("no job id in url: %s", j.URL)
	}
	return match[1], nil
}

// JobDetails is the full posting behind one job ID.
//
// ApplicantCount is bucketed at the extremes: LinkedIn reports 25 for
// "fewer than 25 applicants" and 200 for "over 200 applicants", so the
// boundary values are thresholds, not exact counts. The raw integer is
// kept as reported.
type JobDetails struct {
	Description     string          `json:"description"`
	EmploymentType  EmploymentType  `json:"employment_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	ApplicantCount  int             `json:"applicant_count"`
}
