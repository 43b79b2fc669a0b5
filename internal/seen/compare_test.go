package seen

import (
	"testing"

	"github.com/jimezsa/linkedinjobs/internal/models"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  Senior   Software\tEngineer  ")
	want := "senior software engineer"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestKeyPrefersJobID(t *testing.T) {
	job := models.Job{
		Title:   "Senior Engineer",
		Company: "Acme",
		URL:     "https://www.linkedin.com/jobs/view/senior-engineer-at-acme-4361039203",
	}
	got, ok := Key(job)
	if !ok {
		t.Fatalf("expected valid key")
	}
	if got != "id::4361039203" {
		t.Fatalf("Key() = %q, want id::4361039203", got)
	}
}

func TestKeyFallsBackToTitleCompany(t *testing.T) {
	job := models.Job{Title: "  Senior Engineer ", Company: " ACME   Corp "}
	got, ok := Key(job)
	if !ok {
		t.Fatalf("expected valid key")
	}
	want := "senior engineer::acme corp"
	if got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
}

func TestDiff(t *testing.T) {
	newJobs := []models.Job{
		{Title: "Senior Engineer", Company: "Acme", URL: "https://www.linkedin.com/jobs/view/job-101"},
		{Title: "Senior   Engineer", Company: " Acme ", URL: "https://www.linkedin.com/jobs/view/job-101?refId=x"},
		{Title: "Platform Engineer", Company: "Beta", URL: "https://www.linkedin.com/jobs/view/job-202"},
		{Title: "", Company: "Invalid"},
	}
	seenJobs := []models.Job{
		{Title: "senior engineer", Company: "acme", URL: "https://www.linkedin.com/jobs/view/job-101"},
		{Title: "No Company", Company: "   "},
	}

	unseen, stats := Diff(newJobs, seenJobs)

	if len(unseen) != 1 {
		t.Fatalf("expected 1 unseen job, got %d", len(unseen))
	}
	if unseen[0].Title != "Platform Engineer" {
		t.Fatalf("unexpected unseen job: %+v", unseen[0])
	}
	if stats.InvalidNew != 1 || stats.InvalidSeen != 1 {
		t.Fatalf("unexpected invalid counts: %+v", stats)
	}
	if stats.Unseen != 1 {
		t.Fatalf("Unseen = %d, want 1", stats.Unseen)
	}
}

func TestMerge(t *testing.T) {
	existing := []models.Job{
		{Title: "Senior Engineer", Company: "Acme", URL: "https://www.linkedin.com/jobs/view/job-101"},
	}
	input := []models.Job{
		{Title: "Senior Engineer", Company: "Acme", URL: "https://www.linkedin.com/jobs/view/job-101"},
		{Title: "Platform Engineer", Company: "Beta", URL: "https://www.linkedin.com/jobs/view/job-202"},
	}

	merged, stats := Merge(existing, input)

	if len(merged) != 2 {
		t.Fatalf("expected 2 jobs after merge, got %d", len(merged))
	}
	if stats.Added != 1 {
		t.Fatalf("Added = %d, want 1", stats.Added)
	}
	if stats.TotalOut != 2 {
		t.Fatalf("TotalOut = %d, want 2", stats.TotalOut)
	}
}
