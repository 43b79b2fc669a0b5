package models

import (
	"strings"
	"testing"
)

func TestJobID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/electronics-engineer-at-omnisent-4361039203", "4361039203"},
		{"https://www.linkedin.com/jobs/view/staff-engineer-at-acme-4012345678?position=1&pageNum=0", "4012345678"},
		{"https://www.linkedin.com/jobs/view/4012345678/", "4012345678"},
	}

	for _, tc := range cases {
		job := Job{URL: tc.url}
		got, err := job.ID()
		if err != nil {
			t.Fatalf("ID(%q): %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("ID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestJobIDMissing(t *testing.T) {
	job := Job{URL: "https://www.linkedin.com/jobs/view/no-numeric-suffix"}
	if _, err := job.ID(); err == nil {
		t.Fatalf("expected error for URL without job id")
	} else if !strings.Contains(err.Error(), "no job id") {
		t.Fatalf("unexpected error: %v", err)
	}
}
