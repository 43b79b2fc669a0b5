package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/linkedinjobs/internal/models"
)

// fakeTransport serves canned listing and detail pages while tracking
// request counts and peak concurrency.
type fakeTransport struct {
	mu        sync.Mutex
	starts    []int
	detailIDs []string
	inflight  int
	peak      int
	delay     time.Duration
	failIDs   map[string]bool
}

func (f *fakeTransport) Do(req *fhttp.Request) (*fhttp.Response, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.peak {
		f.peak = f.inflight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if strings.Contains(req.URL.Path, "seeMoreJobPostings") {
		start, _ := strconv.Atoi(req.URL.Query().Get("start"))
		f.mu.Lock()
		f.starts = append(f.starts, start)
		f.mu.Unlock()
		return okResponse(listingPage(start, PageSize)), nil
	}

	id := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]
	f.mu.Lock()
	f.detailIDs = append(f.detailIDs, id)
	failed := f.failIDs[id]
	f.mu.Unlock()
	if failed {
		return okResponse("<section>not a job posting</section>"), nil
	}
	return okResponse(detailPageForID(id)), nil
}

func (f *fakeTransport) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts) + len(f.detailIDs)
}

func okResponse(body string) *fhttp.Response {
	return &fhttp.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// listingPage renders count job cards whose sequence numbers continue
// from start, so tests can assert global ordering.
func listingPage(start, count int) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for i := 0; i < count; i++ {
		n := start + i
		fmt.Fprintf(&b, `
  <li>
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/job-%d-40000%05d"></a>
    <h3 class="base-search-card__title">Job %d</h3>
    <h4 class="base-search-card__subtitle"><a href="https://www.linkedin.com/company/acme">Acme</a></h4>
    <span class="job-search-card__location">Remote</span>
    <time class="job-search-card__listdate" datetime="2024-01-10"></time>
  </li>`, n, n, n)
	}
	b.WriteString("</ul>")
	return b.String()
}

func detailPageForID(id string) string {
	return fmt.Sprintf(`
<section>
  <div class="show-more-less-html__markup">Posting %s</div>
  <ul>
    <li class="description__job-criteria-item">
      <h3 class="description__job-criteria-subheader">Employment type</h3>
      <span class="description__job-criteria-text">Full-time</span>
    </li>
  </ul>
  <span class="num-applicants__caption">%s applicants</span>
</section>`, id, id)
}

func newTestClient(t *testing.T, transport *fakeTransport, maxConcurrent int64) *Client {
	t.Helper()
	client, err := New(Options{
		Transport:             transport,
		MaxConcurrentRequests: maxConcurrent,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestFetchJobsPagination(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)

	jobs, err := client.FetchJobs(context.Background(), models.Filter{Title: "go"}, 5, 25)
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}

	if len(jobs) != 25 {
		t.Fatalf("got %d jobs, want 25", len(jobs))
	}
	if len(transport.starts) != 3 {
		t.Fatalf("issued %d page requests, want 3", len(transport.starts))
	}

	seen := map[int]bool{}
	for _, start := range transport.starts {
		seen[start] = true
	}
	for _, want := range []int{5, 15, 25} {
		if !seen[want] {
			t.Fatalf("missing page request at start=%d (got %v)", want, transport.starts)
		}
	}

	// Output order is offset-ascending regardless of completion order.
	for i, job := range jobs {
		if want := fmt.Sprintf("Job %d", 5+i); job.Title != want {
			t.Fatalf("jobs[%d].Title = %q, want %q", i, job.Title, want)
		}
	}
}

func TestFetchJobsTruncatesToLimit(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)

	jobs, err := client.FetchJobs(context.Background(), models.Filter{}, 0, 15)
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 15 {
		t.Fatalf("got %d jobs, want 15", len(jobs))
	}
	if len(transport.starts) != 2 {
		t.Fatalf("issued %d page requests, want 2", len(transport.starts))
	}
}

func TestFetchJobsValidation(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)
	ctx := context.Background()

	if _, err := client.FetchJobs(ctx, models.Filter{}, -1, 10); !errors.Is(err, ErrNegativeRange) {
		t.Fatalf("negative offset: got %v, want ErrNegativeRange", err)
	}
	if _, err := client.FetchJobs(ctx, models.Filter{}, 0, -1); !errors.Is(err, ErrNegativeRange) {
		t.Fatalf("negative limit: got %v, want ErrNegativeRange", err)
	}
	if _, err := client.FetchJobs(ctx, models.Filter{}, 500, 501); !errors.Is(err, ErrQueryLimit) {
		t.Fatalf("over the ceiling: got %v, want ErrQueryLimit", err)
	}
	if transport.requestCount() != 0 {
		t.Fatalf("validation failures must not reach the network, saw %d requests", transport.requestCount())
	}
}

func TestFetchJobsZeroLimit(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)

	jobs, err := client.FetchJobs(context.Background(), models.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(jobs) != 0 || transport.requestCount() != 0 {
		t.Fatalf("zero limit should fetch nothing, got %d jobs and %d requests", len(jobs), transport.requestCount())
	}
}

func TestFetchAllJobsFromOffset(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)

	jobs, err := client.FetchAllJobs(context.Background(), models.Filter{}, QueryLimit-PageSize)
	if err != nil {
		t.Fatalf("FetchAllJobs: %v", err)
	}
	if len(jobs) != PageSize {
		t.Fatalf("got %d jobs, want %d", len(jobs), PageSize)
	}
	if len(transport.starts) != 1 || transport.starts[0] != QueryLimit-PageSize {
		t.Fatalf("unexpected page requests: %v", transport.starts)
	}
}

func TestFetchJobDetails(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, 0)

	details, err := client.FetchJobDetails(context.Background(), "150")
	if err != nil {
		t.Fatalf("FetchJobDetails: %v", err)
	}
	if details.Description != "Posting 150" {
		t.Fatalf("description = %q", details.Description)
	}
	if details.EmploymentType != models.FullTime {
		t.Fatalf("employment type = %q", details.EmploymentType)
	}
	if details.ApplicantCount != 150 {
		t.Fatalf("applicant count = %d, want 150", details.ApplicantCount)
	}
}

func TestFetchJobsDetailsKeepsInputOrder(t *testing.T) {
	transport := &fakeTransport{delay: 2 * time.Millisecond}
	client := newTestClient(t, transport, 0)

	ids := []string{"30", "10", "20"}
	details, err := client.FetchJobsDetails(context.Background(), ids)
	if err != nil {
		t.Fatalf("FetchJobsDetails: %v", err)
	}
	if len(details) != len(ids) {
		t.Fatalf("got %d results, want %d", len(details), len(ids))
	}
	for i, id := range ids {
		want, _ := strconv.Atoi(id)
		if details[i].ApplicantCount != want {
			t.Fatalf("details[%d].ApplicantCount = %d, want %d", i, details[i].ApplicantCount, want)
		}
	}
}

func TestFetchJobsDetailsFailFast(t *testing.T) {
	transport := &fakeTransport{failIDs: map[string]bool{"20": true}}
	client := newTestClient(t, transport, 0)

	_, err := client.FetchJobsDetails(context.Background(), []string{"10", "20"})
	if err == nil {
		t.Fatalf("expected batch to fail when one id fails")
	}
	if !strings.Contains(err.Error(), "job 20") {
		t.Fatalf("error should name the failing id, got %v", err)
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected wrapped *ExtractionError, got %v", err)
	}
}

func TestConcurrencyCeilingAcrossOperations(t *testing.T) {
	transport := &fakeTransport{delay: 5 * time.Millisecond}
	client := newTestClient(t, transport, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := client.FetchJobs(context.Background(), models.Filter{}, 0, 30); err != nil {
			t.Errorf("FetchJobs: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := client.FetchJobsDetails(context.Background(), []string{"1", "2", "3"}); err != nil {
			t.Errorf("FetchJobsDetails: %v", err)
		}
	}()
	wg.Wait()

	if transport.peak > 2 {
		t.Fatalf("peak concurrency %d exceeded ceiling of 2", transport.peak)
	}
	if transport.requestCount() != 6 {
		t.Fatalf("request count = %d, want 6", transport.requestCount())
	}
}
