// Package linkedin fetches job postings through LinkedIn's guest
// endpoints: a paginated search feed and a per-ID detail endpoint.
package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jimezsa/linkedinjobs/internal/models"
	"github.com/jimezsa/linkedinjobs/internal/network"
)

const (
	// PageSize is the number of listings the search endpoint returns
	// per page.
	PageSize = 10

	// QueryLimit is the deepest result the search endpoint serves.
	QueryLimit = 1000

	searchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	detailURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"
)

const defaultMaxConcurrent = 10

// Options configure a Client.
type Options struct {
	// Timeout applies per transport call.
	Timeout time.Duration

	// Proxies are rotated round-robin across request attempts.
	Proxies []string

	// MaxConcurrentRequests bounds in-flight transport calls across
	// every operation issued through the client. Defaults to 10.
	MaxConcurrentRequests int64

	// RequestsPerSecond enables client-side throttling when positive.
	RequestsPerSecond float64

	// Transport overrides the built-in TLS transport.
	Transport network.Doer

	Logger zerolog.Logger
}

// Client fetches LinkedIn job postings. One client shares a single
// proxy rotation and one concurrency ceiling; the ceiling bounds
// concurrent transport calls, not logical operations, so page fan-out
// and detail batches compose under the same limit.
type Client struct {
	session *network.Session
	sem     *semaphore.Weighted
	logger  zerolog.Logger
}

// New builds a client. The returned client is safe for concurrent use;
// call Close to release transport resources.
func New(opts Options) (*Client, error) {
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = defaultMaxConcurrent
	}

	session, err := network.NewSession(network.SessionOptions{
		Proxies:           opts.Proxies,
		Timeout:           opts.Timeout,
		RequestsPerSecond: opts.RequestsPerSecond,
		Transport:         opts.Transport,
		Logger:            opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		session: session,
		sem:     semaphore.NewWeighted(opts.MaxConcurrentRequests),
		logger:  opts.Logger,
	}, nil
}

// Close releases the underlying transport resources.
func (c *Client) Close() {
	c.session.Close()
}

// FetchJobs returns up to limit listings matching filter, starting at
// offset. Pages are fetched concurrently; the result keeps the
// endpoint's offset order regardless of completion order. A limit of
// zero returns no listings. Any failing page fails the whole call.
func (c *Client) FetchJobs(ctx context.Context, filter models.Filter, offset, limit int) ([]models.Job, error) {
	if offset < 0 || limit < 0 {
		return nil, ErrNegativeRange
	}
	if offset+limit > QueryLimit {
		return nil, ErrQueryLimit
	}

	pages := (limit + PageSize - 1) / PageSize
	c.logger.Debug().
		Int("offset", offset).
		Int("limit", limit).
		Int("pages", pages).
		Msg("fetching job listings")

	results := make([][]models.Job, pages)
	g, ctx := errgroup.WithContext(ctx)
	for page := 0; page < pages; page++ {
		g.Go(func() error {
			jobs, err := c.fetchJobsPage(ctx, filter, offset+page*PageSize)
			if err != nil {
				return err
			}
			results[page] = jobs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var jobs []models.Job
	for _, page := range results {
		jobs = append(jobs, page...)
	}
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// FetchAllJobs fetches every result from offset up to the query limit.
func (c *Client) FetchAllJobs(ctx context.Context, filter models.Filter, offset int) ([]models.Job, error) {
	if offset < 0 {
		return nil, ErrNegativeRange
	}
	return c.FetchJobs(ctx, filter, offset, QueryLimit-offset)
}

// FetchJobDetails returns the full posting behind one job ID.
func (c *Client) FetchJobDetails(ctx context.Context, id string) (models.JobDetails, error) {
	body, err := c.get(ctx, detailURL+id, nil)
	if err != nil {
		return models.JobDetails{}, err
	}
	return ParseJobDetails(string(body))
}

// FetchJobsDetails fetches every ID concurrently and returns details in
// the same order as ids. A single failing ID fails the whole batch.
func (c *Client) FetchJobsDetails(ctx context.Context, ids []string) ([]models.JobDetails, error) {
	results := make([]models.JobDetails, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			details, err := c.FetchJobDetails(ctx, id)
			if err != nil {
				return fmt.Errorf("job %s: %w", id, err)
			}
			results[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) fetchJobsPage(ctx context.Context, filter models.Filter, offset int) ([]models.Job, error) {
	params := filter.Params()
	params.Set("start", strconv.Itoa(offset))

	body, err := c.get(ctx, searchURL, params)
	if err != nil {
		return nil, err
	}
	return ParseJobs(string(body))
}

// get holds a slot of the concurrency ceiling for the duration of the
// transport call only; parsing happens after the slot is released.
func (c *Client) get(ctx context.Context, target string, params url.Values) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)
	return c.session.Get(ctx, target, params, nil)
}
