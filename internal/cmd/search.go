package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/linkedinjobs/internal/config"
	"github.com/jimezsa/linkedinjobs/internal/export"
	"github.com/jimezsa/linkedinjobs/internal/linkedin"
	"github.com/jimezsa/linkedinjobs/internal/models"
	"github.com/jimezsa/linkedinjobs/internal/seen"
	"github.com/muesli/termenv"
)

type SearchCmd struct {
	Query string `arg:"" optional:"" help:"Job title or keywords."`
	OutputOptions

	Location      string   `help:"Job location." env:"LINKEDINJOBS_LOCATION"`
	Limit         int      `help:"Maximum results." env:"LINKEDINJOBS_LIMIT"`
	Offset        int      `help:"Offset into the result set."`
	All           bool     `help:"Fetch everything from the offset up to the 1000-result ceiling."`
	JobType       []string `help:"Employment types: fulltime, parttime, contract, temporary, internship, other."`
	Experience    []string `help:"Experience levels: internship, entry, associate, mid-senior, director, executive."`
	WorkMode      []string `help:"Work modes: onsite, remote, hybrid."`
	FewApplicants bool     `help:"Only jobs with few applicants."`
	MaxAgeHours   int      `help:"Jobs posted in the last N hours."`

	Seen       string `help:"Path to seen jobs JSON file."`
	NewOnly    bool   `help:"Output only unseen jobs (requires --seen)."`
	SeenUpdate bool   `help:"Merge new jobs into --seen after the search completes (requires --seen)."`
}

// OutputOptions are shared by the search and details commands.
type OutputOptions struct {
	Format  string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Output  string `name:"output" short:"o" help:"Write output to a file."`
	Proxies string `help:"Comma-separated proxy URLs." env:"LINKEDINJOBS_PROXIES"`
}

func (s *SearchCmd) Run(ctx *Context) error {
	if s.NewOnly && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if s.SeenUpdate && strings.TrimSpace(s.Seen) == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}
	if pathsEqual(s.Output, s.Seen) {
		return fmt.Errorf("--output path must differ from --seen")
	}

	filter, err := buildFilter(s, ctx.Config)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, s.Proxies)
	if err != nil {
		return err
	}
	defer client.Close()

	var jobs []models.Job
	if s.All {
		jobs, err = client.FetchAllJobs(context.Background(), filter, s.Offset)
	} else {
		limit := defaultInt(s.Limit, ctx.Config.DefaultLimit)
		jobs, err = client.FetchJobs(context.Background(), filter, s.Offset, limit)
	}
	if err != nil {
		return err
	}

	var unseenJobs []models.Job
	if strings.TrimSpace(s.Seen) != "" {
		seenJobs, err := seen.ReadJobsAllowMissing(s.Seen)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseenJobs, _ = seen.Diff(jobs, seenJobs)
	}

	outputJobs := jobs
	if s.NewOnly {
		outputJobs = unseenJobs
	}

	format, err := resolveFormat(ctx, s.Format, s.Output)
	if err != nil {
		return err
	}

	writer, closeWriter, err := openOutput(ctx, s.Output)
	if err != nil {
		return err
	}
	defer closeWriter()

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && s.Output == ""
	if err := export.WriteJobs(writer, outputJobs, format, export.WriteOptions{ColorEnabled: colorEnabled}); err != nil {
		return err
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(s.Seen, unseenJobs); err != nil {
			return err
		}
	}

	printSearchSummary(ctx, jobs, unseenJobs, strings.TrimSpace(s.Seen) != "")
	return nil
}

func buildFilter(s *SearchCmd, cfg config.Config) (models.Filter, error) {
	filter := models.Filter{
		Title:         strings.TrimSpace(s.Query),
		Location:      firstNonEmpty(s.Location, cfg.DefaultLocation),
		FewApplicants: s.FewApplicants,
	}

	for _, value := range splitMulti(s.JobType) {
		et, err := models.ParseEmploymentType(value)
		if err != nil {
			return models.Filter{}, err
		}
		filter.EmploymentTypes = append(filter.EmploymentTypes, et)
	}
	for _, value := range splitMulti(s.Experience) {
		level, err := models.ParseExperienceLevel(value)
		if err != nil {
			return models.Filter{}, err
		}
		filter.ExperienceLevels = append(filter.ExperienceLevels, level)
	}
	for _, value := range splitMulti(s.WorkMode) {
		mode, err := models.ParseWorkMode(value)
		if err != nil {
			return models.Filter{}, err
		}
		filter.WorkModes = append(filter.WorkModes, mode)
	}

	if s.MaxAgeHours > 0 {
		filter.MaxAge = time.Duration(s.MaxAgeHours) * time.Hour
	}

	return filter, nil
}

// splitMulti accepts both repeated flags and comma-separated values.
func splitMulti(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func newClient(ctx *Context, proxiesFlag string) (*linkedin.Client, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}

	return linkedin.New(linkedin.Options{
		Timeout:               time.Duration(ctx.Config.TimeoutSeconds) * time.Second,
		Proxies:               proxies,
		MaxConcurrentRequests: int64(ctx.Config.MaxConcurrentRequests),
		RequestsPerSecond:     ctx.Config.RequestsPerSecond,
		Logger:                ctx.Logger,
	})
}

func updateSeenHistory(seenPath string, unseenJobs []models.Job) error {
	seenJobs, err := seen.ReadJobsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	mergedJobs, _ := seen.Merge(seenJobs, unseenJobs)
	if err := seen.WriteJobs(seenPath, mergedJobs); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}
	return nil
}

func printSearchSummary(ctx *Context, jobs []models.Job, unseenJobs []models.Job, haveSeen bool) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	if haveSeen {
		fmt.Fprintf(ctx.Err, "summary: jobs=%d new=%d\n", len(jobs), len(unseenJobs))
		return
	}
	fmt.Fprintf(ctx.Err, "summary: jobs=%d\n", len(jobs))
}

func resolveFormat(ctx *Context, flagValue string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if flagValue != "" {
		return parseFormat(flagValue)
	}
	if outputPath != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func openOutput(ctx *Context, path string) (io.Writer, func(), error) {
	if path == "" {
		return ctx.Out, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
