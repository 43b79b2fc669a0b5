package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/linkedinjobs/internal/models"
	"github.com/jimezsa/linkedinjobs/internal/ui"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
}

// DetailRecord pairs a job ID with the details fetched for it.
type DetailRecord struct {
	ID string `json:"id"`
	models.JobDetails
}

func WriteJobs(w io.Writer, jobs []models.Job, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, jobs)
	case FormatCSV:
		return writeJobsCSV(w, jobs, ',')
	case FormatTSV:
		return writeJobsCSV(w, jobs, '\t')
	case FormatMarkdown:
		return writeJobsMarkdown(w, jobs)
	default:
		return writeJobsTable(w, jobs, opts)
	}
}

func WriteDetails(w io.Writer, records []DetailRecord, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatCSV:
		return writeDetailsCSV(w, records, ',')
	case FormatTSV:
		return writeDetailsCSV(w, records, '\t')
	case FormatMarkdown:
		return writeDetailsMarkdown(w, records)
	default:
		return writeDetailsTable(w, records)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeJobsCSV(w io.Writer, jobs []models.Job, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(jobsHeader()); err != nil {
		return err
	}
	for _, job := range jobs {
		if err := writer.Write(jobRow(job)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJobsTable(w io.Writer, jobs []models.Job, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(jobsHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, job := range jobs {
		row := jobRow(job)
		link := ui.ColorizeLink(output, opts.ColorEnabled, job.URL)
		row[len(row)-1] = link
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJobsMarkdown(w io.Writer, jobs []models.Job) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, job := range jobs {
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(job.Title), safe(job.Company)),
			fmt.Sprintf("  Location: %s", safe(job.Location)),
			fmt.Sprintf("  URL: [Open listing](<%s>)", safe(job.URL)),
		}
		if !job.PostedAt.IsZero() {
			lines = append(lines, fmt.Sprintf("  Posted: %s", job.PostedAt.Format(time.DateOnly)))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func jobsHeader() []string {
	return []string{"id", "title", "company", "location", "posted_at", "url"}
}

func jobRow(job models.Job) []string {
	id, err := job.ID()
	if err != nil {
		id = ""
	}
	posted := ""
	if !job.PostedAt.IsZero() {
		posted = job.PostedAt.Format(time.DateOnly)
	}
	return []string{
		id,
		safe(job.Title),
		safe(job.Company),
		safe(job.Location),
		posted,
		safe(job.URL),
	}
}

func writeDetailsCSV(w io.Writer, records []DetailRecord, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(detailsHeader()); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(detailRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeDetailsTable(w io.Writer, records []DetailRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(detailsHeader(), "\t"))
	for _, record := range records {
		fmt.Fprintln(tw, strings.Join(detailRow(record), "\t"))
	}
	return tw.Flush()
}

func writeDetailsMarkdown(w io.Writer, records []DetailRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, record := range records {
		lines := []string{
			fmt.Sprintf("## Job %s", safe(record.ID)),
			fmt.Sprintf("- Employment type: %s", record.EmploymentType),
			fmt.Sprintf("- Applicants: %d", record.ApplicantCount),
		}
		if record.ExperienceLevel != 0 {
			lines = append(lines, fmt.Sprintf("- Experience level: %s", record.ExperienceLevel))
		}
		lines = append(lines, "", record.Description, "")
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func detailsHeader() []string {
	return []string{"id", "employment_type", "experience_level", "applicants", "description"}
}

func detailRow(record DetailRecord) []string {
	return []string{
		safe(record.ID),
		record.EmploymentType.String(),
		record.ExperienceLevel.String(),
		strconv.Itoa(record.ApplicantCount),
		safe(record.Description),
	}
}

func safe(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "\n", " ")
}
