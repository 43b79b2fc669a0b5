package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/linkedinjobs/internal/export"
	"github.com/jimezsa/linkedinjobs/internal/models"
)

type DetailsCmd struct {
	Jobs []string `arg:"" help:"Job IDs or listing URLs."`
	OutputOptions
}

func (d *DetailsCmd) Run(ctx *Context) error {
	ids, err := resolveJobIDs(d.Jobs)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, d.Proxies)
	if err != nil {
		return err
	}
	defer client.Close()

	details, err := client.FetchJobsDetails(context.Background(), ids)
	if err != nil {
		return err
	}

	records := make([]export.DetailRecord, len(details))
	for i, detail := range details {
		records[i] = export.DetailRecord{ID: ids[i], JobDetails: detail}
	}

	format, err := resolveFormat(ctx, d.Format, d.Output)
	if err != nil {
		return err
	}

	writer, closeWriter, err := openOutput(ctx, d.Output)
	if err != nil {
		return err
	}
	defer closeWriter()

	return export.WriteDetails(writer, records, format, export.WriteOptions{})
}

// resolveJobIDs accepts raw numeric IDs and listing URLs interchangeably.
func resolveJobIDs(args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		id, err := (models.Job{URL: arg}).ID()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one job ID or URL is required")
	}
	return ids, nil
}
