package cmd

import (
	"fmt"

	"github.com/jimezsa/linkedinjobs/internal/export"
	"github.com/jimezsa/linkedinjobs/internal/seen"
)

type SeenCmd struct {
	Diff   SeenDiffCmd   `cmd:"" help:"Print jobs from NEW that are not in SEEN."`
	Update SeenUpdateCmd `cmd:"" help:"Merge jobs from NEW into SEEN."`
}

type SeenDiffCmd struct {
	New    string `arg:"" help:"Path to new jobs JSON file."`
	SeenDB string `arg:"" name:"seen" help:"Path to seen jobs JSON file."`

	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Stats  bool   `help:"Print comparison stats to stderr."`
}

type SeenUpdateCmd struct {
	New    string `arg:"" help:"Path to new jobs JSON file."`
	SeenDB string `arg:"" name:"seen" help:"Path to seen jobs JSON file."`

	Stats bool `help:"Print merge stats to stderr."`
}

func (c *SeenDiffCmd) Run(ctx *Context) error {
	newJobs, err := seen.ReadJobs(c.New)
	if err != nil {
		return fmt.Errorf("read new jobs: %w", err)
	}
	seenJobs, err := seen.ReadJobsAllowMissing(c.SeenDB)
	if err != nil {
		return fmt.Errorf("read seen jobs: %w", err)
	}

	unseen, stats := seen.Diff(newJobs, seenJobs)

	format, err := resolveFormat(ctx, c.Format, "")
	if err != nil {
		return err
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	if err := export.WriteJobs(ctx.Out, unseen, format, export.WriteOptions{ColorEnabled: colorEnabled}); err != nil {
		return err
	}

	if c.Stats {
		fmt.Fprintf(ctx.Err, "stats: new=%d seen=%d unseen=%d invalid=%d\n",
			stats.TotalNew, stats.TotalSeen, stats.Unseen, stats.InvalidSkipped())
	}
	return nil
}

func (c *SeenUpdateCmd) Run(ctx *Context) error {
	newJobs, err := seen.ReadJobs(c.New)
	if err != nil {
		return fmt.Errorf("read new jobs: %w", err)
	}
	seenJobs, err := seen.ReadJobsAllowMissing(c.SeenDB)
	if err != nil {
		return fmt.Errorf("read seen jobs: %w", err)
	}

	merged, stats := seen.Merge(seenJobs, newJobs)
	if err := seen.WriteJobs(c.SeenDB, merged); err != nil {
		return fmt.Errorf("write seen jobs: %w", err)
	}

	if c.Stats {
		fmt.Fprintf(ctx.Err, "stats: input=%d seen=%d added=%d total=%d invalid=%d\n",
			stats.TotalInput, stats.TotalSeen, stats.Added, stats.TotalOut, stats.InvalidSkipped())
	}
	ctx.UI.Successf("Added %d new jobs to %s", stats.Added, c.SeenDB)
	return nil
}
