package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jimezsa/linkedinjobs/internal/config"
	"github.com/jimezsa/linkedinjobs/internal/export"
	"github.com/jimezsa/linkedinjobs/internal/network"
)

const proxyCheckURL = "https://www.linkedin.com/robots.txt"

type ProxiesCmd struct {
	Check ProxiesCheckCmd `cmd:"" help:"Probe each configured proxy and report reachability."`
	List  ProxiesListCmd  `cmd:"" help:"Print the resolved proxy list."`
}

type ProxiesCheckCmd struct {
	Proxies string `help:"Comma-separated proxy URLs." env:"LINKEDINJOBS_PROXIES"`
	Timeout int    `help:"Probe timeout in seconds." default:"10"`
}

type ProxiesListCmd struct {
	Proxies string `help:"Comma-separated proxy URLs." env:"LINKEDINJOBS_PROXIES"`
}

type proxyCheckResult struct {
	Proxy   string `json:"proxy"`
	OK      bool   `json:"ok"`
	Status  int    `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

func (c *ProxiesCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(c.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	results := make([]proxyCheckResult, len(proxies))
	g, gctx := errgroup.WithContext(context.Background())
	for i, proxy := range proxies {
		g.Go(func() error {
			results[i] = checkProxy(gctx, proxy, time.Duration(c.Timeout)*time.Second)
			return nil
		})
	}
	_ = g.Wait()

	format, err := resolveFormat(ctx, "", "")
	if err != nil {
		return err
	}
	if format == export.FormatJSON {
		return writeJSONResults(ctx, results)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tok\tstatus\tlatency\terror")
	for _, result := range results {
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\t%s\n",
			result.Proxy, result.OK, result.Status, result.Latency, result.Error)
	}
	return tw.Flush()
}

// checkProxy probes one proxy with a single attempt, no retries.
func checkProxy(ctx context.Context, proxy string, timeout time.Duration) proxyCheckResult {
	result := proxyCheckResult{Proxy: proxy}

	session, err := network.NewSession(network.SessionOptions{
		Proxies:    []string{proxy},
		Timeout:    timeout,
		RetryCount: -1,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer session.Close()

	start := time.Now()
	_, err = session.Get(ctx, proxyCheckURL, nil, nil)
	result.Latency = time.Since(start).Round(time.Millisecond).String()

	if err != nil {
		var reqErr *network.RequestError
		if errors.As(err, &reqErr) {
			result.Status = reqErr.Status
		}
		result.Error = err.Error()
		return result
	}

	result.OK = true
	result.Status = 200
	return result
}

func writeJSONResults(ctx *Context, results []proxyCheckResult) error {
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func (c *ProxiesListCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(c.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		ctx.UI.Warnf("No proxies configured")
		return nil
	}
	_, err = fmt.Fprintln(ctx.Out, strings.Join(proxies, "\n"))
	return err
}
