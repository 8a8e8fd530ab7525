package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/apexinsight/apexinsight/internal/config"
	"github.com/apexinsight/apexinsight/scanner"
	"github.com/apexinsight/apexinsight/scanner/finding"
	"github.com/apexinsight/apexinsight/scanner/report"
	"github.com/apexinsight/apexinsight/scanner/runtime"
)

type scanOptions struct {
	configPath  string
	format      string
	className   string
	orgURL      string
	accessToken string
	orgID       string
	userID      string
	verbose     bool
}

// orgConnection is the CLI-provided authenticated connection.
type orgConnection struct {
	baseURL     string
	accessToken string
}

func (c orgConnection) BaseURL() string     { return c.baseURL }
func (c orgConnection) AccessToken() string { return c.accessToken }

func newScanCmd() *cobra.Command {
	options := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <file.cls>",
		Short: "Scan one Apex class file for performance antipatterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args[0], options)
		},
	}

	cmd.Flags().StringVar(&options.configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&options.format, "format", "json", "output format: json or sarif")
	cmd.Flags().StringVar(&options.className, "class-name", "", "class name (defaults to the file base name)")
	cmd.Flags().StringVar(&options.orgURL, "org-url", "", "org base URL for runtime telemetry")
	cmd.Flags().StringVar(&options.accessToken, "access-token", "", "access token for runtime telemetry")
	cmd.Flags().StringVar(&options.orgID, "org-id", "", "org identifier for telemetry requests")
	cmd.Flags().StringVar(&options.userID, "user-id", "", "user identifier for telemetry requests")
	cmd.Flags().BoolVar(&options.verbose, "verbose", false, "enable debug logging")

	return cmd
}

func runScan(ctx context.Context, path string, options *scanOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(options.verbose)

	cfg := config.Default()
	if options.configPath != "" {
		loaded, err := config.Load(options.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	fs := afs.New()
	source, err := fs.DownloadWithURL(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	className := options.className
	if className == "" {
		className = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	registry := scanner.NewDefaultRegistry(scanner.Thresholds{
		MethodTimeMs: cfg.Thresholds.MethodTimeMs,
		QueryCostMs:  cfg.Thresholds.QueryCostMs,
	}, scanner.WithLogger(logger))

	var result *finding.ScanResult
	if options.orgURL != "" && options.accessToken != "" {
		service := runtime.NewService(
			runtime.WithLogger(logger),
			runtime.WithEndpointPath(cfg.Telemetry.EndpointPath),
			runtime.WithTimeout(cfg.Telemetry.Timeout()),
			runtime.WithRetryCount(cfg.Telemetry.RetryCount),
		)
		conn := orgConnection{baseURL: options.orgURL, accessToken: options.accessToken}
		scanResult, status := registry.ScanWithTelemetry(ctx, service, conn,
			options.orgID, options.userID, className, source)
		if status == runtime.StatusAccessDenied {
			fmt.Fprintln(os.Stderr, "Note: runtime telemetry is not provisioned for this org; severities are static.")
		}
		result = scanResult
	} else {
		result = registry.Scan(ctx, className, source, nil)
	}

	switch options.format {
	case "sarif":
		return report.WriteSarif(os.Stdout, result, path)
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	default:
		return fmt.Errorf("unknown output format: %q", options.format)
	}
}

func newLogger(verbose bool) hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "apexinsight",
		Level:  level,
		Output: os.Stderr,
	})
}
