package cmd

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vplat/datarecording"
	"github.com/sarchlab/vplat/monitoring"
	"github.com/sarchlab/vplat/platform"
	"github.com/sarchlab/vplat/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a platform until all the traffic generators finish.",
	Long: "`run` builds the platform, runs it, and reports what every " +
		"traffic generator did. Transactions can be traced into SQLite " +
		"or ClickHouse, and the simulation can be watched over HTTP.",
	Args: cobra.NoArgs,
	RunE: runPlatform,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("monitor", false, "serve the monitoring API")
	runCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring API; defaults to $"+EnvMonitorPort)
	runCmd.Flags().Bool("open", false, "open the monitor in a browser")
	runCmd.Flags().String("trace-db", "",
		"trace transactions into this SQLite file; defaults to $"+EnvTraceDB)
	runCmd.Flags().String("clickhouse", "",
		"trace transactions into ClickHouse at host:port; defaults to $"+
			EnvClickHouse)
	runCmd.Flags().String("clickhouse-db", "default",
		"ClickHouse database")
	runCmd.Flags().String("clickhouse-user", "default", "ClickHouse user")
}

func runPlatform(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPlatformConfig(cmd)
	if err != nil {
		return err
	}

	p, err := platform.Build(cfg, nil)
	if err != nil {
		return err
	}
	defer p.Teardown()

	if err := attachRecorder(cmd, p); err != nil {
		return err
	}

	if err := attachMonitor(cmd, p); err != nil {
		return err
	}

	total := tracing.NewTotalTimeTracer(nil)
	p.CollectTrace(total)

	if err := p.Run(); err != nil {
		return err
	}

	return report(cmd, p, total)
}

func attachRecorder(cmd *cobra.Command, p *platform.Platform) error {
	recorder, err := openRecorder(cmd)
	if err != nil || recorder == nil {
		return err
	}

	tracer := tracing.NewDBTracer(recorder)
	p.CollectTrace(tracer)
	p.OnTeardown(func() {
		tracer.Terminate()

		if err := recorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing trace database: %v\n", err)
		}
	})

	return nil
}

func openRecorder(cmd *cobra.Command) (datarecording.DataRecorder, error) {
	if addr := stringFlagOrEnv(cmd, "clickhouse", EnvClickHouse); addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("ClickHouse address: %w", err)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("ClickHouse port: %w", err)
		}

		database, _ := cmd.Flags().GetString("clickhouse-db")
		user, _ := cmd.Flags().GetString("clickhouse-user")

		w, err := datarecording.NewClickHouseWriter(
			datarecording.ClickHouseOptions{
				Host:     host,
				Port:     port,
				Database: database,
				Username: user,
				Password: os.Getenv("VPLAT_CLICKHOUSE_PASSWORD"),
			})
		if err != nil {
			return nil, err
		}

		return w, nil
	}

	if path := stringFlagOrEnv(cmd, "trace-db", EnvTraceDB); path != "" {
		w, err := datarecording.NewSQLiteWriter(path)
		if err != nil {
			return nil, err
		}

		return w, nil
	}

	return nil, nil
}

func attachMonitor(cmd *cobra.Command, p *platform.Platform) error {
	enabled, _ := cmd.Flags().GetBool("monitor")
	if !enabled {
		return nil
	}

	port, err := intFlagOrEnv(cmd, "monitor-port", EnvMonitorPort)
	if err != nil {
		return err
	}

	m := monitoring.NewMonitor().WithPortNumber(port)
	m.RegisterEngine(p.Engine())

	for _, c := range p.Components() {
		m.RegisterComponent(c)
	}

	url := m.StartServer()
	p.OnTeardown(func() {
		_ = m.StopServer()
	})

	if open, _ := cmd.Flags().GetBool("open"); open {
		if err := browser.OpenURL(url + "/api/list_components"); err != nil {
			fmt.Fprintf(os.Stderr, "opening browser: %v\n", err)
		}
	}

	return nil
}

func report(
	cmd *cobra.Command,
	p *platform.Platform,
	total *tracing.TotalTimeTracer,
) error {
	w := cmd.OutOrStdout()
	mismatches := uint64(0)

	for _, g := range p.Generators() {
		s := g.Stats()
		mismatches += s.Mismatches

		fmt.Fprintf(w,
			"%s: %d reads, %d writes, %d bytes, %d errors, %d mismatches, "+
				"finished at %.3gs, %d DMI hits\n",
			g.Name(), s.Reads, s.Writes, s.Bytes, s.Errors, s.Mismatches,
			s.FinishedAt, g.Initiator().NumDMIHits())
	}

	fmt.Fprintf(w, "%d transactions at targets, %.3gs on average\n",
		total.Count(), total.AverageTime())

	if mismatches > 0 {
		return fmt.Errorf("%d reads returned unexpected data", mismatches)
	}

	return nil
}
