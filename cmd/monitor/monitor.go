// Package monitor is a subcommand of the root command. It samples hardware
// performance counters for a set of processes over fixed observation windows
// and reports one aggregated value per event.
package monitor

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"pgos/internal/common"
	"pgos/internal/session"
	"pgos/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const cmdName = "monitor"

var examples = []string{
	fmt.Sprintf("  Count default events for one process:     $ %s %s --pids 1234", common.AppName, cmdName),
	fmt.Sprintf("  Two processes, 4 CPUs, 5 second window:   $ %s %s --pids 1234,5678 --cpus 4 --period 5", common.AppName, cmdName),
	fmt.Sprintf("  Cache behavior metrics in CSV format:     $ %s %s --pids 1234 --events cache_references,cache_misses --format csv", common.AppName, cmdName),
	fmt.Sprintf("  Run until interrupted, raw counts:        $ %s %s --pids 1234 --cycles 0 --noscale", common.AppName, cmdName),
	fmt.Sprintf("  Write an xlsx summary of the whole run:   $ %s %s --pids 1234 --cycles 10 --xlsx", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Monitor hardware counter events for a set of processes",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	SilenceErrors: true,
}

var (
	// collection options
	flagPidList   []string
	flagCPUs      int
	flagEventList []string
	flagPeriod    int
	flagCycles    int
	flagNoScale   bool
	// output format options
	flagOutputFormat string
	flagNoDerived    bool
	flagXlsx         bool
	flagPrometheus   string
)

const (
	flagPidListName   = "pids"
	flagCPUsName      = "cpus"
	flagEventListName = "events"
	flagPeriodName    = "period"
	flagCyclesName    = "cycles"
	flagNoScaleName   = "noscale"

	flagOutputFormatName = "format"
	flagNoDerivedName    = "noderived"
	flagXlsxName         = "xlsx"
	flagPrometheusName   = "prometheus"
)

const (
	formatTxt  = "txt"
	formatCSV  = "csv"
	formatJSON = "json"
)

var formatOptions = []string{formatTxt, formatCSV, formatJSON}

var defaultEvents = []string{"instructions", "cycles", "cache_misses"}

func init() {
	Cmd.Flags().StringSliceVar(&flagPidList, flagPidListName, []string{}, "")
	Cmd.Flags().IntVar(&flagCPUs, flagCPUsName, runtime.NumCPU(), "")
	Cmd.Flags().StringSliceVar(&flagEventList, flagEventListName, defaultEvents, "")
	Cmd.Flags().IntVar(&flagPeriod, flagPeriodName, 1, "")
	Cmd.Flags().IntVar(&flagCycles, flagCyclesName, 1, "")
	Cmd.Flags().BoolVar(&flagNoScale, flagNoScaleName, false, "")

	Cmd.Flags().StringVar(&flagOutputFormat, flagOutputFormatName, "", "")
	Cmd.Flags().BoolVar(&flagNoDerived, flagNoDerivedName, false, "")
	Cmd.Flags().BoolVar(&flagXlsx, flagXlsxName, false, "")
	Cmd.Flags().StringVar(&flagPrometheus, flagPrometheusName, "", "")

	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if cmd.Parent().PersistentFlags().Lookup(pf.Name).DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	// collection options
	flags := []common.Flag{
		{
			Name: flagPidListName,
			Help: "comma separated list of process ids to monitor (required)",
		},
		{
			Name: flagCPUsName,
			Help: "number of CPUs to monitor, i.e., cpu indices [0, cpus)",
		},
		{
			Name: flagEventListName,
			Help: "comma separated list of hardware events to count",
		},
		{
			Name: flagPeriodName,
			Help: "observation window length in seconds",
		},
		{
			Name: flagCyclesName,
			Help: "number of collection cycles to run. If 0, runs until interrupted.",
		},
		{
			Name: flagNoScaleName,
			Help: "report raw counts without correcting for counter multiplexing",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Collection Options",
		Flags:     flags,
	})
	// output options
	flags = []common.Flag{
		{
			Name: flagOutputFormatName,
			Help: fmt.Sprintf("output format, options: %s. Defaults to %s on a terminal, %s otherwise.", strings.Join(formatOptions, ", "), formatTxt, formatCSV),
		},
		{
			Name: flagNoDerivedName,
			Help: "do not compute derived metrics, e.g., ipc, from the event counts",
		},
		{
			Name: flagXlsxName,
			Help: fmt.Sprintf("write an xlsx summary of all cycles to %s in the output directory", summaryFileName),
		},
		{
			Name: flagPrometheusName,
			Help: "address to serve Prometheus metrics on, e.g., :2112. Disabled when empty.",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if len(flagPidList) == 0 {
		err := fmt.Errorf("at least one pid is required, use --%s", flagPidListName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if _, err := parsePidList(flagPidList); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagCPUs < 1 {
		err := fmt.Errorf("invalid cpu count: %d", flagCPUs)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if _, err := resolveEvents(flagEventList); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagPeriod < 1 {
		err := fmt.Errorf("invalid period: %d, must be at least 1 second", flagPeriod)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagCycles < 0 {
		err := fmt.Errorf("invalid cycle count: %d", flagCycles)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagOutputFormat == "" {
		if stdoutIsTerminal() {
			flagOutputFormat = formatTxt
		} else {
			flagOutputFormat = formatCSV
		}
	}
	if !slices.Contains(formatOptions, flagOutputFormat) {
		err := fmt.Errorf("invalid output format: %s, options: %s", flagOutputFormat, strings.Join(formatOptions, ", "))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// parsePidList converts the pid flag values to integers, dropping duplicates
// so no process is counted twice in an aggregate.
func parsePidList(pidStrings []string) ([]int, error) {
	var pids []int
	for _, pidString := range pidStrings {
		pid, err := strconv.Atoi(pidString)
		if err != nil || pid < 1 {
			return nil, fmt.Errorf("invalid pid: %s", pidString)
		}
		pids = util.UniqueAppend(pids, pid)
	}
	return pids, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	pids, err := parsePidList(flagPidList)
	if err != nil {
		return err
	}
	specs, err := resolveEvents(flagEventList)
	if err != nil {
		return err
	}
	var metricDefs []MetricDefinition
	if !flagNoDerived {
		metricDefs, err = configureMetrics(flagEventList)
		if err != nil {
			return err
		}
	}
	var options []session.Option
	if flagNoScale {
		options = append(options, session.WithoutScaling())
	}
	collector := session.New(session.NewPerfBackend(), options...)

	if flagPrometheus != "" {
		startPrometheusServer(flagPrometheus)
	}

	// stop between cycles on SIGINT/SIGTERM; a window that is already armed
	// always runs to completion
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChannel)

	slog.Info("Starting collection", slog.String("pids", strings.Join(flagPidList, ",")),
		slog.Int("cpus", flagCPUs), slog.String("events", strings.Join(flagEventList, ",")),
		slog.Int("period", flagPeriod), slog.Int("cycles", flagCycles))

	period := time.Duration(flagPeriod) * time.Second
	startTime := time.Now()
	var frames []ResultFrame
collection:
	for cycle := 1; flagCycles == 0 || cycle <= flagCycles; cycle++ {
		values, err := collector.Run(pids, flagCPUs, specs, period)
		if err != nil {
			err = fmt.Errorf("collection failed: %w", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		frame := ResultFrame{
			Cycle:     cycle,
			Timestamp: time.Since(startTime).Seconds(),
			Period:    float64(flagPeriod),
			PIDs:      strings.Join(flagPidList, ","),
			Events:    make([]EventCount, 0, len(values)),
		}
		for i, value := range values {
			frame.Events = append(frame.Events, EventCount{Name: flagEventList[i], Value: value})
		}
		frame.Metrics = computeMetrics(metricDefs, frame)
		if err := printFrame(frame, flagOutputFormat); err != nil {
			return err
		}
		if flagPrometheus != "" {
			updatePrometheusMetrics(frame)
		}
		frames = append(frames, frame)
		select {
		case sig := <-sigChannel:
			slog.Info("received signal, stopping collection", slog.String("signal", sig.String()))
			break collection
		default:
		}
	}

	if flagXlsx {
		summaryPath := filepath.Join(appContext.OutputDir, summaryFileName)
		if err := writeSummary(summaryPath, frames); err != nil {
			err = fmt.Errorf("failed to write summary: %w", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		fmt.Fprintf(os.Stderr, "Summary written to %s\n", summaryPath)
	}
	return nil
}
