package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"libris/internal/api"
	"libris/internal/daemon"
	"libris/internal/daemonrun"
	"libris/internal/preflight"
)

type checkReport struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type statusReport struct {
	Daemon struct {
		Running  bool   `json:"running"`
		PID      int    `json:"pid,omitempty"`
		LockPath string `json:"lock_path"`
		Bind     string `json:"bind"`
	} `json:"daemon"`
	ConfigPath string             `json:"config_path"`
	Checks     []checkReport      `json:"checks"`
	Stats      api.Stats          `json:"stats"`
	Health     api.DatabaseHealth `json:"health"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, database, and catalogue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var report statusReport
			report.ConfigPath = ctx.configPath
			report.Daemon.Bind = cfg.Paths.APIBind

			probe, err := daemon.Probe(cfg)
			if err != nil {
				return err
			}
			report.Daemon.Running = probe.Running
			report.Daemon.LockPath = probe.LockPath
			if probe.Running {
				report.Daemon.PID = daemonrun.ReadPID(cfg)
			}

			for _, result := range preflight.RunAll(cfg) {
				report.Checks = append(report.Checks, checkReport(result))
			}

			err = ctx.withService(func(svc *api.LibraryService) error {
				health, healthErr := svc.Health(cmd.Context())
				report.Health = health
				if healthErr != nil {
					return healthErr
				}
				stats, statsErr := svc.Stats(cmd.Context())
				report.Stats = stats
				return statsErr
			})
			if err != nil && report.Health.Error == "" {
				report.Health.Error = err.Error()
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			renderStatus(cmd, report)
			return nil
		},
	}
}

func renderStatus(cmd *cobra.Command, report statusReport) {
	r := newRenderer(cmd.OutOrStdout())

	daemonKind, daemonDetail := statusWarn, "Not running"
	if report.Daemon.Running {
		daemonKind, daemonDetail = statusOK, "Running"
		if report.Daemon.PID > 0 {
			daemonDetail = fmt.Sprintf("Running (pid %d)", report.Daemon.PID)
		}
	}
	system := []string{
		r.statusLine("Daemon", daemonKind, daemonDetail),
		r.statusLine("API bind", statusInfo, report.Daemon.Bind),
		r.statusLine("Config", statusInfo, report.ConfigPath),
	}
	for _, check := range report.Checks {
		system = append(system, r.statusLine(check.Name, passFail(check.Passed), check.Detail))
	}
	r.section("System Status", system)
	r.section("Database", r.health(report.Health))

	s := report.Stats
	r.section("Catalogue", []string{
		r.statusLine("Books", statusInfo, strconv.Itoa(s.Books)),
		r.statusLine("Copies on shelf", statusInfo, strconv.Itoa(s.CopiesOnShelf)),
		r.statusLine("Users", statusInfo, strconv.Itoa(s.Users)),
		r.statusLine("Loans", statusInfo, strconv.Itoa(s.Loans)),
		r.statusLine("Active loans", statusInfo, strconv.Itoa(s.ActiveLoans)),
	})
}
