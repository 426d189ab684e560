package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// checkCSVHeader is the header of the flattened violation rows.
var checkCSVHeader = []string{"project", "plugin", "dependency"}

// writeCheckTable generates and writes the human-readable verdict and violation table.
func writeCheckTable(w io.Writer, result *schema.CheckResult, cfg *contract.Config) error {
	verdict := contract.GetPlainVerdict(result.Passed)
	if cfg.UseColors {
		verdict = contract.GetColorVerdict(result.Passed)
	}
	title := "Snapshot plugin dependency check"
	if cfg.UseEmojis {
		if result.Passed {
			title = "✅ " + title
		} else {
			title = "🚫 " + title
		}
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", title, verdict); err != nil {
		return err
	}

	rows := result.Rows()
	if len(rows) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "Project", "Plugin", "Dependency"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})

		var info, warn func(...any) string
		if cfg.UseColors {
			info = contract.InfoColor.SprintFunc()
			warn = color.New(color.FgYellow).SprintFunc()
		} else {
			info = fmt.Sprint
			warn = fmt.Sprint
		}

		maxWidth := getMaxIdentityWidth(cfg)
		var data [][]string
		for i, row := range rows {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				info(contract.TruncateIdentity(row.Project, maxWidth)),
				contract.TruncateIdentity(row.Plugin, maxWidth),
				warn(contract.TruncateIdentity(row.Dependency, maxWidth)),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Checked %d projects and %d plugin declarations, found %d SNAPSHOT plugin dependencies in %d projects\n",
		result.TotalProjects, result.TotalPlugins, result.TotalViolations, len(result.FailedProjects())); err != nil {
		return err
	}
	backend := string(cfg.HistoryBackend)
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	if _, err := fmt.Fprintf(w, "Check completed in %v with %d workers. History backend: %s\n", result.Duration, cfg.Workers, backend); err != nil {
		return err
	}
	return nil
}

// writeJSONResultsForCheck writes the full check result as JSON.
func writeJSONResultsForCheck(w io.Writer, result *schema.CheckResult) error {
	return writeJSON(w, result)
}

// writeCSVResultsForCheck writes one row per (project, plugin, dependency) triple.
func writeCSVResultsForCheck(w io.Writer, result *schema.CheckResult) error {
	return writeCSVWithHeader(w, checkCSVHeader, func(csvWriter *csv.Writer) error {
		for _, row := range result.Rows() {
			if err := csvWriter.Write([]string{row.Project, row.Plugin, row.Dependency}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
