package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"ably/internal/scan"
	"ably/internal/wcag"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the pattern rules and validator mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		which, err := cmd.Flags().GetString("table")
		if err != nil {
			return fmt.Errorf("failed to get table flag: %w", err)
		}
		return renderRules(cmd.OutOrStdout(), collectRules(which), format)
	},
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().String("table", "all", "rule table (scan|whatwg|w3c|all)")
}

type ruleRow struct {
	Table      string `json:"table"`
	ID         string `json:"id"`
	Code       string `json:"code,omitempty"`
	Citation   string `json:"citation"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func collectRules(which string) []ruleRow {
	which = strings.ToLower(strings.TrimSpace(which))
	all := which == "" || which == "all"
	var rows []ruleRow
	if all || which == "scan" {
		for _, r := range scan.DefaultRules() {
			rows = append(rows, ruleRow{
				Table:      "scan",
				ID:         r.ID,
				Code:       r.Code.ID(),
				Citation:   r.Citation,
				Message:    r.Message,
				Suggestion: strings.Join(r.Suggestions, " / "),
			})
		}
	}
	if all || which == "whatwg" {
		for _, m := range wcag.WHATWGRules() {
			rows = append(rows, mappingRow("whatwg", m))
		}
	}
	if all || which == "w3c" {
		for _, m := range wcag.W3CRules() {
			rows = append(rows, mappingRow("w3c", m))
		}
	}
	return rows
}

func mappingRow(tableName string, m wcag.RuleMapping) ruleRow {
	return ruleRow{
		Table:      tableName,
		ID:         m.RuleID,
		Citation:   m.Citation,
		Message:    m.ErrorMessage,
		Suggestion: m.Suggestion,
	}
}

func renderRules(w io.Writer, rows []ruleRow, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "pretty", "":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rules to show")
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TABLE", "ID", "CITATION", "MESSAGE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 { // v0.12: заголовок это строка 0
				return header
			}
			return cell
		})
	for _, r := range rows {
		t.Row(r.Table, r.ID, r.Citation, truncateMessage(r.Message, 72))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func truncateMessage(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
