package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/tui"
)

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeJSONLine writes v as a single line of JSON.
func writeJSONLine(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func printAssignment(w io.Writer, participants []roster.Participant, jsonOutput bool) error {
	if jsonOutput {
		return outputJSON(w, participants)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tROLE")
	for _, p := range participants {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.AssignedRole)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, tui.NoticeAssigned)
	return nil
}

func printConfigurations(w io.Writer, items []*configstore.Configuration) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No saved teams")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tROLES\tDATE")
	for _, cfg := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			truncate(cfg.ID, 12),
			truncate(cfg.Name, 30),
			len(cfg.TeamMembers),
			len(cfg.Roles),
			cfg.Date)
	}
	return tw.Flush()
}

func printConfiguration(w io.Writer, cfg *configstore.Configuration) error {
	fmt.Fprintf(w, "ID:    %s\n", cfg.ID)
	fmt.Fprintf(w, "Name:  %s\n", cfg.Name)
	fmt.Fprintf(w, "Saved: %s\n", cfg.Date)

	fmt.Fprintln(w, "\nMembers:")
	for _, p := range cfg.TeamMembers {
		fmt.Fprintf(w, "  - %s\n", tui.FormatAssignment(p))
	}
	fmt.Fprintln(w, "\nRoles:")
	for _, r := range cfg.Roles {
		fmt.Fprintf(w, "  - %s\n", r.Name)
	}
	return nil
}

func participantNames(participants []roster.Participant) []string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return names
}

// truncate truncates a string to maxLen characters with ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
