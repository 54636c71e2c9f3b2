package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jward/linqcheck"
)

var (
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
	ruleColor = color.New(color.Bold)
)

// writeFindings renders findings in the requested format. Text output is
// one line per finding plus a summary; JSON is the full finding array.
func writeFindings(w io.Writer, format string, findings []linqcheck.Finding) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if findings == nil {
			findings = []linqcheck.Finding{}
		}
		return enc.Encode(findings)
	}
	for _, fd := range findings {
		fmt.Fprintln(w, findingLine(fd))
	}
	if len(findings) == 0 {
		fmt.Fprintln(w, "no issues found")
	} else {
		fmt.Fprintf(w, "\n%d %s\n", len(findings), plural(len(findings), "issue", "issues"))
	}
	return nil
}

// findingLine formats one finding as path:line:col: severity [rule] message.
func findingLine(fd linqcheck.Finding) string {
	sev := fd.Severity
	switch sev {
	case "warning":
		sev = warnColor.Sprint(sev)
	case "info":
		sev = infoColor.Sprint(sev)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s %s",
		fd.File, fd.StartLine, fd.StartCol,
		sev, ruleColor.Sprintf("[%s]", fd.RuleID), fd.Message)
}

// writeRules renders the rule catalogue as an aligned table.
func writeRules(w io.Writer, infos []linqcheck.RuleInfo, fixable func(string) bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tFIX\tSUMMARY")
	for _, info := range infos {
		fix := ""
		if fixable(info.ID) {
			fix = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.Severity, fix, info.Summary)
	}
	return tw.Flush()
}
