// Package email renders batch reports for the report senders.
package email

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"faturas/internal/domain"
)

// Report is a rendered batch summary.
type Report struct {
	Subject string
	Text    string
	HTML    string
}

// RenderReport builds the subject and bodies for a batch summary.
func RenderReport(s *domain.BatchSummary) Report {
	counts := s.Counts()
	subject := fmt.Sprintf("Faturas: %d inseridas, %d duplicadas, %d incompletas, %d ilegíveis",
		counts[domain.OutcomeInserted], counts[domain.OutcomeDuplicate],
		counts[domain.OutcomeMissingFields], counts[domain.OutcomeReadError])

	var text strings.Builder
	fmt.Fprintf(&text, "Run %s over %s (%s)\n\n", s.RunID, s.InboundDir, s.Duration().Round(1e6))
	for _, o := range domain.Outcomes {
		fmt.Fprintf(&text, "%-15s %d\n", o, counts[o])
	}

	var rows strings.Builder
	if left := s.LeftInPlace(); len(left) > 0 {
		text.WriteString("\nLeft in the inbound directory:\n")
		for _, r := range left {
			detail := describe(r)
			fmt.Fprintf(&text, "  %s  %s  %s\n", filepath.Base(r.Path), r.Outcome, detail)
			fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(filepath.Base(r.Path)), r.Outcome, html.EscapeString(detail))
		}
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <p style="color: #666;">Run %s over %s</p>
  <table style="border-collapse: collapse; width: 100%%;">%s</table>
</body>
</html>`, html.EscapeString(subject), s.RunID, html.EscapeString(s.InboundDir), rows.String())

	return Report{Subject: subject, Text: text.String(), HTML: body}
}

func describe(r domain.DocumentResult) string {
	switch {
	case len(r.Missing) > 0:
		names := make([]string, len(r.Missing))
		for i, f := range r.Missing {
			names[i] = string(f)
		}
		return "missing: " + strings.Join(names, ", ")
	case r.RelocateErr != "":
		return "relocation failed: " + r.RelocateErr
	default:
		return r.Err
	}
}
