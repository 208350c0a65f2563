package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/service"
	"github.com/alexanderramin/panotour/internal/validator"
)

// FormatValidation renders a validation result: errors first, then warnings.
func FormatValidation(title string, res validator.Result) string {
	var b strings.Builder
	status := StyleGreen.Render("✔ valid")
	if !res.Valid() {
		status = StyleRed.Render(fmt.Sprintf("✖ %d error(s)", len(res.Errors)))
	}
	fmt.Fprintf(&b, "%s  %s", Bold(title), status)
	if n := len(res.Warnings); n > 0 {
		b.WriteString("  " + StyleYellow.Render(fmt.Sprintf("%d warning(s)", n)))
	}
	b.WriteString("\n")
	for _, is := range res.Errors {
		writeIssue(&b, StyleRed.Render("error"), is)
	}
	for _, is := range res.Warnings {
		writeIssue(&b, StyleYellow.Render("warn "), is)
	}
	return b.String()
}

func writeIssue(b *strings.Builder, label string, is validator.Issue) {
	path := is.Path
	if path == "" {
		path = "(document)"
	}
	fmt.Fprintf(b, "  %s %s %s\n", label, StyleBlue.Render(path), is.Message)
}

// FormatImportReport lists each tour of an import and what happened to it.
func FormatImportReport(r *service.ImportReport) string {
	var b strings.Builder
	for _, t := range r.Tours {
		var status string
		switch t.Status {
		case service.ImportCreated:
			status = StyleGreen.Render("created ")
		case service.ImportReplaced:
			status = StyleYellow.Render("replaced")
		default:
			status = StyleRed.Render("skipped ")
		}
		fmt.Fprintf(&b, "%s %s %s\n", status, Bold(t.Title), Dim("("+t.ID+")"))
		if t.Status == service.ImportSkipped {
			for _, is := range t.Result.Errors {
				writeIssue(&b, StyleRed.Render("  error"), is)
			}
		}
	}
	fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("%d created, %d replaced, %d skipped",
		r.Count(service.ImportCreated), r.Count(service.ImportReplaced), r.Count(service.ImportSkipped))))
	return b.String()
}
