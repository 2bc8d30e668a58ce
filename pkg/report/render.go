package report

import (
	"strings"

	"ai-assistant-be/internal/entity"
)

// Render writes r back in the same markdown dialect Parse reads.
func Render(r *entity.ReportContent) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("# " + r.Title + "\n\n")
	if r.ImageUrl != "" {
		b.WriteString("![" + r.Title + "](" + r.ImageUrl + ")\n\n")
	}
	b.WriteString("> " + r.Summary + "\n")

	for _, sec := range r.Sections {
		b.WriteString("\n## " + sec.Heading + "\n\n")
		if sec.ImageUrl != "" {
			b.WriteString("![" + sec.Heading + "](" + sec.ImageUrl + ")\n\n")
		}
		if sec.Content != "" {
			b.WriteString(sec.Content + "\n")
		}
		if sec.VideoUrl != "" {
			b.WriteString("\n[video](" + sec.VideoUrl + ")\n")
		}
		if sec.PodcastUrl != "" {
			b.WriteString("\n[podcast](" + sec.PodcastUrl + ")\n")
		}
	}

	if len(r.Tags) > 0 {
		b.WriteString("\nTags: " + strings.Join(r.Tags, ", ") + "\n")
	}
	return b.String()
}

// DisplayText is what a transcript shows for text that may hold a report: the
// summary when it parses, the untouched input otherwise.
func DisplayText(md string) (string, *entity.ReportContent) {
	r, ok := Parse(md)
	if !ok {
		return md, nil
	}
	return r.Summary, r
}
