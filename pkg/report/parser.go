// Package report turns the markdown dialect requested from grounded answers into
// a structured ReportContent, and back.
package report

import (
	"regexp"
	"strings"

	"ai-assistant-be/internal/entity"
)

const overviewHeading = "Overview"

var (
	titleRe   = regexp.MustCompile(`^#\s+(.+?)\s*$`)
	sectionRe = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	summaryRe = regexp.MustCompile(`^>\s?(.*?)\s*$`)
	imageRe   = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
	videoRe   = regexp.MustCompile(`(?i)\[video\]\(([^)\s]+)\)`)
	podcastRe = regexp.MustCompile(`(?i)\[podcast\]\(([^)\s]+)\)`)
	tagsRe    = regexp.MustCompile(`(?i)^\**tags\**\s*:\s*(.+)$`)
)

// Parse extracts a report from md. It never fails loudly: when the title or the
// summary is missing it returns (nil, false) and the caller keeps the raw text.
func Parse(md string) (*entity.ReportContent, bool) {
	lines := strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n")

	// 1. Title and summary are mandatory
	titleIdx, summaryIdx := -1, -1
	var title, summary string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if titleIdx == -1 {
			if m := titleRe.FindStringSubmatch(trimmed); m != nil {
				titleIdx, title = i, m[1]
			}
		}
		if summaryIdx == -1 {
			if m := summaryRe.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
				summaryIdx, summary = i, m[1]
			}
		}
	}
	if titleIdx == -1 || summaryIdx == -1 {
		return nil, false
	}

	// 2. Locate sections
	firstSection := len(lines)
	var starts []int
	for i, line := range lines {
		if sectionRe.MatchString(strings.TrimSpace(line)) {
			if len(starts) == 0 {
				firstSection = i
			}
			starts = append(starts, i)
		}
	}

	out := &entity.ReportContent{Title: title, Summary: summary}

	// 3. Cover image is the first image above the first section
	for i := 0; i < firstSection; i++ {
		if m := imageRe.FindStringSubmatch(lines[i]); m != nil {
			out.ImageUrl = m[1]
			lines[i] = strings.Replace(lines[i], m[0], "", 1)
			break
		}
	}

	// 4. Tags may appear anywhere; the line is consumed
	consumed := map[int]bool{titleIdx: true, summaryIdx: true}
	for i, line := range lines {
		if m := tagsRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			out.Tags = splitTags(m[1])
			consumed[i] = true
			break
		}
	}

	// 5. Sections, or a synthetic overview
	for n, start := range starts {
		end := len(lines)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		heading := sectionRe.FindStringSubmatch(strings.TrimSpace(lines[start]))[1]
		out.Sections = append(out.Sections, parseSection(heading, bodyOf(lines, start+1, end, consumed)))
	}
	if len(starts) == 0 {
		rest := bodyOf(lines, summaryIdx+1, len(lines), consumed)
		if strings.TrimSpace(rest) != "" {
			out.Sections = append(out.Sections, parseSection(overviewHeading, rest))
		}
	}

	return out, true
}

func parseSection(heading, body string) entity.ReportSection {
	sec := entity.ReportSection{Heading: heading}
	if m := videoRe.FindStringSubmatch(body); m != nil {
		sec.VideoUrl = m[1]
		body = strings.Replace(body, m[0], "", 1)
	}
	if m := podcastRe.FindStringSubmatch(body); m != nil {
		sec.PodcastUrl = m[1]
		body = strings.Replace(body, m[0], "", 1)
	}
	if m := imageRe.FindStringSubmatch(body); m != nil {
		sec.ImageUrl = m[1]
		body = strings.Replace(body, m[0], "", 1)
	}
	sec.Content = collapseBlankLines(strings.TrimSpace(body))
	return sec
}

func bodyOf(lines []string, from, to int, consumed map[int]bool) string {
	var b strings.Builder
	for i := from; i < to && i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
