package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSectionReport = `# Solar Energy in 2024

![cover](https://img.example.com/solar.jpg)

> Solar capacity grew faster than any other source.

## Market growth

Installations doubled in two years.
[video](https://youtube.com/watch?v=abc)

## Storage

![battery](https://img.example.com/battery.png)
Batteries are now the bottleneck.
[video](https://youtube.com/watch?v=def)
[podcast](https://pod.example.com/ep1)

Tags: energy, solar, #storage
`

func TestParse_TwoSections(t *testing.T) {
	r, ok := Parse(twoSectionReport)
	require.True(t, ok)

	assert.Equal(t, "Solar Energy in 2024", r.Title)
	assert.Equal(t, "https://img.example.com/solar.jpg", r.ImageUrl)
	assert.Equal(t, "Solar capacity grew faster than any other source.", r.Summary)
	assert.Equal(t, []string{"energy", "solar", "storage"}, r.Tags)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Market growth", r.Sections[0].Heading)
	assert.Equal(t, "Installations doubled in two years.", r.Sections[0].Content)
	assert.Equal(t, "https://youtube.com/watch?v=abc", r.Sections[0].VideoUrl)
	assert.Empty(t, r.Sections[0].PodcastUrl)

	assert.Equal(t, "Storage", r.Sections[1].Heading)
	assert.Equal(t, "https://img.example.com/battery.png", r.Sections[1].ImageUrl)
	assert.Equal(t, "https://youtube.com/watch?v=def", r.Sections[1].VideoUrl)
	assert.Equal(t, "https://pod.example.com/ep1", r.Sections[1].PodcastUrl)
	assert.Equal(t, "Batteries are now the bottleneck.", r.Sections[1].Content)
}

func TestParse_RoundTrip(t *testing.T) {
	first, ok := Parse(twoSectionReport)
	require.True(t, ok)

	second, ok := Parse(Render(first))
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestParse_RequiredMarkers(t *testing.T) {
	tests := []struct {
		name string
		md   string
	}{
		{name: "missing summary", md: "# Title\n\n## Section\n\nBody"},
		{name: "missing title", md: "> Summary\n\n## Section\n\nBody"},
		{name: "section heading is not a title", md: "## Only section\n\n> Summary"},
		{name: "empty", md: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Parse(tt.md)
			assert.False(t, ok)
			assert.Nil(t, r)

			text, report := DisplayText(tt.md)
			assert.Equal(t, tt.md, text)
			assert.Nil(t, report)
		})
	}
}

func TestParse_OverviewWhenNoSections(t *testing.T) {
	md := "# Quick note\n> Short answer.\n\nSome more detail here.\n[video](https://v.example.com/1)\n"

	r, ok := Parse(md)
	require.True(t, ok)

	require.Len(t, r.Sections, 1)
	assert.Equal(t, "Overview", r.Sections[0].Heading)
	assert.Equal(t, "Some more detail here.", r.Sections[0].Content)
	assert.Equal(t, "https://v.example.com/1", r.Sections[0].VideoUrl)
}

func TestParse_NoSectionsNoTrailingContent(t *testing.T) {
	r, ok := Parse("# Title\n> Summary only\n")
	require.True(t, ok)
	assert.Empty(t, r.Sections)
}

func TestDisplayText_UsesSummary(t *testing.T) {
	text, r := DisplayText(twoSectionReport)
	require.NotNil(t, r)
	assert.Equal(t, r.Summary, text)
}
