package assistant

import (
	"fmt"
	"strings"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/tools"
)

const helpfulInstruction = `You are a helpful personal assistant. Answer clearly and concisely in the user's language.
When the user asks to schedule, complete or review calendar events, use the calendar tools instead of answering from memory.`

const sarcasticInstruction = `You are a personal assistant with a dry, sarcastic sense of humor.
Every answer must still be correct and useful: first solve the user's request, then add at most one short witty remark.
Never mock the user. When the user asks to schedule, complete or review calendar events, use the calendar tools.`

const liveInstruction = `Keep spoken answers short and natural. Confirm every calendar change out loud after the tool reports back.`

const coCreatorInstruction = `You are co-writing a document with the user by voice.
Edit the document only through the replace_text and apply_format tools, quoting the existing text exactly.
Tell the user what you changed after each edit.`

const reportInstruction = `You are a research editor. Use only high-authority sources (official bodies, peer reviewed journals, established news outlets) found through web search.`

const reportTemplate = `Write a magazine style report about the request below. Follow this markdown structure exactly:

# <report title>
![cover description](<cover image url, optional>)
> <one paragraph summary>

## <section heading>
<section text>
[video](<url of a relevant video, optional>)
[podcast](<url of a relevant podcast episode, optional>)
![image description](<image url, optional>)

Write 3 to 5 sections. End with a single line "Tags: tag1, tag2, tag3".
Do not add anything before the title or after the tags line.

Request: %s`

const summaryPrompt = `Summarize the conversation below for the user's history.
Return a short title, a one paragraph summary and at most 5 lowercase tags.

Conversation:
%s`

const handshakeTemplate = `We are going to work on the document "%s" together. This is its full current content:

---
%s
---

Greet me briefly and ask what I want to change.`

const handshakeWithoutDocument = `We are in co-writing mode but no document is open yet. Ask me to open one before editing.`

// systemInstruction picks exactly one persona and adds the user's clock so
// relative dates resolve.
func systemInstruction(settings entity.Settings, now time.Time) string {
	base := helpfulInstruction
	if settings.SarcasticHumor {
		base = sarcasticInstruction
	}
	return base + "\n\n" + clockLine(settings, now)
}

func liveSystemInstruction(mode entity.InteractionMode, settings entity.Settings, now time.Time) string {
	if mode == entity.ModeCoCreator {
		return coCreatorInstruction + "\n\n" + clockLine(settings, now)
	}
	return systemInstruction(settings, now) + "\n" + liveInstruction
}

func clockLine(settings entity.Settings, now time.Time) string {
	return fmt.Sprintf("Now is %s (%s, ISO date %s). Reply in locale %s.",
		tools.FormatDateTime(now, settings.Locale),
		now.Weekday(),
		now.Format(entity.EventDateLayout),
		settings.Locale,
	)
}

func handshakeMessage(doc *entity.LiveDocument) string {
	if doc == nil {
		return handshakeWithoutDocument
	}
	return fmt.Sprintf(handshakeTemplate, doc.Title, doc.Content)
}

// transcriptText flattens a transcript for summarization.
func transcriptText(ts []entity.Transcription) string {
	var b strings.Builder
	for _, t := range ts {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Text)
	}
	return b.String()
}
