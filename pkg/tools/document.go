package tools

import (
	"context"
	"fmt"
	"strings"

	"ai-assistant-be/internal/entity"
)

// activeDocument resolves the document being co-edited or fails without looking
// at any call argument.
func activeDocument(s *entity.AppState) (*entity.LiveDocument, error) {
	if s.ActiveDocumentId == "" {
		return nil, failf(noActiveDocumentError)
	}
	doc, ok := s.Document(s.ActiveDocumentId)
	if !ok {
		return nil, failf(noActiveDocumentError)
	}
	return doc, nil
}

func (e *Executor) replaceText(ctx context.Context, args map[string]any) Result {
	var title string
	if _, r := e.update(ctx, func(s *entity.AppState) error {
		doc, err := activeDocument(s)
		if err != nil {
			return err
		}
		target := rawStringArg(args, "text_to_replace")
		if target == "" {
			return failf("text_to_replace is required")
		}
		if !strings.Contains(doc.Content, target) {
			return failf(fmt.Sprintf("text not found in document: %q", target))
		}
		title = doc.Title
		content := strings.Replace(doc.Content, target, rawStringArg(args, "new_text"), 1)
		s.SetDocumentContent(doc.Id, content, e.now())
		return nil
	}); r != nil {
		return *r
	}
	return ok(fmt.Sprintf("Text replaced in %q.", title))
}

func (e *Executor) applyFormat(ctx context.Context, args map[string]any) Result {
	var title, format string
	if _, r := e.update(ctx, func(s *entity.AppState) error {
		doc, err := activeDocument(s)
		if err != nil {
			return err
		}
		target := rawStringArg(args, "text_to_format")
		if target == "" {
			return failf("text_to_format is required")
		}

		format = strings.ToLower(stringArg(args, "format_type"))
		var marker string
		switch format {
		case FormatBold:
			marker = "**"
		case FormatItalic:
			marker = "*"
		default:
			return failf(fmt.Sprintf("unsupported format_type %q, use bold or italic", format))
		}

		if !strings.Contains(doc.Content, target) {
			return failf(fmt.Sprintf("text not found in document: %q", target))
		}
		title = doc.Title
		content := strings.Replace(doc.Content, target, marker+target+marker, 1)
		s.SetDocumentContent(doc.Id, content, e.now())
		return nil
	}); r != nil {
		return *r
	}
	return ok(fmt.Sprintf("Applied %s to the passage in %q.", format, title))
}
