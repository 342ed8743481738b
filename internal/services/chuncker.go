package services

import (
	"strings"
	"unicode/utf8"
)

type TextChuncker interface {
	TrimToBudget(text string, budget int) string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// TrimToBudget implements TextChuncker. It cuts text down to at most budget
// runes, preferring paragraph boundaries and falling back to sentence
// boundaries for oversized paragraphs, so a trimmed portfolio document still
// reads coherently.
func (tc *textChunker) TrimToBudget(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= budget {
		return strings.TrimSpace(text)
	}

	paragraphs := strings.Split(text, "\n\n")

	var out strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		remaining := budget - utf8.RuneCountInString(out.String())
		if remaining <= 0 {
			break
		}

		sep := 0
		if out.Len() > 0 {
			sep = 2
		}

		if utf8.RuneCountInString(para)+sep <= remaining {
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(para)
			continue
		}

		// The paragraph does not fit whole; take leading sentences.
		for _, sentence := range splitIntoSentences(para) {
			sentence = strings.TrimSpace(sentence) + "."
			remaining = budget - utf8.RuneCountInString(out.String())
			if utf8.RuneCountInString(sentence)+1 > remaining {
				break
			}
			if out.Len() > 0 {
				out.WriteString(" ")
			}
			out.WriteString(sentence)
		}
		break
	}

	return strings.TrimSpace(out.String())
}

func splitIntoSentences(text string) []string {
	// Simple sentence splitter
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}
