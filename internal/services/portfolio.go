package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Fact is one structured background item loaded from the portfolio
// directory. Lower priority values sort first in the assembled context.
type Fact struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Priority int    `json:"priority"`
	Text     string `json:"-"`
}

// PortfolioService supplies the evidence context for every analysis. All
// loaded facts are sent on every request; there is no retrieval step.
type PortfolioService interface {
	Reload() error
	Context() string
	Facts() []Fact
}

type portfolioService struct {
	dir             string
	maxContextChars int
	pdfParser       PDFParserService
	chunker         TextChuncker
	logger          *zap.Logger

	mu          sync.RWMutex
	facts       []Fact
	contextBlob string
}

const defaultPriority = 100

func NewPortfolioService(dir string, maxContextChars int, pdfParser PDFParserService, logger *zap.Logger) PortfolioService {
	if maxContextChars <= 0 {
		maxContextChars = 24000
	}
	return &portfolioService{
		dir:             dir,
		maxContextChars: maxContextChars,
		pdfParser:       pdfParser,
		chunker:         NewTextChunker(),
		logger:          logger,
	}
}

// Reload implements PortfolioService. It scans the portfolio directory,
// extracts text from each supported file and assembles the priority-ordered
// context blob.
func (p *portfolioService) Reload() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return fmt.Errorf("failed to read portfolio directory: %w", err)
	}

	var facts []Fact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(p.dir, entry.Name())
		text, err := p.extractText(path)
		if err != nil {
			p.logger.Warn("skipping unreadable portfolio file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		priority, title := parseFileName(entry.Name())
		facts = append(facts, Fact{
			Title:    title,
			Source:   entry.Name(),
			Priority: priority,
			Text:     CleanText(text),
		})
	}

	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Priority != facts[j].Priority {
			return facts[i].Priority < facts[j].Priority
		}
		return facts[i].Source < facts[j].Source
	})

	blob := p.assembleContext(facts)

	p.mu.Lock()
	p.facts = facts
	p.contextBlob = blob
	p.mu.Unlock()

	p.logger.Info("portfolio loaded",
		zap.Int("facts", len(facts)),
		zap.Int("context_chars", utf8.RuneCountInString(blob)),
	)

	return nil
}

// Context implements PortfolioService.
func (p *portfolioService) Context() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.contextBlob
}

// Facts implements PortfolioService.
func (p *portfolioService) Facts() []Fact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Fact, len(p.facts))
	copy(out, p.facts)
	return out
}

func (p *portfolioService) extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case ".pdf":
		return p.pdfParser.ExtractText(path)
	default:
		return "", fmt.Errorf("unsupported portfolio file type: %s", filepath.Ext(path))
	}
}

// assembleContext joins the facts into one blob, trimming oversized
// documents so the whole context stays within the configured budget.
func (p *portfolioService) assembleContext(facts []Fact) string {
	if len(facts) == 0 {
		return "No portfolio content available."
	}

	perFactBudget := p.maxContextChars / len(facts)
	if perFactBudget < 500 {
		perFactBudget = 500
	}

	var parts []string
	used := 0
	for _, fact := range facts {
		if used >= p.maxContextChars {
			break
		}

		budget := perFactBudget
		if remaining := p.maxContextChars - used; remaining < budget {
			budget = remaining
		}

		text := p.chunker.TrimToBudget(fact.Text, budget)
		if text == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("## %s\n%s", fact.Title, text))
		used += utf8.RuneCountInString(text)
	}

	return strings.Join(parts, "\n\n")
}

// parseFileName splits an optional numeric priority prefix from a portfolio
// filename: "10_work-history.md" loads with priority 10 as "Work History".
func parseFileName(name string) (int, string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	priority := defaultPriority
	if idx := strings.IndexAny(base, "_-"); idx > 0 {
		if n, err := strconv.Atoi(base[:idx]); err == nil {
			priority = n
			base = base[idx+1:]
		}
	}

	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	title := strings.Join(words, " ")
	if title == "" {
		title = base
	}
	return priority, title
}
