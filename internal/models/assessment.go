package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ConfidenceTier is the overall strength of a match assessment.
type ConfidenceTier string

const (
	TierStrong      ConfidenceTier = "strong"
	TierModerate    ConfidenceTier = "moderate"
	TierExploratory ConfidenceTier = "exploratory"
)

type EvidenceType string

const (
	EvidenceExperience EvidenceType = "experience"
	EvidenceProject    EvidenceType = "project"
	EvidenceSkill      EvidenceType = "skill"
)

type GapSeverity string

const (
	SeverityMinor       GapSeverity = "minor"
	SeverityModerate    GapSeverity = "moderate"
	SeveritySignificant GapSeverity = "significant"
)

type RecommendationType string

const (
	RecommendProceed    RecommendationType = "proceed"
	RecommendConsider   RecommendationType = "consider"
	RecommendReconsider RecommendationType = "reconsider"
)

// Evidence is a cited fact from the portfolio supporting an alignment claim.
type Evidence struct {
	Type    EvidenceType `json:"type"`
	Title   string       `json:"title"`
	Ref     string       `json:"ref"`
	Excerpt string       `json:"excerpt"`
}

type AlignmentArea struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Evidence    []Evidence `json:"evidence"`
}

type GapArea struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    GapSeverity `json:"severity"`
}

type Recommendation struct {
	Type      RecommendationType `json:"type"`
	Summary   string             `json:"summary"`
	Rationale string             `json:"rationale"`
}

// MatchAssessment is the terminal artifact of one successful analysis run.
// It is constructed once by the parser and never mutated afterwards.
type MatchAssessment struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	InputPreview   string          `json:"input_preview"`
	Confidence     ConfidenceTier  `json:"confidence"`
	Alignments     []AlignmentArea `json:"alignments"`
	Gaps           []GapArea       `json:"gaps"`
	Recommendation Recommendation  `json:"recommendation"`
}

const previewMaxRunes = 100

// MakePreview trims the input and truncates it to at most 100 runes,
// suffixing an ellipsis when truncation occurred.
func MakePreview(input string) string {
	trimmed := strings.TrimSpace(input)
	if utf8.RuneCountInString(trimmed) <= previewMaxRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:previewMaxRunes-3])) + "..."
}

func ValidConfidenceTier(t ConfidenceTier) bool {
	return t == TierStrong || t == TierModerate || t == TierExploratory
}

func ValidEvidenceType(t EvidenceType) bool {
	return t == EvidenceExperience || t == EvidenceProject || t == EvidenceSkill
}

func ValidGapSeverity(s GapSeverity) bool {
	return s == SeverityMinor || s == SeverityModerate || s == SeveritySignificant
}

func ValidRecommendationType(t RecommendationType) bool {
	return t == RecommendProceed || t == RecommendConsider || t == RecommendReconsider
}

// ValidAssessment reports whether the value satisfies every structural
// invariant of a MatchAssessment. It is used to sanity-check assessments
// loaded back from persisted session state.
func ValidAssessment(a *MatchAssessment) bool {
	if a == nil {
		return false
	}
	if strings.TrimSpace(a.ID) == "" || a.CreatedAt.IsZero() {
		return false
	}
	if utf8.RuneCountInString(a.InputPreview) > previewMaxRunes {
		return false
	}
	if !ValidConfidenceTier(a.Confidence) {
		return false
	}
	for _, al := range a.Alignments {
		if strings.TrimSpace(al.Title) == "" || strings.TrimSpace(al.Description) == "" {
			return false
		}
		if len(al.Evidence) == 0 {
			return false
		}
		for _, ev := range al.Evidence {
			if !ValidEvidenceType(ev.Type) || strings.TrimSpace(ev.Title) == "" {
				return false
			}
		}
	}
	for _, g := range a.Gaps {
		if strings.TrimSpace(g.Title) == "" || !ValidGapSeverity(g.Severity) {
			return false
		}
	}
	r := a.Recommendation
	if !ValidRecommendationType(r.Type) || strings.TrimSpace(r.Summary) == "" || strings.TrimSpace(r.Rationale) == "" {
		return false
	}
	return true
}
