package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobfit/analyzer/internal/models"
)

// Error describes why a parse failed. Stage names the fail-fast step that
// rejected the response.
type Error struct {
	Stage  string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Stage, e.Detail)
}

// Result is the tagged outcome of one parse attempt. Parse never panics and
// never returns a partially-typed assessment: either Success is true and
// Assessment satisfies models.ValidAssessment, or Err explains the failure.
type Result struct {
	Success    bool
	Assessment *models.MatchAssessment
	Err        *Error
}

// Options allow tests to pin id and timestamp generation.
type Options struct {
	Now   func() time.Time
	NewID func() string
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func failure(stage, detail string) Result {
	return Result{Err: &Error{Stage: stage, Detail: detail}}
}

// Parse validates raw model output field by field into a MatchAssessment.
// The top-level shape and the recommendation are fail-fast; individual
// alignments, gaps and evidence items are fail-soft and silently dropped
// when malformed.
func Parse(raw, input string, opts Options) Result {
	var data map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &data); err != nil {
		return failure("json", err.Error())
	}

	tier, ok := parseConfidenceTier(data["confidence"])
	if !ok {
		return failure("shape", fmt.Sprintf("confidence %q is not one of high/medium/low", coerceString(data["confidence"])))
	}

	rawAlignments, ok := asArray(data["alignments"])
	if !ok {
		return failure("shape", "alignments is not an array")
	}

	rawGaps, ok := asArray(data["gaps"])
	if !ok {
		return failure("shape", "gaps is not an array")
	}

	rawRec, ok := asObject(data["recommendation"])
	if !ok {
		return failure("shape", "recommendation is not an object")
	}

	recommendation, ok := parseRecommendation(rawRec)
	if !ok {
		return failure("recommendation", "missing verdict, summary or rationale")
	}

	alignments := make([]models.AlignmentArea, 0, len(rawAlignments))
	for i, item := range rawAlignments {
		if a, ok := parseAlignment(item, i); ok {
			alignments = append(alignments, a)
		}
	}

	gaps := make([]models.GapArea, 0, len(rawGaps))
	for i, item := range rawGaps {
		if g, ok := parseGap(item, i); ok {
			gaps = append(gaps, g)
		}
	}

	assessment := &models.MatchAssessment{
		ID:             opts.newID(),
		CreatedAt:      opts.now(),
		InputPreview:   models.MakePreview(input),
		Confidence:     tier,
		Alignments:     alignments,
		Gaps:           gaps,
		Recommendation: recommendation,
	}

	return Result{Success: true, Assessment: assessment}
}

// parseConfidenceTier maps the 3-value model vocabulary onto the domain
// tiers; already-mapped tier names are accepted as well.
func parseConfidenceTier(v any) (models.ConfidenceTier, bool) {
	switch strings.ToLower(coerceString(v)) {
	case "high", string(models.TierStrong):
		return models.TierStrong, true
	case "medium", string(models.TierModerate):
		return models.TierModerate, true
	case "low", string(models.TierExploratory):
		return models.TierExploratory, true
	default:
		return "", false
	}
}

func parseRecommendation(obj map[string]any) (models.Recommendation, bool) {
	verdict := models.RecommendationType(strings.ToLower(coerceString(obj["type"])))
	if !models.ValidRecommendationType(verdict) {
		return models.Recommendation{}, false
	}
	summary := coerceString(obj["summary"])
	rationale := coerceString(obj["rationale"])
	if summary == "" || rationale == "" {
		return models.Recommendation{}, false
	}
	return models.Recommendation{Type: verdict, Summary: summary, Rationale: rationale}, true
}

func parseAlignment(v any, index int) (models.AlignmentArea, bool) {
	obj, ok := asObject(v)
	if !ok {
		return models.AlignmentArea{}, false
	}

	title := coerceString(obj["title"])
	description := coerceString(obj["description"])
	if title == "" || description == "" {
		return models.AlignmentArea{}, false
	}

	rawEvidence, _ := asArray(obj["evidence"])
	evidence := make([]models.Evidence, 0, len(rawEvidence))
	for _, item := range rawEvidence {
		if ev, ok := parseEvidence(item); ok {
			evidence = append(evidence, ev)
		}
	}

	// An alignment claim with nothing to back it up is dropped entirely.
	if len(evidence) == 0 {
		return models.AlignmentArea{}, false
	}

	return models.AlignmentArea{
		ID:          itemID("alignment", title, index),
		Title:       title,
		Description: description,
		Evidence:    evidence,
	}, true
}

func parseEvidence(v any) (models.Evidence, bool) {
	obj, ok := asObject(v)
	if !ok {
		return models.Evidence{}, false
	}

	title := coerceString(obj["title"])
	if title == "" {
		return models.Evidence{}, false
	}
	excerpt := coerceString(obj["excerpt"])

	evType := models.EvidenceType(strings.ToLower(coerceString(obj["type"])))
	if !models.ValidEvidenceType(evType) {
		evType = inferEvidenceType(title + " " + excerpt)
	}

	return models.Evidence{
		Type:    evType,
		Title:   title,
		Ref:     Slugify(title),
		Excerpt: excerpt,
	}, true
}

func parseGap(v any, index int) (models.GapArea, bool) {
	obj, ok := asObject(v)
	if !ok {
		return models.GapArea{}, false
	}

	title := coerceString(obj["title"])
	description := coerceString(obj["description"])
	if title == "" || description == "" {
		return models.GapArea{}, false
	}

	severity := models.GapSeverity(strings.ToLower(coerceString(obj["severity"])))
	if !models.ValidGapSeverity(severity) {
		return models.GapArea{}, false
	}

	return models.GapArea{
		ID:          itemID("gap", title, index),
		Title:       title,
		Description: description,
		Severity:    severity,
	}, true
}

var (
	experienceWords = []string{"worked", "years", "role", "position", "led", "managed", "career", "team"}
	projectWords    = []string{"built", "project", "shipped", "launched", "developed", "created", "app", "system"}
)

// inferEvidenceType guesses the evidence category from wording when the
// source data does not state it explicitly.
func inferEvidenceType(text string) models.EvidenceType {
	lower := strings.ToLower(text)
	for _, w := range experienceWords {
		if strings.Contains(lower, w) {
			return models.EvidenceExperience
		}
	}
	for _, w := range projectWords {
		if strings.Contains(lower, w) {
			return models.EvidenceProject
		}
	}
	return models.EvidenceSkill
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a url-safe reference string from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func itemID(kind, title string, index int) string {
	if slug := Slugify(title); slug != "" {
		return fmt.Sprintf("%s-%s", kind, slug)
	}
	return fmt.Sprintf("%s-%d", kind, index+1)
}
