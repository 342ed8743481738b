package parser

import (
	"strings"
	"testing"
	"time"

	"jobfit/analyzer/internal/models"
)

var testOpts = Options{
	Now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	NewID: func() string { return "test-assessment-id" },
}

const goodResponse = `{
	"confidence": "high",
	"alignments": [
		{
			"title": "Go backend development",
			"description": "Several years building Go services.",
			"evidence": [
				{"type": "experience", "title": "Backend engineer role", "excerpt": "Led a team of four."}
			]
		}
	],
	"gaps": [
		{"title": "Kubernetes", "description": "No cluster operations work listed.", "severity": "moderate"}
	],
	"recommendation": {
		"type": "proceed",
		"summary": "Strong fit for the role.",
		"rationale": "Core requirements are well covered."
	}
}`

func TestParseWellFormedResponse(t *testing.T) {
	res := Parse(goodResponse, "Senior Go engineer wanted for a platform team.", testOpts)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Err)
	}

	a := res.Assessment
	if a.ID != "test-assessment-id" {
		t.Errorf("ID = %q", a.ID)
	}
	if a.Confidence != models.TierStrong {
		t.Errorf("confidence = %s, want %s", a.Confidence, models.TierStrong)
	}
	if len(a.Alignments) != 1 || len(a.Gaps) != 1 {
		t.Fatalf("got %d alignments, %d gaps", len(a.Alignments), len(a.Gaps))
	}
	if a.Alignments[0].ID != "alignment-go-backend-development" {
		t.Errorf("alignment id = %q", a.Alignments[0].ID)
	}
	if a.Gaps[0].Severity != models.SeverityModerate {
		t.Errorf("gap severity = %s", a.Gaps[0].Severity)
	}
	if a.Recommendation.Type != models.RecommendProceed {
		t.Errorf("recommendation = %s", a.Recommendation.Type)
	}
	if !models.ValidAssessment(a) {
		t.Error("assessment does not satisfy the validity predicate")
	}
}

func TestParseStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + goodResponse + "\n```"
	if res := Parse(fenced, "some input", testOpts); !res.Success {
		t.Fatalf("fenced response rejected: %v", res.Err)
	}
}

func TestParseFailFast(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage string
	}{
		{name: "not json", raw: "I could not produce a result, sorry.", stage: "json"},
		{name: "bad confidence", raw: `{"confidence": "enormous", "alignments": [], "gaps": [], "recommendation": {}}`, stage: "shape"},
		{name: "alignments not array", raw: `{"confidence": "low", "alignments": "none", "gaps": [], "recommendation": {}}`, stage: "shape"},
		{name: "gaps not array", raw: `{"confidence": "low", "alignments": [], "gaps": 3, "recommendation": {}}`, stage: "shape"},
		{name: "recommendation not object", raw: `{"confidence": "low", "alignments": [], "gaps": [], "recommendation": "proceed"}`, stage: "shape"},
		{
			name:  "recommendation missing fields",
			raw:   `{"confidence": "low", "alignments": [], "gaps": [], "recommendation": {"type": "proceed", "summary": "ok"}}`,
			stage: "recommendation",
		},
		{
			name:  "recommendation unknown verdict",
			raw:   `{"confidence": "low", "alignments": [], "gaps": [], "recommendation": {"type": "hire", "summary": "s", "rationale": "r"}}`,
			stage: "recommendation",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.raw, "input", testOpts)
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Err.Stage != tc.stage {
				t.Errorf("stage = %q, want %q", res.Err.Stage, tc.stage)
			}
			if res.Assessment != nil {
				t.Error("failed parse must not carry an assessment")
			}
		})
	}
}

func TestParseFailSoftDropsMalformedItems(t *testing.T) {
	raw := `{
		"confidence": "medium",
		"alignments": [
			{"title": "Valid area", "description": "Backed by evidence.", "evidence": [{"title": "Shipped a service"}]},
			{"title": "No evidence area", "description": "Nothing to back this up.", "evidence": []},
			{"description": "missing title", "evidence": [{"title": "x"}]},
			"not even an object"
		],
		"gaps": [
			{"title": "Real gap", "description": "Missing skill.", "severity": "minor"},
			{"title": "Bad severity", "description": "d", "severity": "catastrophic"},
			{"title": "Missing description", "severity": "minor"}
		],
		"recommendation": {"type": "consider", "summary": "s", "rationale": "r"}
	}`

	res := Parse(raw, "input", testOpts)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if len(res.Assessment.Alignments) != 1 {
		t.Fatalf("got %d alignments, want 1", len(res.Assessment.Alignments))
	}
	if res.Assessment.Alignments[0].Title != "Valid area" {
		t.Errorf("kept wrong alignment: %q", res.Assessment.Alignments[0].Title)
	}
	if len(res.Assessment.Gaps) != 1 {
		t.Fatalf("got %d gaps, want 1", len(res.Assessment.Gaps))
	}
	if res.Assessment.Gaps[0].Title != "Real gap" {
		t.Errorf("kept wrong gap: %q", res.Assessment.Gaps[0].Title)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	first := Parse(goodResponse, "input", testOpts)
	second := Parse(goodResponse, "input", testOpts)
	if !first.Success || !second.Success {
		t.Fatal("expected both parses to succeed")
	}
	if first.Assessment.ID != second.Assessment.ID {
		t.Error("pinned options should yield identical ids")
	}
	if len(first.Assessment.Alignments) != len(second.Assessment.Alignments) {
		t.Error("repeated parse changed the alignment count")
	}
}

func TestInferEvidenceType(t *testing.T) {
	tests := []struct {
		text string
		want models.EvidenceType
	}{
		{text: "Worked five years as a platform lead", want: models.EvidenceExperience},
		{text: "Built and shipped a payments project", want: models.EvidenceProject},
		{text: "Fluent in Spanish", want: models.EvidenceSkill},
	}
	for _, tc := range tests {
		if got := inferEvidenceType(tc.text); got != tc.want {
			t.Errorf("inferEvidenceType(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestParseEvidenceTypeFallback(t *testing.T) {
	raw := `{
		"confidence": "high",
		"alignments": [
			{"title": "Area", "description": "d", "evidence": [
				{"type": "anecdote", "title": "Launched a mobile app", "excerpt": ""}
			]}
		],
		"gaps": [],
		"recommendation": {"type": "proceed", "summary": "s", "rationale": "r"}
	}`

	res := Parse(raw, "input", testOpts)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Err)
	}
	ev := res.Assessment.Alignments[0].Evidence[0]
	if ev.Type != models.EvidenceProject {
		t.Errorf("evidence type = %s, want %s (inferred)", ev.Type, models.EvidenceProject)
	}
	if ev.Ref != "launched-a-mobile-app" {
		t.Errorf("evidence ref = %q", ev.Ref)
	}
}

func TestParsePreviewTruncation(t *testing.T) {
	long := strings.Repeat("Senior Go engineer. ", 20)
	res := Parse(goodResponse, long, testOpts)
	if !res.Success {
		t.Fatalf("parse failed: %v", res.Err)
	}
	preview := res.Assessment.InputPreview
	if n := len([]rune(preview)); n > 100 {
		t.Errorf("preview is %d runes, want <= 100", n)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("truncated preview missing ellipsis: %q", preview)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Go Backend Development", "go-backend-development"},
		{"  CI/CD & Tooling!  ", "ci-cd-tooling"},
		{"---", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
