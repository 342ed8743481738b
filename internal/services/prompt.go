package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the full analysis prompt: portfolio context
// first, then instructions, then the submitted job description.
func (pb *PromptBuilder) BuildAnalysisPrompt(portfolioContext, jobDescription string) string {
	return fmt.Sprintf(`You are a career-fit analyst. You know the candidate only through the portfolio below. Assess how well the candidate matches the job description that follows it.

CANDIDATE PORTFOLIO:
%s

JOB DESCRIPTION:
%s

Your task is to produce an honest, evidence-backed compatibility assessment. Every alignment claim must cite concrete portfolio material; never invent facts that are not in the portfolio. Name real gaps plainly.

Return your response in the following JSON format:
{
  "confidence": "<high|medium|low> - overall match confidence",
  "alignments": [
    {
      "title": "<short area name>",
      "description": "<2-3 sentences on why the candidate fits this requirement>",
      "evidence": [
        {
          "type": "<experience|project|skill>",
          "title": "<portfolio item this cites>",
          "excerpt": "<short quote or paraphrase from the portfolio>"
        }
      ]
    }
  ],
  "gaps": [
    {
      "title": "<short gap name>",
      "description": "<2-3 sentences on what the job needs that the portfolio does not show>",
      "severity": "<minor|moderate|significant>"
    }
  ],
  "recommendation": {
    "type": "<proceed|consider|reconsider>",
    "summary": "<one sentence verdict>",
    "rationale": "<3-5 sentences explaining the verdict>"
  }
}

List alignments first, then gaps, then the recommendation. Be objective: an empty alignments or gaps list is acceptable when justified, but the recommendation is always required.`,
		portfolioContext, jobDescription)
}
