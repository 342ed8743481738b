package guardrails

// User-safe refusal messages keyed by check kind and endpoint context.
// Messages for the two evasion-class checks stay deliberately generic and
// never name what was found.
var safeMessages = map[CheckKind]map[string]string{
	CheckPromptInjection: {
		"analyze": "This request can't be processed. Please submit a plain job description and try again.",
	},
	CheckJailbreak: {
		"analyze": "This request can't be processed. Please submit a plain job description and try again.",
	},
	CheckOffTopic: {
		"analyze": "This tool reviews job descriptions. The submitted text doesn't appear to be one, so there's nothing to assess here.",
	},
	CheckModeration: {
		"analyze": "The submitted text contains content this tool can't work with. Please review it and try again.",
	},
}

const fallbackMessage = "This request can't be processed. Please adjust the text and try again."

// SafeMessage looks up the user-facing refusal for a blocking check on a
// given endpoint. Unknown endpoints fall back to the analyze wording, and
// unknown kinds to a fully generic line.
func SafeMessage(kind CheckKind, endpoint string) string {
	byEndpoint, ok := safeMessages[kind]
	if !ok {
		return fallbackMessage
	}
	if msg, ok := byEndpoint[endpoint]; ok {
		return msg
	}
	if msg, ok := byEndpoint["analyze"]; ok {
		return msg
	}
	return fallbackMessage
}
