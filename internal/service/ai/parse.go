package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\n?(.*?)\n?\\s*```$")

// ParseReply interprets raw model text as the three-key reply contract. It
// never fails: a fenced code block is stripped first, then the first balanced
// {...} span is tried, and when neither yields valid JSON the whole raw text
// becomes the response with no correction. Feeding the same text twice yields
// the same reply.
func ParseReply(raw string) Reply {
	trimmed := strings.TrimSpace(raw)

	if reply, ok := tryDecode(stripFence(trimmed)); ok {
		return reply
	}
	if reply, ok := tryDecode(braceSpan(stripFence(trimmed))); ok {
		return reply
	}

	response := trimmed
	if response == "" {
		response = fallbackResponse
	}
	return Reply{Response: response}
}

// stripFence removes a single surrounding markdown code fence, with or
// without a language tag.
func stripFence(s string) string {
	match := fencePattern.FindStringSubmatch(s)
	if match != nil && match[2] != "" {
		return strings.TrimSpace(match[2])
	}
	return s
}

// braceSpan extracts the first balanced {...} span, ignoring braces inside
// JSON string literals.
func braceSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func tryDecode(s string) (Reply, bool) {
	if s == "" {
		return Reply{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return Reply{}, false
	}
	if _, ok := fields["response"]; !ok {
		return Reply{}, false
	}

	var payload struct {
		Response    *string `json:"response"`
		Correction  *string `json:"correction"`
		Explanation *string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return Reply{}, false
	}

	reply := Reply{
		Correction:  payload.Correction,
		Explanation: payload.Explanation,
	}
	if payload.Response != nil && *payload.Response != "" {
		reply.Response = *payload.Response
	} else {
		reply.Response = fallbackResponse
	}

	// Correction and explanation travel as a pair; drop a lone half rather
	// than surface an unexplained fix or an explanation with nothing fixed.
	if (reply.Correction == nil) != (reply.Explanation == nil) {
		reply.Correction = nil
		reply.Explanation = nil
	}

	return reply, true
}
