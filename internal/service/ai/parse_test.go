package ai

import "testing"

func TestParseReplyPlainJSON(t *testing.T) {
	raw := `{"response":"Hello there!","correction":"I went to school.","explanation":"Use the past tense of go."}`
	reply := ParseReply(raw)

	if reply.Response != "Hello there!" {
		t.Fatalf("expected response %q, got %q", "Hello there!", reply.Response)
	}
	if reply.Correction == nil || *reply.Correction != "I went to school." {
		t.Fatalf("expected correction, got %v", reply.Correction)
	}
	if reply.Explanation == nil || *reply.Explanation != "Use the past tense of go." {
		t.Fatalf("expected explanation, got %v", reply.Explanation)
	}
}

func TestParseReplyFencedJSON(t *testing.T) {
	raw := "```json\n{\"response\":\"Nice to meet you.\",\"correction\":null,\"explanation\":null}\n```"
	reply := ParseReply(raw)

	if reply.Response != "Nice to meet you." {
		t.Fatalf("expected fenced response to parse, got %q", reply.Response)
	}
	if reply.Correction != nil || reply.Explanation != nil {
		t.Fatalf("expected null correction and explanation, got %v / %v", reply.Correction, reply.Explanation)
	}
}

func TestParseReplyFenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"response\":\"Sure!\"}\n```"
	reply := ParseReply(raw)

	if reply.Response != "Sure!" {
		t.Fatalf("expected %q, got %q", "Sure!", reply.Response)
	}
}

func TestParseReplyEmbeddedObject(t *testing.T) {
	raw := "Here is my answer: {\"response\":\"Good question.\"} hope that helps"
	reply := ParseReply(raw)

	if reply.Response != "Good question." {
		t.Fatalf("expected embedded object to parse, got %q", reply.Response)
	}
}

func TestParseReplyBracesInsideStrings(t *testing.T) {
	raw := `{"response":"Curly braces look like { and }.","correction":null,"explanation":null}`
	reply := ParseReply(raw)

	if reply.Response != "Curly braces look like { and }." {
		t.Fatalf("expected braces in strings to be ignored, got %q", reply.Response)
	}
}

func TestParseReplyRawTextFallback(t *testing.T) {
	raw := "I am not JSON at all, just a plain sentence."
	reply := ParseReply(raw)

	if reply.Response != raw {
		t.Fatalf("expected raw text as response, got %q", reply.Response)
	}
	if reply.Correction != nil || reply.Explanation != nil {
		t.Fatalf("raw fallback must not carry correction or explanation")
	}
}

func TestParseReplyEmptyInput(t *testing.T) {
	reply := ParseReply("   ")

	if reply.Response != fallbackResponse {
		t.Fatalf("expected fallback response, got %q", reply.Response)
	}
}

func TestParseReplyEmptyResponseField(t *testing.T) {
	reply := ParseReply(`{"response":""}`)

	if reply.Response != fallbackResponse {
		t.Fatalf("expected fallback for empty response field, got %q", reply.Response)
	}
}

func TestParseReplyMissingResponseKey(t *testing.T) {
	raw := `{"correction":"fixed","explanation":"why"}`
	reply := ParseReply(raw)

	// Without a response key the object is not a contract reply; the raw
	// text survives verbatim.
	if reply.Response != raw {
		t.Fatalf("expected raw passthrough, got %q", reply.Response)
	}
	if reply.Correction != nil {
		t.Fatalf("expected no correction on passthrough")
	}
}

func TestParseReplyLoneCorrectionDropped(t *testing.T) {
	reply := ParseReply(`{"response":"ok","correction":"I am fine."}`)

	if reply.Correction != nil || reply.Explanation != nil {
		t.Fatalf("lone correction must be dropped, got %v / %v", reply.Correction, reply.Explanation)
	}
}

func TestParseReplyLoneExplanationDropped(t *testing.T) {
	reply := ParseReply(`{"response":"ok","explanation":"Just because."}`)

	if reply.Correction != nil || reply.Explanation != nil {
		t.Fatalf("lone explanation must be dropped, got %v / %v", reply.Correction, reply.Explanation)
	}
}

func TestParseReplyDeterministic(t *testing.T) {
	inputs := []string{
		`{"response":"A","correction":"B","explanation":"C"}`,
		"```json\n{\"response\":\"D\"}\n```",
		"noise before {\"response\":\"E\"} noise after",
		"plain text only",
		"",
	}
	for _, raw := range inputs {
		first := ParseReply(raw)
		second := ParseReply(raw)
		if first.Response != second.Response {
			t.Fatalf("parse not deterministic for %q: %q vs %q", raw, first.Response, second.Response)
		}
		if (first.Correction == nil) != (second.Correction == nil) {
			t.Fatalf("correction presence not deterministic for %q", raw)
		}
	}
}
