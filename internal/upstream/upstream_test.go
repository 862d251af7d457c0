package upstream

import "testing"

func TestParsePromptDataJSON(t *testing.T) {
	data := ParsePromptData(`{"subject":"girl with blue hair","style_medium":"anime"}`)
	if data["subject"] != "girl with blue hair" {
		t.Fatalf("subject mismatch: %#v", data)
	}
	if data["style_medium"] != "anime" {
		t.Fatalf("style_medium mismatch: %#v", data)
	}
	if _, ok := data["raw_response"]; ok {
		t.Fatalf("unexpected raw_response fallback: %#v", data)
	}
}

func TestParsePromptDataFallback(t *testing.T) {
	for _, text := range []string{
		"a plain text answer",
		`["json","but","not","an","object"]`,
		"",
	} {
		data := ParsePromptData(text)
		if got, ok := data["raw_response"]; !ok || got != text {
			t.Fatalf("ParsePromptData(%q) = %#v, want raw_response fallback", text, data)
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 500, Message: "Gemini API错误: 503"}
	if err.Error() != "upstream error 500: Gemini API错误: 503" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}
