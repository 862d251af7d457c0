package gemini

import "promptoon-golang/server/internal/upstream"

type generateRequest struct {
	Contents         []upstream.Content `json:"contents"`
	GenerationConfig generationConfig   `json:"generationConfig"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

// firstText walks candidates[0].content.parts[0].text, the field every
// well-formed generateContent reply carries.
func (r *generateResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", false
	}
	return parts[0].Text, true
}

type usageMetadata struct {
	PromptTokenCount        int                  `json:"promptTokenCount"`
	CandidatesTokenCount    int                  `json:"candidatesTokenCount"`
	TotalTokenCount         int                  `json:"totalTokenCount"`
	PromptTokensDetails     []modalityTokenCount `json:"promptTokensDetails"`
	CandidatesTokensDetails []modalityTokenCount `json:"candidatesTokensDetails"`
}

type modalityTokenCount struct {
	Modality   string `json:"modality"`
	TokenCount int    `json:"tokenCount"`
}
