package models

// PromptIndex is a pointer so a missing field can be told apart from a
// legitimate index 0. Prompt is the client's copy of the question text and
// is used only as a consistency check.
type SubmitEntryRequest struct {
	PromptIndex *int   `json:"promptIndex"`
	Prompt      string `json:"prompt"`
	Answer      string `json:"answer"`
}
