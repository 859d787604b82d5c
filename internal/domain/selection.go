package domain

// Intent is the action the reader picked for a text selection.
type Intent string

const (
	IntentSummarize Intent = "summarize"
	IntentTranslate Intent = "translate"
	IntentFreeform  Intent = "freeform"
)

// StartSelectionRequest is the request to open a conversation from a selection
type StartSelectionRequest struct {
	BookID       string `json:"book_id" binding:"required"`
	SelectedText string `json:"selected_text" binding:"required"`
	Intent       Intent `json:"intent"`
}

// SelectionResult is the response to a selection: the new session plus a
// question for the UI to pre-fill. Freeform selections get no prefill; in
// every case nothing is sent to the model until the user submits.
type SelectionResult struct {
	Session *Session `json:"session"`
	Prefill string   `json:"prefill,omitempty"`
}
