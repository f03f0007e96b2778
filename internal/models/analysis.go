package models

// AnalysisEntry is the model-produced summary and insight for one feed
// item. Entries are index-aligned with the feed items that built the
// prompt; the pipeline never reorders them.
type AnalysisEntry struct {
	Summary string `json:"summary"`
	Insight string `json:"insight"`
}

// AnalysisResult is the ordered sequence of analysis entries for one
// run. A valid result has exactly one entry per prompted feed item; a
// shorter or longer result is a format failure, never a partial success.
type AnalysisResult []AnalysisEntry
