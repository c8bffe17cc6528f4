//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "sort"

// Section is a backend evaluation section whose data keys vary by agent.
type Section struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// SectionField is one entry of a Section prepared for display.
type SectionField struct {
	Key   string
	Score *float64
	Items []string
	Text  string
}

// Fields flattens the section data in key order. Numbers become scores,
// string lists become bullet items, and strings become text.
func (s Section) Fields() []SectionField {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]SectionField, 0, len(keys))
	for _, k := range keys {
		f := SectionField{Key: k}
		switch v := s.Data[k].(type) {
		case float64:
			f.Score = &v
		case string:
			f.Text = v
		case []any:
			for _, item := range v {
				if str, ok := item.(string); ok {
					f.Items = append(f.Items, str)
				}
			}
		default:
			continue
		}
		out = append(out, f)
	}
	return out
}

// Prediction is the overall success prediction.
type Prediction struct {
	Success bool `json:"success"`
	Data    struct {
		Score         float64 `json:"score"`
		Justification string  `json:"justification"`
	} `json:"data"`
}

// Band returns the score band of the prediction.
func (p Prediction) Band() ScoreBand { return BandFor(p.Data.Score) }

// GapFix is the actionable improvement plan.
type GapFix struct {
	Success bool `json:"success"`
	Data    struct {
		Summary      string   `json:"summary"`
		Improvements []string `json:"improvements"`
		Links        []string `json:"links"`
	} `json:"data"`
}

// Evaluation is the full multi-agent result for one interview.
type Evaluation struct {
	ResumeAnalysis    Section    `json:"resume_analysis"`
	MockResponse      Section    `json:"mock_response"`
	SuccessPrediction Prediction `json:"success_prediction"`
	GapFixer          GapFix     `json:"gap_fixer"`
}

// Report is a stored analysis fetched by id.
type Report struct {
	ResumeFilename     string     `json:"resume_filename"`
	JobDescriptionText string     `json:"job_description_text"`
	Result             Evaluation `json:"full_result"`
}
