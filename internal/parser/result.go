package parser

import "github.com/yogeshhk/MiningResume/constants"

// AttributeOutcome is the terminal per-attribute state: a value (possibly
// absent), or an error detail for attribute-level failures.
type AttributeOutcome struct {
	Name      string   `json:"name"`
	Value     *string  `json:"value"`
	Values    []string `json:"values,omitempty"`
	Error     *string  `json:"error"`
	Cached    bool     `json:"cached,omitempty"`
	LatencyMS int64    `json:"latency_ms,omitempty"`
}

// Failed reports whether this attribute ended in an error.
func (o AttributeOutcome) Failed() bool {
	return o.Error != nil
}

// ExtractedRecord is an ordered mapping from attribute name to outcome.
// It contains exactly one outcome per requested attribute, in declaration
// order, regardless of completion order; the key set never changes after
// construction.
type ExtractedRecord struct {
	Outcomes []AttributeOutcome `json:"attributes"`
}

// Get looks up an outcome by attribute name.
func (r *ExtractedRecord) Get(name string) (AttributeOutcome, bool) {
	field := constants.FieldName(name)
	for _, o := range r.Outcomes {
		if constants.FieldName(o.Name) == field {
			return o, true
		}
	}
	return AttributeOutcome{}, false
}

// ParserResult is the per-document outcome. Success reflects only whether the
// document could be read and normalized; attribute-level failures live inside
// the record.
type ParserResult struct {
	DocumentName   string             `json:"document_name"`
	SourcePath     string             `json:"source_path,omitempty"`
	Success        bool               `json:"success"`
	Attributes     []AttributeOutcome `json:"attributes"`
	ErrorMessage   *string            `json:"error_message"`
	ProcessingSecs float64            `json:"processing_time"`
	ProviderCalls  int64              `json:"provider_calls"`
	CacheHits      int64              `json:"cache_hits"`
}

// Record views the result's attributes as an ExtractedRecord.
func (r *ParserResult) Record() *ExtractedRecord {
	return &ExtractedRecord{Outcomes: r.Attributes}
}
