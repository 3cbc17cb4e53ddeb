package model

// Mention is an in-body reference with its span in the scanned text.
type Mention struct {
	Reference string `json:"reference"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// References collects what a section points at. Table and figure entries
// hold resolved canonical IDs keyed at the document root, not raw text.
type References struct {
	InternalSections  []Mention `json:"internal_sections"`
	Tables            []string  `json:"table"`
	ExternalDocuments []Mention `json:"external_documents"`
	Figures           []string  `json:"figures"`
}

// Merge appends mention-type references from other, keeping the
// already-resolved table/figure IDs on the receiver untouched.
func (r *References) Merge(other References) {
	r.InternalSections = append(r.InternalSections, other.InternalSections...)
	r.ExternalDocuments = append(r.ExternalDocuments, other.ExternalDocuments...)
}
