package model

// Document is the root of a recovered document structure.
type Document struct {
	Title    string                   `json:"title"`
	Version  string                   `json:"version"`
	Chapters []*Chapter               `json:"chapters"`
	Tables   map[string]*TableRecord  `json:"tables"`
	Figures  map[string]*FigureRecord `json:"figures"`
}

// NewDocument creates an empty document with allocated root maps.
func NewDocument(title, version string) *Document {
	return &Document{
		Title:   title,
		Version: version,
		Tables:  map[string]*TableRecord{},
		Figures: map[string]*FigureRecord{},
	}
}

// Chapter groups sections in reading order. ChapterNumber is the key
// within the document.
type Chapter struct {
	ChapterNumber int        `json:"chapter_number"`
	Title         string     `json:"title"`
	UserNotes     string     `json:"user_notes,omitempty"`
	Sections      []*Section `json:"sections"`
}

// HasContent reports whether the chapter carries anything worth keeping.
// Chapters with no sections and no user notes are table-of-contents echoes.
func (c *Chapter) HasContent() bool {
	return len(c.Sections) > 0 || c.UserNotes != ""
}

// Section is a flat entry in a chapter's section list. Depth is derived
// from the dotted section number, never stored independently.
type Section struct {
	SectionNumber string `json:"section_number"`
	Prefix        string `json:"prefix,omitempty"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	Depth         int    `json:"depth"`
	// DuplicateIndex distinguishes repeated section numbers (TOC echoes
	// keep their own body); 0 for the first occurrence.
	DuplicateIndex int             `json:"duplicate_index,omitempty"`
	NumberedItems  []NumberedItem  `json:"numbered_items"`
	References     References      `json:"references"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
}

// NumberedItem is an ordinal list entry within a section. Duplicate
// ordinals are permitted; source order is preserved.
type NumberedItem struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Metadata aggregates per-section table/figure counts.
type Metadata struct {
	HasTable    bool   `json:"has_table"`
	HasFigure   bool   `json:"has_figure"`
	TableCount  int    `json:"table_count"`
	FigureCount int    `json:"figure_count"`
	PageNumber  string `json:"page_number"`
}

// TableRecord is a table stored at the document root, owned by exactly
// one section but possibly mentioned by many.
type TableRecord struct {
	Page      int      `json:"page"`
	Accuracy  *float64 `json:"accuracy"`
	Markdown  string   `json:"markdown,omitempty"`
	TableInfo []string `json:"table_info,omitempty"`
	TableName string   `json:"table_name"`
}

// FigureRecord is an extracted figure stored at the document root.
type FigureRecord struct {
	Page      int    `json:"page"`
	ImagePath string `json:"image_path,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

// AttachTable records a table ID on the section and updates its
// metadata counters. Attaching the same ID twice is a no-op.
func (s *Section) AttachTable(id string) {
	for _, existing := range s.References.Tables {
		if existing == id {
			return
		}
	}
	s.References.Tables = append(s.References.Tables, id)
	if s.Metadata != nil {
		s.Metadata.HasTable = true
		s.Metadata.TableCount = len(s.References.Tables)
	}
}

// AttachFigure records a figure ID on the section and updates its
// metadata counters. Attaching the same ID twice is a no-op.
func (s *Section) AttachFigure(id string) {
	for _, existing := range s.References.Figures {
		if existing == id {
			return
		}
	}
	s.References.Figures = append(s.References.Figures, id)
	if s.Metadata != nil {
		s.Metadata.HasFigure = true
		s.Metadata.FigureCount = len(s.References.Figures)
	}
}

// AppendItem adds a numbered list item in encounter order.
func (s *Section) AppendItem(number int, text string) {
	s.NumberedItems = append(s.NumberedItems, NumberedItem{Number: number, Text: text})
}
