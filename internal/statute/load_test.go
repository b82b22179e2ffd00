package statute

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

const shortAct = "Section 1. Short Title\nThis Act shall be known...\nSection 2. Definitions\n(a) Consent means ...\nSection 3. Lawful Processing\nProcessing shall be permitted when ..."

const dpaExcerpt = `REPUBLIC ACT NO. 10173
AN ACT PROTECTING INDIVIDUAL PERSONAL INFORMATION IN INFORMATION AND COMMUNICATIONS SYSTEMS

CHAPTER I
GENERAL PROVISIONS

SEC. 1. Short Title. – This Act shall be known as the "Data Privacy Act of 2012".

SEC. 3. Definition of Terms. – Whenever used in this Act, the following terms shall have the respective meanings hereafter set forth:
(a) Commission shall refer to the National Privacy Commission created by virtue of this Act;
(b) Consent of the data subject refers to any freely given, specific, informed indication of will, whereby the data subject agrees to the collection and processing of personal information about and/or relating to him or her;
(c) Data subject refers to an individual whose personal information is processed;

SEC. 7. Functions of the National Privacy Commission. – To administer and implement the provisions of this Act, the Commission shall have the following functions:
(a) Ensure compliance of personal information controllers with the provisions of this Act;
(b) Receive complaints, institute investigations, facilitate or enable settlement of complaints;

SEC. 16. Rights of the Data Subject. – The data subject is entitled to:
(a) Be informed whether personal information pertaining to him or her shall be, are being or have been processed;
(b) Reasonable access to, upon demand, the contents of his or her personal information;
(c) Dispute the inaccuracy or error in the personal information and have the personal information controller correct it immediately;

SEC. 25. Unauthorized Processing of Personal Information and Sensitive Personal Information. – (a) The unauthorized processing of personal information shall be penalized by imprisonment ranging from one (1) year to three (3) years and a fine of not less than Five hundred thousand pesos (Php500,000.00) but not more than Two million pesos (Php2,000,000.00) shall be imposed on persons who process personal information without the consent of the data subject.

SEC. 26. Accessing Personal Information and Sensitive Personal Information Due to Negligence. – Persons who, due to negligence, provided access to personal information without being authorized under this Act shall be penalized.
`

func TestLoad_Scenario(t *testing.T) {
	doc, err := Load(shortAct, WithLayout(Layout{Definitions: []string{"2"}}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := len(doc.Sections()); got != 3 {
		t.Fatalf("Expected 3 sections, got %d", got)
	}

	s, err := doc.GetSection("2")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if s.Title != "Definitions" {
		t.Errorf("Expected title 'Definitions', got %q", s.Title)
	}

	def, err := doc.GetDefinition("consent")
	if err != nil {
		t.Fatalf("GetDefinition failed: %v", err)
	}
	if !strings.Contains(def.Text, "means") {
		t.Errorf("Expected definition text to contain 'means', got %q", def.Text)
	}

	hits := doc.Search("processing")
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %v", hits)
	}
	if hits[0].Section != "3" || hits[0].Score != 2 {
		t.Errorf("Expected section 3 with score 2, got %+v", hits[0])
	}
}

func TestLoad_SectionCountAndBodies(t *testing.T) {
	for _, n := range []int{1, 2, 7, 40} {
		t.Run(fmt.Sprintf("%d sections", n), func(t *testing.T) {
			var sb strings.Builder
			for i := 1; i <= n; i++ {
				fmt.Fprintf(&sb, "Section %d. Title %d\nBody text of section %d.\n\n", i, i, i)
			}

			doc, err := Load(sb.String())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			sections := doc.Sections()
			if len(sections) != n {
				t.Fatalf("Expected %d sections, got %d", n, len(sections))
			}
			for i, s := range sections {
				if s.Body == "" {
					t.Errorf("Section %s has empty body", s.Number)
				}
				if s.Number != fmt.Sprint(i+1) {
					t.Errorf("Expected section %d at position %d, got %s", i+1, i, s.Number)
				}
			}
		})
	}
}

func TestGetSection_ExactTrimmedBody(t *testing.T) {
	raw := "Section 1. Alpha\n\n  First line.\n  Second line.  \n\nSection 2. Beta\nOnly line.\n"

	doc, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		number string
		title  string
		body   string
	}{
		{"1", "Alpha", "First line.\n  Second line."},
		{"2", "Beta", "Only line."},
	}
	for _, tt := range tests {
		s, err := doc.GetSection(tt.number)
		if err != nil {
			t.Fatalf("GetSection(%s) failed: %v", tt.number, err)
		}
		if s.Title != tt.title {
			t.Errorf("Section %s: expected title %q, got %q", tt.number, tt.title, s.Title)
		}
		if s.Body != tt.body {
			t.Errorf("Section %s: expected body %q, got %q", tt.number, tt.body, s.Body)
		}
	}
}

func TestGetSection_NotFound(t *testing.T) {
	doc, err := Load(shortAct)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = doc.GetSection("99")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoad_DuplicateSectionLastWins(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	raw := "Section 4. Four\nfour body\nSection 5. First Five\nearlier block\nSection 6. Six\nsix body\nSection 5. Second Five\nlater block\n"
	doc, err := Load(raw, WithLogger(logger))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s, err := doc.GetSection("5")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if s.Body != "later block" || s.Title != "Second Five" {
		t.Errorf("Expected later block to win, got %+v", s)
	}

	if got := len(doc.Sections()); got != 3 {
		t.Errorf("Expected 3 sections after duplicate, got %d", got)
	}
	for _, n := range []string{"4", "6"} {
		if _, err := doc.GetSection(n); err != nil {
			t.Errorf("Section %s lost after duplicate handling: %v", n, err)
		}
	}

	if len(doc.Notes()) != 1 {
		t.Errorf("Expected 1 note, got %v", doc.Notes())
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("Expected a warning to be logged, got: %s", buf.String())
	}
}

func TestLoad_EmptyBodyDropped(t *testing.T) {
	raw := "Section 1. Kept\nbody\nSection 2. Empty\n\n   \nSection 3. Also Kept\nmore body\n"

	doc, err := Load(raw, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := doc.GetSection("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected empty section to be dropped, got %v", err)
	}
	if got := len(doc.Sections()); got != 2 {
		t.Errorf("Expected 2 sections, got %d", got)
	}
	if len(doc.Notes()) != 1 || !strings.Contains(doc.Notes()[0], "empty body") {
		t.Errorf("Expected an empty-body note, got %v", doc.Notes())
	}
}

func TestLoad_EmptyDuplicateDoesNotOverwrite(t *testing.T) {
	raw := "Section 1. One\nreal body\nSection 1. One Again\n\n"

	doc, err := Load(raw, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s, _ := doc.GetSection("1")
	if s.Body != "real body" {
		t.Errorf("Expected earlier block to survive, got %q", s.Body)
	}
}

func TestLoad_PreambleNotIndexed(t *testing.T) {
	raw := "Republic Act preamble zeppelin\n\nSection 1. Title\nBody without the word.\n"

	doc, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if doc.Preamble() != "Republic Act preamble zeppelin" {
		t.Errorf("Unexpected preamble: %q", doc.Preamble())
	}
	if hits := doc.Search("zeppelin"); len(hits) != 0 {
		t.Errorf("Expected preamble tokens not to be indexed, got %v", hits)
	}
}

func TestLoad_MalformedSource(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t\n"},
		{"no boundaries", "Just some text\nwithout any numbered headings.\n"},
		{"only empty sections", "Section 1. One\n\nSection 2. Two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.raw, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
			if !errors.Is(err, ErrMalformedSource) {
				t.Errorf("Expected ErrMalformedSource, got %v", err)
			}
		})
	}
}

func TestLoad_Idempotent(t *testing.T) {
	first, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	second, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if !reflect.DeepEqual(first.Sections(), second.Sections()) {
		t.Error("Sections differ between loads")
	}
	if !reflect.DeepEqual(first.Definitions(), second.Definitions()) {
		t.Error("Definitions differ between loads")
	}
	if !reflect.DeepEqual(first.Index().Postings(), second.Index().Postings()) {
		t.Error("Search index differs between loads")
	}
	if first.ID() == second.ID() {
		t.Error("Expected distinct load IDs")
	}
}

func TestLoad_StatuteHeadings(t *testing.T) {
	doc, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s, err := doc.GetSection("3")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if s.Title != "Definition of Terms" {
		t.Errorf("Expected title 'Definition of Terms', got %q", s.Title)
	}
	if !strings.HasPrefix(s.Body, "Whenever used in this Act") {
		t.Errorf("Expected body to start after the title separator, got %q", s.Body)
	}

	if !strings.HasPrefix(doc.Preamble(), "REPUBLIC ACT NO. 10173") {
		t.Errorf("Unexpected preamble: %q", doc.Preamble())
	}
	if doc.CharCount() != len([]rune(dpaExcerpt)) {
		t.Errorf("Expected char count %d, got %d", len([]rune(dpaExcerpt)), doc.CharCount())
	}
}

func TestLoad_BareHeadingTitleOnNextLine(t *testing.T) {
	raw := "Section 1.\nScope of Application\nThis Act applies to the processing of all types of personal information.\n" +
		"Section 2.\nThis sentence is a body, not a title, because it is long and ends with a period.\n"

	doc, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s1, _ := doc.GetSection("1")
	if s1.Title != "Scope of Application" {
		t.Errorf("Expected title on next line, got %q", s1.Title)
	}
	if !strings.HasPrefix(s1.Body, "This Act applies") {
		t.Errorf("Unexpected body: %q", s1.Body)
	}

	s2, _ := doc.GetSection("2")
	if s2.Title != "" {
		t.Errorf("Expected empty title, got %q", s2.Title)
	}
}

func TestLoad_Definitions(t *testing.T) {
	doc, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defs := doc.Definitions()
	if len(defs) != 3 {
		t.Fatalf("Expected 3 definitions, got %d: %+v", len(defs), defs)
	}

	tests := []struct {
		lookup  string
		term    string
		marker  string
		meaning string
	}{
		{"Commission", "Commission", "a", "the National Privacy Commission"},
		{"CONSENT OF THE DATA SUBJECT", "Consent of the data subject", "b", "any freely given"},
		{"  data   subject ", "Data subject", "c", "an individual whose personal information is processed"},
	}
	for _, tt := range tests {
		def, err := doc.GetDefinition(tt.lookup)
		if err != nil {
			t.Errorf("GetDefinition(%q) failed: %v", tt.lookup, err)
			continue
		}
		if def.Term != tt.term || def.Marker != tt.marker || def.Section != "3" {
			t.Errorf("Unexpected definition for %q: %+v", tt.lookup, def)
		}
		if !strings.HasPrefix(def.Meaning, tt.meaning) {
			t.Errorf("Expected meaning starting with %q, got %q", tt.meaning, def.Meaning)
		}
	}

	if _, err := doc.GetDefinition("blockchain"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoad_Penalties(t *testing.T) {
	doc, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p, err := doc.GetPenalty("25")
	if err != nil {
		t.Fatalf("GetPenalty failed: %v", err)
	}
	if len(p.Fines) != 2 {
		t.Fatalf("Expected 2 fines, got %+v", p.Fines)
	}
	if p.Fines[0].Amount != 500000 || p.Fines[1].Amount != 2000000 {
		t.Errorf("Unexpected fine amounts: %+v", p.Fines)
	}
	if len(p.Imprisonment) != 1 {
		t.Fatalf("Expected 1 imprisonment range, got %+v", p.Imprisonment)
	}
	r := p.Imprisonment[0]
	if r.Min != (Term{Value: 1, Unit: "year"}) || r.Max != (Term{Value: 3, Unit: "year"}) {
		t.Errorf("Unexpected range: %+v", r)
	}
	if r.Max.String() != "3 years" || r.Min.String() != "1 year" {
		t.Errorf("Unexpected term rendering: %s / %s", r.Min, r.Max)
	}

	// A penalty section without numeric patterns is kept with empty lists
	p26, err := doc.GetPenalty("26")
	if err != nil {
		t.Fatalf("GetPenalty(26) failed: %v", err)
	}
	if len(p26.Fines) != 0 || len(p26.Imprisonment) != 0 {
		t.Errorf("Expected empty penalty data, got %+v", p26)
	}

	// Configured but absent sections are simply missing
	if _, err := doc.GetPenalty("30"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(doc.Penalties()) != 2 {
		t.Errorf("Expected 2 penalty sections, got %d", len(doc.Penalties()))
	}
}

func TestLoad_Clauses(t *testing.T) {
	doc, err := Load(dpaExcerpt)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rights := doc.Rights()
	if len(rights) != 3 {
		t.Fatalf("Expected 3 rights, got %d", len(rights))
	}
	if rights[0].Marker != "a" || rights[0].Section != "16" {
		t.Errorf("Unexpected first right: %+v", rights[0])
	}
	if rights[0].Summary != "Be informed whether personal information pertaining to him or her shall be, are being or have been processed" {
		t.Errorf("Unexpected summary: %q", rights[0].Summary)
	}

	if got := len(doc.Functions()); got != 2 {
		t.Errorf("Expected 2 functions, got %d", got)
	}

	// Section 11 is not in the excerpt
	if got := doc.Principles(); len(got) != 0 {
		t.Errorf("Expected no principles, got %v", got)
	}
}

func TestLoad_MissingLayoutSections(t *testing.T) {
	layout := Layout{
		Definitions: []string{"42"},
		Penalties:   []string{"100", "101"},
		Rights:      []string{"nope"},
	}

	doc, err := Load(shortAct, WithLayout(layout))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	stats := doc.Stats()
	if stats.Definitions != 0 || stats.Penalties != 0 || stats.Rights != 0 {
		t.Errorf("Expected empty structures, got %+v", stats)
	}
}

func TestLoad_Clock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	doc, err := Load(shortAct, WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !doc.LoadedAt().Equal(at) {
		t.Errorf("Expected LoadedAt %v, got %v", at, doc.LoadedAt())
	}
	if doc.Stats().Sections != 3 {
		t.Errorf("Expected 3 sections in stats, got %d", doc.Stats().Sections)
	}
}

func TestLoad_CustomGrammar(t *testing.T) {
	g, err := NewGrammar(`^Article\s+(\d+)\s*[-.]\s*(.*)$`, `(?:^|\s)\((\d+)\)`)
	if err != nil {
		t.Fatalf("NewGrammar failed: %v", err)
	}

	raw := "Article 1 - Scope\nApplies here.\nArticle 2 - Principles\n(1) Lawfulness; (2) Fairness; (3) Transparency\n"
	doc, err := Load(raw, WithGrammar(g), WithLayout(Layout{Principles: []string{"2"}}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	principles := doc.Principles()
	if len(principles) != 3 {
		t.Fatalf("Expected 3 principles, got %+v", principles)
	}
	if principles[2].Marker != "3" || principles[2].Text != "Transparency" {
		t.Errorf("Unexpected principle: %+v", principles[2])
	}
}

func TestLoad_TitleAndBodyOnHeadingLine(t *testing.T) {
	raw := "Section 1. Short Title. This Act shall be known as the Privacy Act.\n" +
		"Section 2. Scope\nIt applies to all.\n" +
		"Section 3. This Act shall take effect fifteen days after its publication in two newspapers\n"

	doc, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Notes()) != 0 {
		t.Errorf("Expected no dropped sections, got notes %v", doc.Notes())
	}

	tests := []struct {
		number string
		title  string
		body   string
	}{
		{"1", "Short Title", "This Act shall be known as the Privacy Act."},
		{"2", "Scope", "It applies to all."},
		{"3", "", "This Act shall take effect fifteen days after its publication in two newspapers"},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			s, err := doc.GetSection(tt.number)
			if err != nil {
				t.Fatalf("GetSection failed: %v", err)
			}
			if s.Title != tt.title {
				t.Errorf("Expected title %q, got %q", tt.title, s.Title)
			}
			if s.Body != tt.body {
				t.Errorf("Expected body %q, got %q", tt.body, s.Body)
			}
		})
	}
}
