package statute

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	stop := BuildStopWordMap(DefaultStopWords)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{}},
		{"punctuation split", "Personal-information, processing; consent.", []string{"personal", "information", "processing", "consent"}},
		{"stop words dropped", "The Commission shall have the following functions", []string{"commission", "following", "functions"}},
		{"case folded", "CONSENT Consent consent", []string{"consent", "consent", "consent"}},
		{"underscores kept", "data_subject and data subject", []string{"data_subject", "data", "subject"}},
		{"negation kept", "shall not process", []string{"not", "process"}},
		{"numbers kept", "Section 25 of R.A. 10173", []string{"section", "25", "r", "10173"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input, stop)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTerm(t *testing.T) {
	tests := map[string]string{
		"Consent":                    "consent",
		`"Data Subject"`:             "data subject",
		"  personal   information  ": "personal information",
		"“Processing”":               "processing",
	}
	for input, expected := range tests {
		if got := normalizeTerm(input); got != expected {
			t.Errorf("normalizeTerm(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func testIndex() *SearchIndex {
	return buildIndex([]Section{
		{Number: "2", Title: "Scope", Body: "Privacy applies to processing."},
		{Number: "10", Title: "Privacy", Body: "Security of processing and more processing."},
		{Number: "3", Title: "Definitions", Body: "Consent means agreement."},
		{Number: "10A", Title: "Extra", Body: "Privacy notice."},
	}, BuildStopWordMap(DefaultStopWords))
}

func TestSearchIndex_Search(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name     string
		query    string
		expected []SearchHit
	}{
		{
			name:     "single token ranked by count",
			query:    "processing",
			expected: []SearchHit{{Section: "10", Score: 2}, {Section: "2", Score: 1}},
		},
		{
			name:     "ties broken by numeric section order",
			query:    "privacy",
			expected: []SearchHit{{Section: "2", Score: 1}, {Section: "10", Score: 1}, {Section: "10A", Score: 1}},
		},
		{
			name:     "scores accumulate across tokens",
			query:    "privacy processing",
			expected: []SearchHit{{Section: "10", Score: 3}, {Section: "2", Score: 2}, {Section: "10A", Score: 1}},
		},
		{
			name:     "repeated query tokens count once",
			query:    "consent consent CONSENT",
			expected: []SearchHit{{Section: "3", Score: 1}},
		},
		{name: "empty query", query: "", expected: []SearchHit{}},
		{name: "only stop words", query: "the and of", expected: []SearchHit{}},
		{name: "unknown token", query: "zzz_no_such_token", expected: []SearchHit{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Search(tt.query)
			if got == nil {
				t.Fatal("Search must not return nil")
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Search(%q) = %v, expected %v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestSearchIndex_Lookups(t *testing.T) {
	idx := testIndex()

	if got := idx.Sections("PRIVACY"); !reflect.DeepEqual(got, []string{"2", "10", "10A"}) {
		t.Errorf("Unexpected sections: %v", got)
	}
	if got := idx.Count("processing", "10"); got != 2 {
		t.Errorf("Expected count 2, got %d", got)
	}
	if got := idx.Count("processing", "3"); got != 0 {
		t.Errorf("Expected count 0, got %d", got)
	}
	if _, ok := idx.Postings()["the"]; ok {
		t.Error("Stop words must not be indexed")
	}

	// Postings is a copy
	p := idx.Postings()
	p["processing"]["10"] = 99
	if idx.Count("processing", "10") != 2 {
		t.Error("Postings must not alias the index")
	}
}

func TestSearchIndex_Nil(t *testing.T) {
	var idx *SearchIndex
	if idx.Terms() != 0 || len(idx.Search("x")) != 0 || len(idx.Postings()) != 0 || idx.Sections("x") != nil {
		t.Error("Nil index must behave as empty")
	}
}

func TestCompareSectionNumbers(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"10", "10", 0},
		{"10", "10A", -1},
		{"10B", "10A", 1},
		{"I", "II", -1},
	}
	for _, tt := range tests {
		if got := compareSectionNumbers(tt.a, tt.b); got != tt.expected {
			t.Errorf("compareSectionNumbers(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
