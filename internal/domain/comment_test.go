package domain

import "testing"

func TestFilters_Match(t *testing.T) {
	c := Comment{
		ID:         "1",
		AuthorID:   "u1",
		AuthorName: "Ada",
		Content:    "Logo needs more contrast",
		Type:       CommentText,
		Status:     CommentOpen,
		Priority:   PriorityHigh,
		AssignedTo: "u2",
		Tags:       []string{"design", "logo"},
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty", Filters{}, true},
		{"status match", Filters{Status: []CommentStatus{CommentOpen}}, true},
		{"status miss", Filters{Status: []CommentStatus{CommentResolved}}, false},
		{"priority", Filters{Priority: []Priority{PriorityLow, PriorityHigh}}, true},
		{"type miss", Filters{Type: []CommentType{CommentVoice}}, false},
		{"author", Filters{AuthorID: "u1"}, true},
		{"author miss", Filters{AuthorID: "u9"}, false},
		{"assignee", Filters{AssignedTo: "u2"}, true},
		{"all tags", Filters{Tags: []string{"logo", "design"}}, true},
		{"missing tag", Filters{Tags: []string{"logo", "copy"}}, false},
		{"query content", Filters{Query: "CONTRAST"}, true},
		{"query author", Filters{Query: "ada"}, true},
		{"query miss", Filters{Query: "typography"}, false},
		{"blank query", Filters{Query: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Match(c); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilters_IsZero(t *testing.T) {
	if !(Filters{}).IsZero() {
		t.Error("empty filters should be zero")
	}
	if (Filters{Query: "x"}).IsZero() {
		t.Error("query filter should not be zero")
	}
}

func TestComment_Clone(t *testing.T) {
	c := Comment{Tags: []string{"a"}, Position: &Position{X: 1}}
	cp := c.Clone()
	cp.Tags[0] = "b"
	cp.Position.X = 2
	if c.Tags[0] != "a" || c.Position.X != 1 {
		t.Error("Clone shares memory with the original")
	}
}
