package garden

import (
	"strings"
	"testing"

	"github.com/julianstephens/waterme/internal/bucket"
)

func TestSection_Header(t *testing.T) {
	tests := []struct {
		kind bucket.Kind
		icon string
	}{
		{bucket.Late, "🥀"},
		{bucket.Today, "💧"},
		{bucket.Tomorrow, "🌤"},
		{bucket.ThisWeek, "🌱"},
		{bucket.Later, "🌳"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := Section{Title: tt.kind.String(), Kind: tt.kind, Rows: []Row{{ID: "r1"}, {ID: "r2"}}}
			got := s.header()
			if !strings.Contains(got, tt.icon) || !strings.Contains(got, tt.kind.String()+" (2)") {
				t.Errorf("header() = %q", got)
			}
		})
	}
	if sectionColors[bucket.Late] == sectionColors[bucket.Later] {
		t.Error("late and later sections share a colour")
	}
}
