package pipeline

import (
	"testing"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
)

func TestNormalizeGrade(t *testing.T) {
	tests := []struct {
		name  string
		grade string
		want  string
	}{
		{"Clean grade", "B", "B"},
		{"Lowercase", "a", "A"},
		{"Trailing space", "B ", "B"},
		{"Leading space", " A", "A"},
		{"Plus suffix", "A+", "A"},
		{"Minus suffix", "b-", "B"},
		{"Failing grade", "F", "F"},
		{"Unknown letter", "E", "F"},
		{"Word output", "Grade B", "F"},
		{"Empty", "", "F"},
		{"Whitespace only", "   ", "F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeGrade(tt.grade); got != tt.want {
				t.Errorf("normalizeGrade(%q) = %q, want %q", tt.grade, got, tt.want)
			}
		})
	}
}

func TestBypassApprovalGrantsGradeB(t *testing.T) {
	result := bypassApproval(&models.InstructorResult{InstructorName: "Lachlan Giles"})

	if !result.Approved {
		t.Error("bypass result must be approved")
	}
	if result.QualityGrade != "B" {
		t.Errorf("bypass grade = %s, want B", result.QualityGrade)
	}
}
