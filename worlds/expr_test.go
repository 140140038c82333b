package worlds

import (
	"strings"
	"testing"
)

func TestEvalExpr(t *testing.T) {
	s, err := New(2, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		expr       string
		wantWorlds []int
	}{
		{"B1", []int{2, 3}},
		{"B2", []int{1, 3}},
		{"!B1", []int{0, 1}},
		{"B1 & B2", []int{3}},
		{"B1 | B2", []int{1, 2, 3}},
		{"B1 && !B2", []int{2}},
		{"!(B1 | B2)", []int{0}},
		{"B1 ∩ B2", []int{3}},
		{"B1 ∪ ¬B2", []int{0, 2, 3}},
		{"(B1)", []int{2, 3}},
		{"B1 & !B1", nil},
		{"B1 | !B1", []int{0, 1, 2, 3}},
		// NOT binds tighter than AND, AND tighter than OR.
		{"!B1 & B2 | B1", []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res, err := s.EvalExpr(tt.expr)
			if err != nil {
				t.Fatalf("EvalExpr(%q) error: %v", tt.expr, err)
			}
			if len(res.Worlds) != len(tt.wantWorlds) {
				t.Fatalf("EvalExpr(%q) worlds = %v, want %v", tt.expr, res.Worlds, tt.wantWorlds)
			}
			for i := range res.Worlds {
				if res.Worlds[i] != tt.wantWorlds[i] {
					t.Fatalf("EvalExpr(%q) worlds = %v, want %v", tt.expr, res.Worlds, tt.wantWorlds)
				}
			}
			if len(res.Labels) != len(res.Worlds) || len(res.Bitstrings) != len(res.Worlds) {
				t.Errorf("EvalExpr(%q): view slices out of step with worlds", tt.expr)
			}
		})
	}
}

func TestEvalExprNotation(t *testing.T) {
	s, _ := New(3, nil)
	tests := []struct {
		expr string
		want string
	}{
		{"B1 & B2", "B1∩B2"},
		{"B1 && B2 || B3", "B1∩B2∪B3"},
		{"!B1", "¬B1"},
		{"!(B1 | B2)", "¬(B1∪B2)"},
		{"(B1 | B2) & B3", "(B1∪B2)∩B3"},
	}
	for _, tt := range tests {
		res, err := s.EvalExpr(tt.expr)
		if err != nil {
			t.Fatalf("EvalExpr(%q) error: %v", tt.expr, err)
		}
		if res.Notation != tt.want {
			t.Errorf("EvalExpr(%q) notation = %q, want %q", tt.expr, res.Notation, tt.want)
		}
	}
}

func TestEvalExprErrors(t *testing.T) {
	s, _ := New(2, nil)
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"bad token", "B1 & %"},
		{"bare B", "B"},
		{"unknown proposition", "B3"},
		{"trailing input", "B1 B2"},
		{"dangling operator", "B1 &"},
		{"unmatched open", "(B1"},
		{"unmatched close", "B1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.EvalExpr(tt.expr)
			if err == nil {
				t.Fatalf("EvalExpr(%q) expected error", tt.expr)
			}
			if !strings.HasPrefix(err.Error(), "not well-formed:") {
				t.Errorf("EvalExpr(%q) error = %q, want not well-formed prefix", tt.expr, err.Error())
			}
		})
	}
}

func TestWorldsSatisfying(t *testing.T) {
	s, _ := New(3, nil)
	got := s.WorldsSatisfying(func(bits string) bool {
		return strings.HasPrefix(bits, "1")
	})
	want := []int{4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("WorldsSatisfying = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("WorldsSatisfying = %v, want %v", got, want)
		}
	}
}
