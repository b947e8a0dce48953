package clone

import "testing"

func TestAddCloneUsesSignificantTokenCounts(t *testing.T) {
	stat := NewStatistic()
	stat.AddSource(FormatGo, 10, 100)

	c := Clone{
		Format: FormatGo,
		DuplicationA: CloneLocation{
			SourceID: "a.go",
			Start:    Position{Line: 1, Position: 0},
			End:      Position{Line: 3, Position: 500},
			Range:    Range{0, 500},
			Tokens:   8,
		},
		DuplicationB: CloneLocation{
			SourceID: "b.go",
			Start:    Position{Line: 1, Position: 0},
			End:      Position{Line: 3, Position: 500},
			Range:    Range{0, 500},
			Tokens:   8,
		},
	}
	stat.AddClone(c)

	if stat.Total.DuplicatedTokens != 16 {
		t.Fatalf("DuplicatedTokens = %d, want 16 (significant-token counts, not byte ranges)", stat.Total.DuplicatedTokens)
	}
	if stat.Total.PercentageTokens > 100 {
		t.Errorf("PercentageTokens = %.2f, should never exceed 100 when duplicated tokens <= total tokens", stat.Total.PercentageTokens)
	}
}
