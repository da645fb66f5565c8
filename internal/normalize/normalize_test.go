package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alcyxob/fitness-catalog/internal/domain"
)

func TestDifficulty(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Difficulty
	}{
		{"", domain.DifficultyBeginner},
		{"Beginner", domain.DifficultyBeginner},
		{"INTERMEDIATE", domain.DifficultyIntermediate},
		{"advanced", domain.DifficultyAdvanced},
		{"expert", domain.DifficultyBeginner},
		{" advanced ", domain.DifficultyBeginner},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Difficulty(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCategoryIsIdempotent(t *testing.T) {
	for _, raw := range []string{"", "Strength", "CARDIO", "olympic weightlifting", "Plyo-Metrics"} {
		once := Category(raw)
		assert.Equal(t, once, Category(once), raw)
	}
	assert.Equal(t, "", Category(""))
	assert.Equal(t, "strength", Category("Strength"))
}

func TestName(t *testing.T) {
	assert.Equal(t, Name("pushup"), Name("Push-Up!"))
	assert.Equal(t, "34situp", Name("3/4 Sit-Up"))
	assert.Equal(t, "barbellsquat", Name("Barbell Squat"))
	assert.Equal(t, "", Name("  --  "))

	for _, raw := range []string{"Push-Up!", "3/4 Sit-Up", "Ünïcode Curl"} {
		assert.Equal(t, Name(raw), Name(Name(raw)), raw)
	}
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "barbell", FirstWord("Barbell Squat"))
	assert.Equal(t, "3", FirstWord("3/4 Sit-Up"))
	assert.Equal(t, "push", FirstWord("  Push-Up"))
	assert.Equal(t, "", FirstWord("!!"))
}

func TestMissingPredicates(t *testing.T) {
	assert.True(t, IsMissingArray(nil))
	assert.True(t, IsMissingArray([]string{}))
	assert.False(t, IsMissingArray([]string{"glutes"}))

	assert.True(t, IsMissingText(""))
	assert.True(t, IsMissingText(" \t\n"))
	assert.False(t, IsMissingText("Lie flat"))
}

func TestCanonicalCasing(t *testing.T) {
	assert.False(t, IsCanonicalDifficulty(""))
	assert.False(t, IsCanonicalDifficulty("Beginner"))
	assert.True(t, IsCanonicalDifficulty("beginner"))
	assert.False(t, IsCanonicalDifficulty("expert"))

	assert.True(t, IsCanonicalCategory(""))
	assert.True(t, IsCanonicalCategory("strength"))
	assert.False(t, IsCanonicalCategory("Strength"))
}
