package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperienceRank(t *testing.T) {
	assert.Equal(t, 3, ExperienceRank("Expert"))
	assert.Equal(t, 3, ExperienceRank(" expert "))
	assert.Equal(t, 2, ExperienceRank(LevelIntermediate))
	assert.Equal(t, 1, ExperienceRank(LevelBeginner))
	assert.Equal(t, 0, ExperienceRank("guru"))
	assert.Equal(t, 0, ExperienceRank(""))
}

func TestPartnerPatchColumns(t *testing.T) {
	subject := "Physics"
	level := "Expert"
	rating := 4.0
	cols := PartnerPatch{Subject: &subject, ExperienceLevel: &level, Rating: &rating}.Columns()

	assert.Equal(t, map[string]any{
		"subject":          "Physics",
		"experience_level": "Expert",
		"experience_rank":  3,
		"rating":           4.0,
	}, cols)
	assert.Empty(t, PartnerPatch{}.Columns())
}
