package affair

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

func validCandidate() *CandidateAffair {
	return &CandidateAffair{
		SubjectID:       uuid.New(),
		Title:           "Corruption — Jean Dupont",
		Description:     "Condamnation pour corruption passive.",
		Category:        atypes.CategoryCorruption,
		Status:          atypes.StatusConvicted,
		Involvement:     atypes.InvolvementDirect,
		Publication:     atypes.PublicationPublished,
		ConfidenceScore: 95,
		Sources: []Source{
			{URL: "https://kg.example/entity/Q1", Type: atypes.SourceStructured},
		},
		Origin: PhaseStructured,
	}
}

func TestCandidateValidate(t *testing.T) {
	assert.NoError(t, validCandidate().Validate())
}

func TestCandidateValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CandidateAffair)
	}{
		{"missing subject", func(c *CandidateAffair) { c.SubjectID = uuid.Nil }},
		{"blank title", func(c *CandidateAffair) { c.Title = "" }},
		{"bad category", func(c *CandidateAffair) { c.Category = "vol" }},
		{"confidence above range", func(c *CandidateAffair) { c.ConfidenceScore = 101 }},
		{"confidence below range", func(c *CandidateAffair) { c.ConfidenceScore = -1 }},
		{"no sources", func(c *CandidateAffair) { c.Sources = nil }},
		{"unknown origin", func(c *CandidateAffair) { c.Origin = "press" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCandidate()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestCandidateMentionedNeverPublished(t *testing.T) {
	c := validCandidate()
	c.Involvement = atypes.InvolvementMentioned
	assert.Error(t, c.Validate())

	c.Publication = atypes.PublicationDraft
	assert.NoError(t, c.Validate())
}

func TestCandidateTextPhaseNeverPublished(t *testing.T) {
	c := validCandidate()
	c.Origin = PhaseText
	assert.Error(t, c.Validate())

	c.Publication = atypes.PublicationDraft
	assert.NoError(t, c.Validate())
}

func TestCandidateDedupKey(t *testing.T) {
	c := validCandidate()
	assert.Equal(t, c.SubjectID.String()+"/corruption", c.DedupKey())
}

func TestCandidateToPersisted(t *testing.T) {
	c := validCandidate()
	facts := time.Date(2016, time.May, 2, 0, 0, 0, 0, time.UTC)
	c.FactsDate = &facts
	c.CaseNumbers = []string{"44/16"}
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)

	a := c.ToPersisted("corruption-jean-dupont", now)
	require.NoError(t, a.Validate())
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, c.SubjectID, a.SubjectID)
	assert.Equal(t, "corruption-jean-dupont", a.Slug)
	assert.Equal(t, c.Title, a.Title)
	assert.Equal(t, c.Category, a.Category)
	assert.Equal(t, []string{"44/16"}, a.CaseNumbers)
	assert.Equal(t, now, a.CreatedAt)

	// Published candidates get the verification stamp at conversion.
	require.NotNil(t, a.VerifiedAt)
	assert.Equal(t, now, *a.VerifiedAt)
}

func TestCandidateToPersistedDraftHasNoVerifiedAt(t *testing.T) {
	c := validCandidate()
	c.Publication = atypes.PublicationDraft
	c.Involvement = atypes.InvolvementMentioned

	a := c.ToPersisted("corruption-jean-dupont", time.Now())
	assert.Nil(t, a.VerifiedAt)
}
