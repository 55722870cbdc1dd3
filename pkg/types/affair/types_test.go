package affair

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValidity(t *testing.T) {
	assert.True(t, CategoryCorruption.IsValid())
	assert.True(t, CategoryEmbezzlement.IsValid())
	assert.True(t, CategoryOther.IsValid())
	assert.False(t, Category("bribery").IsValid())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("fraude_fiscale")
	assert.NoError(t, err)
	assert.Equal(t, CategoryTaxFraud, c)

	_, err = ParseCategory("unknown")
	assert.Error(t, err)
}

func TestProceedingStatusValidity(t *testing.T) {
	assert.True(t, StatusConvicted.IsValid())
	assert.True(t, StatusCharged.IsValid())
	assert.False(t, ProceedingStatus("jugement").IsValid())
}

func TestInvolvementPublishable(t *testing.T) {
	assert.True(t, InvolvementDirect.Publishable())
	assert.True(t, InvolvementVictim.Publishable())
	assert.True(t, InvolvementPlaintiff.Publishable())
	assert.False(t, InvolvementMentioned.Publishable())
	assert.False(t, Involvement("observateur").Publishable())
}

func TestSourceTypeParse(t *testing.T) {
	s, err := ParseSourceType("press")
	assert.NoError(t, err)
	assert.Equal(t, SourcePress, s)

	_, err = ParseSourceType("blog")
	assert.Error(t, err)
}

func TestPublicationStatusParse(t *testing.T) {
	p, err := ParsePublicationStatus("published")
	assert.NoError(t, err)
	assert.Equal(t, PublicationPublished, p)

	_, err = ParsePublicationStatus("hidden")
	assert.Error(t, err)
}

func TestMatchConfidenceOrdering(t *testing.T) {
	assert.True(t, MatchCertain.AtLeast(MatchHigh))
	assert.True(t, MatchHigh.AtLeast(MatchHigh))
	assert.True(t, MatchHigh.AtLeast(MatchLow))
	assert.False(t, MatchLow.AtLeast(MatchHigh))
	assert.False(t, MatchNone.AtLeast(MatchLow))
}

func TestClaimKindValidity(t *testing.T) {
	assert.True(t, ClaimConvictedOf.IsValid())
	assert.True(t, ClaimChargedWith.IsValid())
	assert.False(t, ClaimKind("accused_of").IsValid())
}
