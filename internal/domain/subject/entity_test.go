package subject

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubjectValidate(t *testing.T) {
	s := &Subject{ID: uuid.New(), FullName: "Jean Dupont"}
	assert.NoError(t, s.Validate())

	assert.Error(t, (&Subject{FullName: "Jean Dupont"}).Validate())
	assert.Error(t, (&Subject{ID: uuid.New(), FullName: "   "}).Validate())
}

func TestHasKnowledgeGraphID(t *testing.T) {
	s := &Subject{ID: uuid.New(), FullName: "Jean Dupont"}
	assert.False(t, s.HasKnowledgeGraphID())

	s.KnowledgeGraphID = "  "
	assert.False(t, s.HasKnowledgeGraphID())

	s.KnowledgeGraphID = "Q12345"
	assert.True(t, s.HasKnowledgeGraphID())
}
