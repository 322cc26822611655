package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_VerdictAndRecommendation(t *testing.T) {
	kids := &Check{Status: CheckStatusSucceeded, IsForKids: true}
	adults := &Check{Status: CheckStatusSucceeded}

	assert.True(t, kids.Succeeded())
	assert.Equal(t, "Kid-Friendly", kids.Verdict())
	assert.Contains(t, kids.Recommendation(), "suitable for children")
	assert.Equal(t, "Not for Kids", adults.Verdict())
	assert.Contains(t, adults.Recommendation(), "review it yourself")
	assert.False(t, (&Check{Status: CheckStatusFailed}).Succeeded())
}
