package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMappingsCoverEveryStatus(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range AllStatuses {
		assert.NotPanics(t, func() { StatusLabel(s) }, string(s))
		assert.NotEmpty(t, StatusColor(s), string(s))
		assert.False(t, seen[StatusLabel(s)], "duplicate label for %s", s)
		seen[StatusLabel(s)] = true
	}
}

func TestStatusMappingPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { StatusLabel(ApplicationStatus("archived")) })
	assert.Panics(t, func() { StatusColor(ApplicationStatus("")) })
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("patent_filed")
	assert.NoError(t, err)
	assert.Equal(t, StatusPatentFiled, s)

	_, err = ParseStatus("filed")
	assert.Error(t, err)
}

func TestAttorneyQueue(t *testing.T) {
	assert.True(t, StatusApproved.InAttorneyQueue())
	assert.True(t, StatusRejected.InAttorneyQueue())
	assert.True(t, StatusPatentFiled.InAttorneyQueue())
	assert.False(t, StatusSubmitted.InAttorneyQueue())
	assert.False(t, StatusDraft.InAttorneyQueue())
	assert.False(t, StatusPublished.InAttorneyQueue())
}
