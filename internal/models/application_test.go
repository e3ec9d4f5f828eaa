package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicantViewHidesUnapprovedRemarks(t *testing.T) {
	app := &Application{PARemarks: "Needs claims narrowed"}

	view := app.ApplicantView()
	assert.Empty(t, view.PARemarks)
	assert.Equal(t, "Needs claims narrowed", app.PARemarks, "original must not be mutated")

	app.PARemarksApprovedByAdmin = true
	assert.Equal(t, "Needs claims narrowed", app.ApplicantView().PARemarks)
}

func TestApplicationPatchApplyMatchesColumns(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	status := StatusRejected
	comments := "Prior art exists"
	reviewer := "Dr. Rao"

	patch := ApplicationPatch{
		Status:         &status,
		ReviewComments: &comments,
		ReviewedBy:     &reviewer,
		ReviewedAt:     &now,
	}

	cols := patch.Columns(now)
	assert.Equal(t, StatusRejected, cols["status"])
	assert.Equal(t, comments, cols["review_comments"])
	assert.Equal(t, now, cols["updated_at"])
	assert.NotContains(t, cols, "title")
	assert.NotContains(t, cols, "application_number")

	app := &Application{Title: "Drone", Status: StatusApproved}
	patch.Apply(app, now)
	assert.Equal(t, StatusRejected, app.Status)
	assert.Equal(t, comments, app.ReviewComments)
	assert.Equal(t, reviewer, app.ReviewedBy)
	assert.Equal(t, "Drone", app.Title)
	assert.Equal(t, now, app.UpdatedAt)
}

func TestAttachmentsRoundTrip(t *testing.T) {
	in := Attachments{{ID: "f1", Name: "spec.pdf", URL: "https://cdn/x.pdf", Size: 42, Type: "application/pdf"}}

	v, err := in.Value()
	require.NoError(t, err)

	var out Attachments
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[0].Size, out[0].Size)

	empty, err := Attachments(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}
