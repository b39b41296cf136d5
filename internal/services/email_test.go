package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/models"
)

func TestEmailService_DevModeDoesNotSend(t *testing.T) {
	s := NewEmailService("", "587", "", "", "noreply@quizhub.app", "http://localhost:3000")
	require.True(t, s.devMode)

	err := s.SendFeedbackNotification(models.FeedbackNotification{
		FeedbackID: uuid.New(),
		Recipient:  "admin@example.com",
		From:       "user@example.com",
		Type:       models.FeedbackBugReport,
		Message:    "<script>alert(1)</script>",
	})
	require.NoError(t, err)
}

func TestFeedbackLabel(t *testing.T) {
	require.Equal(t, "bug report", feedbackLabel(models.FeedbackBugReport))
	require.Equal(t, "suggestion", feedbackLabel(models.FeedbackSuggestion))
	require.Equal(t, "question", feedbackLabel(models.FeedbackQuestion))
}
