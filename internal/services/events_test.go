package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisPublisher_Publish(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, models.AdminEventsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	quizID := uuid.New()
	NewRedisPublisher(client).Publish(ctx, models.EventQuizChanged, models.QuizChangedEvent{QuizID: quizID, Action: "deleted"})

	select {
	case msg := <-sub.Channel():
		var got struct {
			Type    string                  `json:"type"`
			Payload models.QuizChangedEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, models.EventQuizChanged, got.Type)
		require.Equal(t, quizID, got.Payload.QuizID)
		require.Equal(t, "deleted", got.Payload.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisPublisher_PublishFailureIsSwallowed(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	require.NotPanics(t, func() {
		NewRedisPublisher(client).Publish(context.Background(), models.EventFeedbackCreated, map[string]string{"a": "b"})
	})
}

func TestFeedbackQueue_Enqueue(t *testing.T) {
	mr, client := newRedis(t)
	q := NewFeedbackQueue(client)

	n := models.FeedbackNotification{
		FeedbackID: uuid.New(),
		Recipient:  "admin@example.com",
		From:       "user@example.com",
		Type:       models.FeedbackBugReport,
		Message:    "broken",
	}
	require.NoError(t, q.Enqueue(context.Background(), n))
	require.NoError(t, q.Enqueue(context.Background(), n))

	items, err := mr.List(models.FeedbackNotificationQueue)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var job models.Job
	require.NoError(t, json.Unmarshal([]byte(items[0]), &job))
	require.Equal(t, models.JobTypeFeedbackNotification, job.Type)

	var payload models.FeedbackNotification
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	require.Equal(t, n, payload)
}
