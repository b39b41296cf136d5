package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/handlers"
	"quizhub-backend/internal/metrics"
	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository/memrepo"
	"quizhub-backend/internal/services"
)

type apiTest struct {
	t       *testing.T
	handler http.Handler
	store   *memrepo.Store
	admin   string
	user    string
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()

	st := memrepo.New()
	jwtAuth := middleware.NewJWTAuth("router-test-secret")
	auth := middleware.NewAuthenticator(jwtAuth, st.Users())

	h := New(Deps{
		Auth:              auth,
		Metrics:           metrics.New(),
		QuizHandler:       handlers.NewQuizHandler(services.NewQuizService(st.Quizzes(), nil)),
		SubmissionHandler: handlers.NewSubmissionHandler(services.NewSubmissionService(st.Quizzes(), st.Submissions(), nil, nil)),
		FeedbackHandler:   handlers.NewFeedbackHandler(services.NewFeedbackService(st.Feedback(), st.Quizzes(), nil, nil, "")),
		UserHandler:       handlers.NewUserHandler(services.NewUserService(st.Users(), "admin@example.com")),
		FrontendURL:       "http://localhost:3000",
	})

	issue := func(sub, email string) string {
		token, err := jwtAuth.IssueToken(models.Identity{Subject: sub, Email: email})
		require.NoError(t, err)
		return token
	}

	a := &apiTest{t: t, handler: h, store: st,
		admin: issue("admin-sub", "admin@example.com"),
		user:  issue("user-sub", "user@example.com"),
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/users/sync", a.admin, nil).Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/users/sync", a.user, nil).Code)
	return a
}

func (a *apiTest) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (a *apiTest) createQuiz(published bool) models.QuizDetail {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/quizzes", a.admin, map[string]any{
		"title":       "Basics",
		"description": "Two questions",
		"category":    "General",
		"difficulty":  "EASY",
		"isPublished": published,
		"questions": []map[string]any{
			{"question": "Q1", "options": []string{"a", "b"}, "correctAnswer": 0},
			{"question": "Q2", "options": []string{"a", "b", "c"}, "correctAnswer": 1},
		},
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.QuizDetail](a.t, rr)
}

func (a *apiTest) submit(quizID string, answers []int) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodPost, "/api/submissions", a.user, map[string]any{
		"quizId":    quizID,
		"answers":   answers,
		"timeSpent": 42,
		"startedAt": time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
}

func TestHealth(t *testing.T) {
	a := newAPITest(t)
	rr := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPITest(t)

	for _, path := range []string{"/api/quizzes", "/api/submissions", "/api/users/me"} {
		rr := a.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
		require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	}

	rr := a.do(http.MethodGet, "/api/quizzes", "forged.token.value", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/quizzes"},
		{http.MethodPut, "/api/quizzes/" + quiz.ID.String()},
		{http.MethodDelete, "/api/quizzes/" + quiz.ID.String()},
		{http.MethodGet, "/api/feedback"},
	}
	for _, tc := range tests {
		rr := a.do(tc.method, tc.path, a.user, map[string]any{})
		require.Equal(t, http.StatusForbidden, rr.Code, tc.method+" "+tc.path)
	}
}

func TestGetQuiz_UserNeverSeesCorrectAnswer(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)
	path := "/api/quizzes/" + quiz.ID.String()

	rr := a.do(http.MethodGet, path, a.user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotContains(t, rr.Body.String(), "correctAnswer")

	detail := decode[models.QuizDetail](t, rr)
	require.Len(t, detail.Questions, 2)
	require.Equal(t, 0, detail.Questions[0].Order)
	require.Equal(t, 1, detail.Questions[1].Order)

	rr = a.do(http.MethodGet, path, a.admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail = decode[models.QuizDetail](t, rr)
	require.NotNil(t, detail.Questions[1].CorrectAnswer)
	require.Equal(t, 1, *detail.Questions[1].CorrectAnswer)
}

func TestGetQuiz_Unpublished(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(false)
	path := "/api/quizzes/" + quiz.ID.String()

	rr := a.do(http.MethodGet, path, a.user, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.NotContains(t, rr.Body.String(), "correctAnswer")

	rr = a.do(http.MethodGet, path, a.admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "correctAnswer")

	rr = a.do(http.MethodGet, "/api/quizzes/not-a-uuid", a.user, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListQuizzes_Visibility(t *testing.T) {
	a := newAPITest(t)
	published := a.createQuiz(true)
	a.createQuiz(false)

	rr := a.do(http.MethodGet, "/api/quizzes", a.user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]models.QuizSummary](t, rr)
	require.Len(t, list, 1)
	require.Equal(t, published.ID, list[0].ID)
	require.Equal(t, 2, list[0].QuestionCount)
	require.NotContains(t, rr.Body.String(), "correctAnswer")

	rr = a.do(http.MethodGet, "/api/quizzes?difficulty=easy", a.admin, nil)
	require.Len(t, decode[[]models.QuizSummary](t, rr), 2)

	rr = a.do(http.MethodGet, "/api/quizzes?difficulty=IMPOSSIBLE", a.admin, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateQuiz_InvalidQuestionKeepsExistingSet(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)
	path := "/api/quizzes/" + quiz.ID.String()

	rr := a.do(http.MethodPut, path, a.admin, map[string]any{
		"title": "Renamed",
		"questions": []map[string]any{
			{"question": "New", "options": []string{"x", "y"}, "correctAnswer": 5},
		},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Contains(t, body.Error.Fields, "questions[0].correctAnswer")

	detail := decode[models.QuizDetail](t, a.do(http.MethodGet, path, a.admin, nil))
	require.Equal(t, "Basics", detail.Title)
	require.Len(t, detail.Questions, 2)
	for i, q := range detail.Questions {
		require.Equal(t, quiz.Questions[i].ID, q.ID)
		require.Equal(t, quiz.Questions[i].Question, q.Question)
	}
}

func TestUpdateQuiz_ReplacesQuestions(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)
	path := "/api/quizzes/" + quiz.ID.String()

	rr := a.do(http.MethodPut, path, a.admin, map[string]any{
		"questions": []map[string]any{
			{"question": "Only", "options": []string{"x", "y"}, "correctAnswer": 1, "points": 3},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	detail := decode[models.QuizDetail](t, rr)
	require.Len(t, detail.Questions, 1)
	require.Equal(t, "Only", detail.Questions[0].Question)
	require.Equal(t, 3, detail.Questions[0].Points)

	rr = a.do(http.MethodPut, "/api/quizzes/6f1c7a52-3a64-4a3e-9d55-0d3f1c2b9a10", a.admin, map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmit_GradesPositionally(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)

	tests := []struct {
		answers []int
		score   int
	}{
		{[]int{0, 1}, 2},
		{[]int{1, 1}, 1},
		{[]int{-1, 1}, 1},
		{[]int{0}, 1},
		{[]int{0, 7}, 1},
		{[]int{}, 0},
		{[]int{3000000000, 1}, 1},
	}

	for _, tc := range tests {
		rr := a.submit(quiz.ID.String(), tc.answers)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		sub := decode[models.Submission](t, rr)
		require.Equal(t, tc.score, sub.Score, "answers %v", tc.answers)
		require.Equal(t, 2, sub.TotalPoints)
		require.Len(t, sub.Answers, 2)
		for _, ans := range sub.Answers {
			require.True(t, ans == models.Unanswered || (ans >= 0 && ans < 3), "stored answer %d", ans)
		}
		require.Equal(t, "Basics", sub.Quiz.Title)
		require.Equal(t, 42, sub.TimeSpent)
	}
}

func TestSubmit_DuplicatesAreKept(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)

	first := decode[models.Submission](t, a.submit(quiz.ID.String(), []int{0, 1}))
	second := decode[models.Submission](t, a.submit(quiz.ID.String(), []int{0, 1}))

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, first.Score, second.Score)

	rr := a.do(http.MethodGet, "/api/submissions?quizId="+quiz.ID.String(), a.user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]models.Submission](t, rr)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	rr = a.do(http.MethodGet, "/api/submissions", a.admin, nil)
	require.Empty(t, decode[[]models.Submission](t, rr))
}

func TestSubmit_Rejections(t *testing.T) {
	a := newAPITest(t)
	draft := a.createQuiz(false)

	rr := a.submit(draft.ID.String(), []int{0, 1})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "QUIZ_UNAVAILABLE")

	rr = a.submit("6f1c7a52-3a64-4a3e-9d55-0d3f1c2b9a10", []int{0})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(http.MethodPost, "/api/submissions", a.user, map[string]any{"quizId": draft.ID.String(), "answers": []int{0}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "startedAt")

	rr = a.do(http.MethodPost, "/api/submissions", a.user, map[string]any{"quizId": draft.ID.String(), "answers": "0,1", "startedAt": time.Now()})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	require.Zero(t, a.store.Submissions().Len())
}

func TestDeleteQuiz_KeepsSubmissionSnapshot(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)
	require.Equal(t, http.StatusCreated, a.submit(quiz.ID.String(), []int{0, 1}).Code)

	path := "/api/quizzes/" + quiz.ID.String()
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, path, a.admin, nil).Code)
	require.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, a.admin, nil).Code)
	require.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, a.admin, nil).Code)

	list := decode[[]models.Submission](t, a.do(http.MethodGet, "/api/submissions", a.user, nil))
	require.Len(t, list, 1)
	require.Nil(t, list[0].QuizID)
	require.Equal(t, "Basics", list[0].Quiz.Title)
	require.Equal(t, 2, list[0].Score)
}

func TestFeedbackLifecycle(t *testing.T) {
	a := newAPITest(t)
	quiz := a.createQuiz(true)

	rr := a.do(http.MethodPost, "/api/feedback", a.user, map[string]any{
		"message": "  Question 2 is ambiguous  ",
		"type":    "question",
		"quizId":  quiz.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[models.Feedback](t, rr)
	require.Equal(t, "Question 2 is ambiguous", created.Message)
	require.Equal(t, models.FeedbackType("QUESTION"), created.Type)
	require.False(t, created.IsRead)

	rr = a.do(http.MethodPost, "/api/feedback", a.user, map[string]any{"message": " ", "type": "BUG_REPORT"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	path := "/api/feedback/" + created.ID.String()
	rr = a.do(http.MethodPut, path, a.admin, map[string]any{"isRead": true})
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, decode[models.Feedback](t, rr).IsRead)

	list := decode[[]models.Feedback](t, a.do(http.MethodGet, "/api/feedback?isRead=true", a.admin, nil))
	require.Len(t, list, 1)
	require.Equal(t, "Basics", list[0].Quiz.Title)

	require.Empty(t, decode[[]models.Feedback](t, a.do(http.MethodGet, "/api/feedback?isRead=false", a.admin, nil)))
	require.Len(t, decode[[]models.Feedback](t, a.do(http.MethodGet, "/api/feedback?type=question", a.admin, nil)), 1)

	rr = a.do(http.MethodGet, "/api/feedback?type=foo", a.admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, path, a.admin, nil).Code)
	require.Equal(t, http.StatusNotFound, a.do(http.MethodPut, path, a.admin, map[string]any{"isRead": false}).Code)
}

func TestUsersMe(t *testing.T) {
	a := newAPITest(t)

	me := decode[models.User](t, a.do(http.MethodGet, "/api/users/me", a.admin, nil))
	require.Equal(t, models.RoleAdmin, me.Role)
	require.Equal(t, "admin", me.DisplayName)

	rr := a.do(http.MethodPut, "/api/users/me", a.user, map[string]any{"displayName": "Quiz Taker"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Quiz Taker", decode[models.User](t, rr).DisplayName)

	rr = a.do(http.MethodPost, "/api/users/sync", a.user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, models.RoleUser, decode[models.User](t, rr).Role)
}

func TestUsersSync_ChunkedEmptyBody(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/sync", strings.NewReader(""))
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer "+a.user)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, models.RoleUser, decode[models.User](t, rr).Role)
}

func TestCORSPreflight(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/quizzes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPITest(t)
	a.do(http.MethodGet, "/health", "", nil)

	rr := a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `route="/health"`))
}
