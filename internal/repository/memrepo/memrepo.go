// Package memrepo provides in-memory repositories with the same method sets
// and error conventions as the pgx repositories: missing rows yield
// pgx.ErrNoRows, unique violations yield repository.ErrDuplicate.
package memrepo

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository"
)

// Store is the shared state behind all repositories.
type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*models.User
	quizzes     map[uuid.UUID]*models.Quiz
	questions   map[uuid.UUID][]models.Question
	submissions []*models.Submission
	feedback    map[uuid.UUID]*models.Feedback

	// FailWrites, when set, is returned by every mutating call before any
	// state changes.
	FailWrites error

	now  func() time.Time
	last time.Time
}

func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*models.User),
		quizzes:   make(map[uuid.UUID]*models.Quiz),
		questions: make(map[uuid.UUID][]models.Question),
		feedback:  make(map[uuid.UUID]*models.Feedback),
		now:       time.Now,
	}
}

func (s *Store) Users() *UserRepo             { return &UserRepo{s} }
func (s *Store) Quizzes() *QuizRepo           { return &QuizRepo{s} }
func (s *Store) Submissions() *SubmissionRepo { return &SubmissionRepo{s} }
func (s *Store) Feedback() *FeedbackRepo      { return &FeedbackRepo{s} }

// tick returns strictly increasing timestamps so newest-first ordering is stable.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// checkInt4 mirrors the range check pgx applies when encoding an INTEGER
// or INTEGER[] column.
func checkInt4(column string, vals ...int) error {
	for _, v := range vals {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%s: %d is out of range for int4", column, v)
		}
	}
	return nil
}

func questionInts(questions []models.Question) []int {
	out := make([]int, 0, 2*len(questions))
	for _, q := range questions {
		out = append(out, q.CorrectAnswer, q.Points)
	}
	return out
}

// Users

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	for _, u := range r.s.users {
		if u.ExternalID == user.ExternalID || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	existing, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, u := range r.s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}

	existing.Email = user.Email
	existing.DisplayName = user.DisplayName
	existing.Avatar = user.Avatar
	existing.Role = user.Role
	existing.UpdatedAt = r.s.tick()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

// Quizzes

type QuizRepo struct{ s *Store }

func (r *QuizRepo) withCreator(q *models.Quiz) *models.Quiz {
	cp := *q
	if u, ok := r.s.users[q.CreatedBy]; ok {
		cp.Creator = &models.UserRef{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
	}
	return &cp
}

func (r *QuizRepo) List(_ context.Context, f models.QuizFilter) ([]*models.QuizSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.QuizSummary
	for _, q := range r.s.quizzes {
		if f.PublishedOnly && !q.IsPublished {
			continue
		}
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		out = append(out, &models.QuizSummary{
			Quiz:            *r.withCreator(q),
			QuestionCount:   len(r.s.questions[q.ID]),
			SubmissionCount: r.s.countSubmissions(q.ID),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *QuizRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.withCreator(q), nil
}

func (r *QuizRepo) ListQuestions(_ context.Context, quizID uuid.UUID) ([]models.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := cloneQuestions(r.s.questions[quizID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *QuizRepo) CountSubmissions(_ context.Context, quizID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.countSubmissions(quizID), nil
}

func (r *QuizRepo) Create(_ context.Context, quiz *models.Quiz, questions []models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	if err := checkInt4("questions", questionInts(questions)...); err != nil {
		return err
	}
	if quiz.TimeLimit != nil {
		if err := checkInt4("time_limit", *quiz.TimeLimit); err != nil {
			return err
		}
	}

	quiz.ID = uuid.New()
	quiz.CreatedAt = r.s.tick()
	quiz.UpdatedAt = quiz.CreatedAt
	assignQuestionIDs(quiz.ID, questions)

	cp := *quiz
	cp.Creator = nil
	r.s.quizzes[quiz.ID] = &cp
	r.s.questions[quiz.ID] = cloneQuestions(questions)
	return nil
}

func (r *QuizRepo) Update(_ context.Context, id uuid.UUID, patch models.QuizPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	q, ok := r.s.quizzes[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := checkInt4("questions", questionInts(patch.Questions)...); err != nil {
		return err
	}
	if patch.TimeLimit != nil {
		if err := checkInt4("time_limit", *patch.TimeLimit); err != nil {
			return err
		}
	}

	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Description != nil {
		q.Description = *patch.Description
	}
	if patch.TimeLimit != nil {
		tl := *patch.TimeLimit
		q.TimeLimit = &tl
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Category != nil {
		q.Category = *patch.Category
	}
	if patch.IsPublished != nil {
		q.IsPublished = *patch.IsPublished
	}
	q.UpdatedAt = r.s.tick()

	if patch.Questions != nil {
		assignQuestionIDs(id, patch.Questions)
		r.s.questions[id] = cloneQuestions(patch.Questions)
	}
	return nil
}

func (r *QuizRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	if _, ok := r.s.quizzes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.quizzes, id)
	delete(r.s.questions, id)

	// ON DELETE SET NULL
	for _, sub := range r.s.submissions {
		if sub.QuizID != nil && *sub.QuizID == id {
			sub.QuizID = nil
		}
	}
	for _, f := range r.s.feedback {
		if f.QuizID != nil && *f.QuizID == id {
			f.QuizID = nil
		}
	}
	return nil
}

func (s *Store) countSubmissions(quizID uuid.UUID) int {
	n := 0
	for _, sub := range s.submissions {
		if sub.QuizID != nil && *sub.QuizID == quizID {
			n++
		}
	}
	return n
}

func assignQuestionIDs(quizID uuid.UUID, questions []models.Question) {
	for i := range questions {
		questions[i].ID = uuid.New()
		questions[i].QuizID = quizID
	}
}

func cloneQuestions(in []models.Question) []models.Question {
	out := make([]models.Question, len(in))
	for i, q := range in {
		q.Options = slices.Clone(q.Options)
		out[i] = q
	}
	return out
}

// Submissions

type SubmissionRepo struct{ s *Store }

func (r *SubmissionRepo) Create(_ context.Context, sub *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	if err := checkInt4("answers", sub.Answers...); err != nil {
		return err
	}
	if err := checkInt4("submissions", sub.Score, sub.TotalPoints, sub.TimeSpent); err != nil {
		return err
	}

	sub.ID = uuid.New()
	sub.SubmittedAt = r.s.tick()
	r.s.submissions = append(r.s.submissions, cloneSubmission(sub))
	return nil
}

func (r *SubmissionRepo) ListByUser(_ context.Context, userID uuid.UUID, quizID *uuid.UUID) ([]*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Submission
	// Appended in insertion order; walk backwards for newest first.
	for i := len(r.s.submissions) - 1; i >= 0; i-- {
		sub := r.s.submissions[i]
		if sub.UserID != userID {
			continue
		}
		if quizID != nil && (sub.QuizID == nil || *sub.QuizID != *quizID) {
			continue
		}
		cp := cloneSubmission(sub)
		cp.Quiz.ID = cp.QuizID
		out = append(out, cp)
	}
	return out, nil
}

// Len reports how many submissions are stored.
func (r *SubmissionRepo) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.submissions)
}

func cloneSubmission(sub *models.Submission) *models.Submission {
	cp := *sub
	cp.Answers = slices.Clone(sub.Answers)
	if sub.QuizID != nil {
		id := *sub.QuizID
		cp.QuizID = &id
	}
	if sub.Quiz != nil {
		q := *sub.Quiz
		cp.Quiz = &q
	} else {
		cp.Quiz = &models.SubmissionQuiz{}
	}
	return &cp
}

// Feedback

type FeedbackRepo struct{ s *Store }

func (r *FeedbackRepo) hydrate(f *models.Feedback) *models.Feedback {
	cp := *f
	if u, ok := r.s.users[f.UserID]; ok {
		cp.User = &models.UserRef{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
	}
	cp.Quiz = nil
	if f.QuizID != nil {
		if q, ok := r.s.quizzes[*f.QuizID]; ok {
			cp.Quiz = &models.FeedbackQuiz{ID: q.ID, Title: q.Title}
		}
	}
	return &cp
}

func (r *FeedbackRepo) Create(_ context.Context, f *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}

	f.ID = uuid.New()
	f.IsRead = false
	f.CreatedAt = r.s.tick()
	cp := *f
	r.s.feedback[f.ID] = &cp
	return nil
}

func (r *FeedbackRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.feedback[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.hydrate(f), nil
}

func (r *FeedbackRepo) List(_ context.Context, filter models.FeedbackFilter) ([]*models.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Feedback
	for _, f := range r.s.feedback {
		if filter.Type != "" && f.Type != filter.Type {
			continue
		}
		if filter.IsRead != nil && f.IsRead != *filter.IsRead {
			continue
		}
		out = append(out, r.hydrate(f))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *FeedbackRepo) SetRead(_ context.Context, id uuid.UUID, isRead bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}
	f, ok := r.s.feedback[id]
	if !ok {
		return pgx.ErrNoRows
	}
	f.IsRead = isRead
	return nil
}

func (r *FeedbackRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWrites != nil {
		return r.s.FailWrites
	}
	if _, ok := r.s.feedback[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.feedback, id)
	return nil
}
