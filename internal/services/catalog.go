package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quizhub-backend/internal/models"
)

type quizStore interface {
	List(ctx context.Context, f models.QuizFilter) ([]*models.QuizSummary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	CountSubmissions(ctx context.Context, quizID uuid.UUID) (int, error)
	Create(ctx context.Context, quiz *models.Quiz, questions []models.Question) error
	Update(ctx context.Context, id uuid.UUID, patch models.QuizPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuizService is the quiz catalog. Reads are shaped by the caller's role:
// non-admins only ever see published quizzes and never see correct answers.
// Write operations assume the route already required an admin.
type QuizService struct {
	quizzes quizStore
	events  EventPublisher
}

func NewQuizService(quizzes quizStore, events EventPublisher) *QuizService {
	return &QuizService{quizzes: quizzes, events: events}
}

func (s *QuizService) ListQuizzes(ctx context.Context, caller *models.Principal, category, difficulty string) ([]*models.QuizSummary, error) {
	filter := models.QuizFilter{
		Category:      category,
		PublishedOnly: !caller.IsAdmin(),
	}
	if difficulty != "" {
		d, ok := parseDifficulty(difficulty, "")
		if !ok {
			return nil, fieldError("difficulty", "Must be one of EASY, MEDIUM, HARD")
		}
		filter.Difficulty = d
	}

	quizzes, err := s.quizzes.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if quizzes == nil {
		quizzes = []*models.QuizSummary{}
	}
	return quizzes, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, caller *models.Principal, id uuid.UUID) (*models.QuizDetail, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}

	admin := caller.IsAdmin()
	if !quiz.IsPublished && !admin {
		return nil, &ForbiddenError{Message: "Quiz is not published"}
	}

	return s.detail(ctx, quiz, admin)
}

func (s *QuizService) CreateQuiz(ctx context.Context, caller *models.Principal, req models.CreateQuizRequest) (*models.QuizDetail, error) {
	fields := make(map[string]string)

	title := requireText(fields, "title", req.Title)
	description := requireText(fields, "description", req.Description)
	category := requireText(fields, "category", req.Category)
	validTimeLimit(fields, req.TimeLimit)

	difficulty, ok := parseDifficulty(req.Difficulty, models.DifficultyMedium)
	if !ok {
		fields["difficulty"] = "Must be one of EASY, MEDIUM, HARD"
	}

	questions := buildQuestions(req.Questions, fields)

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	quiz := &models.Quiz{
		Title:       title,
		Description: description,
		TimeLimit:   req.TimeLimit,
		Difficulty:  difficulty,
		Category:    category,
		IsPublished: req.IsPublished != nil && *req.IsPublished,
		CreatedBy:   caller.ID,
	}

	if err := s.quizzes.Create(ctx, quiz, questions); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	publish(ctx, s.events, models.EventQuizChanged, models.QuizChangedEvent{QuizID: quiz.ID, Action: "created"})

	quiz.Creator = &models.UserRef{ID: caller.ID, DisplayName: caller.DisplayName, Email: caller.Email}
	return &models.QuizDetail{
		Quiz:      *quiz,
		Questions: questionViews(questions, true),
	}, nil
}

// UpdateQuiz patches quiz metadata. A questions array replaces the whole set;
// it is validated completely before the store is touched, and the store
// applies the replacement atomically.
func (s *QuizService) UpdateQuiz(ctx context.Context, id uuid.UUID, req models.UpdateQuizRequest) (*models.QuizDetail, error) {
	fields := make(map[string]string)
	var patch models.QuizPatch

	if req.Title != nil {
		t := requireText(fields, "title", *req.Title)
		patch.Title = &t
	}
	if req.Description != nil {
		d := requireText(fields, "description", *req.Description)
		patch.Description = &d
	}
	if req.Category != nil {
		c := requireText(fields, "category", *req.Category)
		patch.Category = &c
	}
	if req.Difficulty != nil {
		d, ok := parseDifficulty(*req.Difficulty, "")
		if !ok {
			fields["difficulty"] = "Must be one of EASY, MEDIUM, HARD"
		}
		patch.Difficulty = &d
	}
	validTimeLimit(fields, req.TimeLimit)
	patch.TimeLimit = req.TimeLimit
	patch.IsPublished = req.IsPublished

	if req.Questions != nil {
		patch.Questions = buildQuestions(*req.Questions, fields)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.quizzes.Update(ctx, id, patch); err != nil {
		return nil, notFound(err, "Quiz not found")
	}

	publish(ctx, s.events, models.EventQuizChanged, models.QuizChangedEvent{QuizID: id, Action: "updated"})

	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	return s.detail(ctx, quiz, true)
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return notFound(err, "Quiz not found")
	}
	publish(ctx, s.events, models.EventQuizChanged, models.QuizChangedEvent{QuizID: id, Action: "deleted"})
	return nil
}

func (s *QuizService) detail(ctx context.Context, quiz *models.Quiz, admin bool) (*models.QuizDetail, error) {
	questions, err := s.quizzes.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	count, err := s.quizzes.CountSubmissions(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	return &models.QuizDetail{
		Quiz:            *quiz,
		Questions:       questionViews(questions, admin),
		SubmissionCount: count,
	}, nil
}

// questionViews shapes questions for the wire. The correct answer is copied
// out only for admins.
func questionViews(questions []models.Question, admin bool) []models.QuestionView {
	views := make([]models.QuestionView, len(questions))
	for i, q := range questions {
		views[i] = models.QuestionView{Question: q}
		if admin {
			correct := q.CorrectAnswer
			views[i].CorrectAnswer = &correct
		}
	}
	return views
}
