package usecase

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
)

type memInterviewRepo struct {
	mu    sync.Mutex
	items map[string]*entities.Interview
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{items: map[string]*entities.Interview{}}
}

func (m *memInterviewRepo) Create(ctx context.Context, iv *entities.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[iv.ID] = iv
	return nil
}

func (m *memInterviewRepo) GetByID(ctx context.Context, id, userID string) (*entities.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.items[id]
	if !ok || iv.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return iv, nil
}

func (m *memInterviewRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Interview
	for _, iv := range m.items {
		if iv.UserID == userID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (m *memInterviewRepo) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.items[id]
	if !ok || iv.UserID != userID {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memAnswerRepo struct {
	mu    sync.Mutex
	items []*entities.Answer
	saved chan struct{}
	err   error
}

func newMemAnswerRepo() *memAnswerRepo {
	return &memAnswerRepo{saved: make(chan struct{}, 8)}
}

func (m *memAnswerRepo) Create(ctx context.Context, a *entities.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, a)
	select {
	case m.saved <- struct{}{}:
	default:
	}
	return nil
}

func (m *memAnswerRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Answer
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBlob struct {
	url  string
	err  error
	keys []string
}

func (f *fakeBlob) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newService(interviews *memInterviewRepo, answers *memAnswerRepo, blob *fakeBlob, ai *fakeInterviewer) *InterviewService {
	if blob == nil {
		return NewInterviewService(interviews, answers, nil, ai, zap.NewNop())
	}
	return NewInterviewService(interviews, answers, blob, ai, zap.NewNop())
}

func TestCreateInterviewWithResume(t *testing.T) {
	interviews := newMemInterviewRepo()
	blob := &fakeBlob{url: "https://cdn.example.com/resume.pdf"}
	svc := newService(interviews, newMemAnswerRepo(), blob, &fakeInterviewer{})

	iv, err := svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "Backend Engineer",
		Difficulty: entities.DifficultyMedium,
		Type:       entities.TypeTechnical,
		Resume:     &ResumeUpload{FileName: "resume.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	})
	if err != nil {
		t.Fatalf("CreateInterview failed: %v", err)
	}
	if iv.ID == "" {
		t.Error("expected generated interview ID")
	}
	if iv.ResumeURL != "https://cdn.example.com/resume.pdf" {
		t.Errorf("unexpected resume URL %q", iv.ResumeURL)
	}
	if len(blob.keys) != 1 || !strings.HasSuffix(blob.keys[0], "-resume.pdf") {
		t.Errorf("unexpected upload keys %v", blob.keys)
	}
}

func TestCreateInterviewResumeUploadDegrades(t *testing.T) {
	interviews := newMemInterviewRepo()
	blob := &fakeBlob{err: errors.New("bucket down")}
	svc := newService(interviews, newMemAnswerRepo(), blob, &fakeInterviewer{})

	iv, err := svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "PM",
		Difficulty: entities.DifficultyEasy,
		Type:       entities.TypeBehavioral,
		Resume:     &ResumeUpload{FileName: "resume.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	})
	if err != nil {
		t.Fatalf("CreateInterview failed: %v", err)
	}
	if iv.ResumeURL != "" {
		t.Errorf("expected empty resume URL on upload failure, got %q", iv.ResumeURL)
	}
}

func TestCreateInterviewValidates(t *testing.T) {
	svc := newService(newMemInterviewRepo(), newMemAnswerRepo(), nil, &fakeInterviewer{})

	_, err := svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "",
		Difficulty: entities.DifficultyEasy,
		Type:       entities.TypeBehavioral,
	})
	if err == nil {
		t.Error("expected validation error for empty role")
	}

	_, err = svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "PM",
		Difficulty: "Impossible",
		Type:       entities.TypeBehavioral,
	})
	if err == nil {
		t.Error("expected validation error for unknown difficulty")
	}
}

func TestNextQuestion(t *testing.T) {
	interviews := newMemInterviewRepo()
	ai := &fakeInterviewer{question: "Describe a hard bug you fixed."}
	svc := newService(interviews, newMemAnswerRepo(), nil, ai)

	iv, err := svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "Backend Engineer",
		Difficulty: entities.DifficultyHard,
		Type:       entities.TypeTechnical,
	})
	if err != nil {
		t.Fatalf("CreateInterview failed: %v", err)
	}

	q, err := svc.NextQuestion(context.Background(), iv.ID, "user-1")
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}
	if q != "Describe a hard bug you fixed." {
		t.Errorf("unexpected question %q", q)
	}

	if _, err := svc.NextQuestion(context.Background(), iv.ID, "user-2"); err == nil {
		t.Error("expected error for wrong owner")
	}
}

func TestEvaluateAnswerPersistsInBackground(t *testing.T) {
	answers := newMemAnswerRepo()
	ai := &fakeInterviewer{feedback: entities.Feedback{Score: 8, Strengths: "Concrete", Improvements: "Shorter"}}
	svc := newService(newMemInterviewRepo(), answers, nil, ai)

	fb, err := svc.EvaluateAnswer(context.Background(), "iv-1", "user-1", "Q", "A")
	if err != nil {
		t.Fatalf("EvaluateAnswer failed: %v", err)
	}
	if fb.Score != 8 {
		t.Errorf("expected score 8, got %v", fb.Score)
	}

	select {
	case <-answers.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("answer was not saved in the background")
	}

	got, err := answers.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 saved answer, got %d", len(got))
	}
	if got[0].Feedback != "Concrete | Shorter" {
		t.Errorf("unexpected feedback string %q", got[0].Feedback)
	}
}

func TestEvaluateAnswerDegradesOnModelFailure(t *testing.T) {
	answers := newMemAnswerRepo()
	ai := &fakeInterviewer{evalErr: errors.New("model down")}
	svc := newService(newMemInterviewRepo(), answers, nil, ai)

	fb, err := svc.EvaluateAnswer(context.Background(), "iv-1", "user-1", "Q", "A")
	if err != nil {
		t.Fatalf("EvaluateAnswer failed: %v", err)
	}
	if fb.Score != 5 || fb.Strengths != "Good effort" || fb.Improvements != "Keep practicing" {
		t.Errorf("expected neutral fallback feedback, got %+v", fb)
	}
}

func TestSaveAnswer(t *testing.T) {
	answers := newMemAnswerRepo()
	svc := newService(newMemInterviewRepo(), answers, nil, &fakeInterviewer{})

	err := svc.SaveAnswer(context.Background(), &entities.Answer{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Question:    "Q",
		Answer:      "A",
		Score:       6,
	})
	if err != nil {
		t.Fatalf("SaveAnswer failed: %v", err)
	}

	got, _ := answers.ListByUser(context.Background(), "user-1")
	if len(got) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(got))
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Error("expected ID and timestamp to be filled in")
	}

	if err := svc.SaveAnswer(context.Background(), &entities.Answer{UserID: "user-1"}); err == nil {
		t.Error("expected validation error for missing fields")
	}
}

func TestDeleteInterviewScopedToOwner(t *testing.T) {
	interviews := newMemInterviewRepo()
	svc := newService(interviews, newMemAnswerRepo(), nil, &fakeInterviewer{})

	iv, err := svc.CreateInterview(context.Background(), "user-1", CreateInterviewInput{
		Role:       "PM",
		Difficulty: entities.DifficultyEasy,
		Type:       entities.TypeBehavioral,
	})
	if err != nil {
		t.Fatalf("CreateInterview failed: %v", err)
	}

	if err := svc.DeleteInterview(context.Background(), iv.ID, "user-2"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for wrong owner, got %v", err)
	}
	if err := svc.DeleteInterview(context.Background(), iv.ID, "user-1"); err != nil {
		t.Errorf("DeleteInterview failed: %v", err)
	}
}
