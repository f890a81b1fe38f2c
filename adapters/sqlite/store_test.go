package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prepwise/server/domain/entities"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testInterview(id, userID string) *entities.Interview {
	return &entities.Interview{
		ID:         id,
		UserID:     userID,
		Role:       "Backend Engineer",
		Difficulty: entities.DifficultyMedium,
		Type:       entities.TypeTechnical,
		CreatedAt:  time.Now(),
	}
}

func TestCreateAndGetInterview(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	iv := testInterview("iv-1", "user-1")
	iv.ResumeURL = "https://example.com/resume.pdf"
	if err := store.Create(ctx, iv); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, "iv-1", "user-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != "Backend Engineer" || got.Difficulty != entities.DifficultyMedium {
		t.Errorf("unexpected interview: %+v", got)
	}
	if got.ResumeURL != "https://example.com/resume.pdf" {
		t.Errorf("resume URL not persisted: %q", got.ResumeURL)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not persisted")
	}
}

func TestGetByIDScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testInterview("iv-1", "user-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.GetByID(ctx, "iv-1", "user-2"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for wrong owner, got %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testInterview("iv-old", "user-1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testInterview("iv-new", "user-1")

	if err := store.Create(ctx, older); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, newer); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(ctx, testInterview("iv-other", "user-2")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 interviews, got %d", len(got))
	}
	if got[0].ID != "iv-new" || got[1].ID != "iv-old" {
		t.Errorf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestDeleteInterview(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testInterview("iv-1", "user-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, "iv-1", "user-2"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows deleting someone else's interview, got %v", err)
	}
	if err := store.Delete(ctx, "iv-1", "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "iv-1", "user-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows on second delete, got %v", err)
	}
}

func TestAnswersRoundTrip(t *testing.T) {
	store := newTestStore(t)
	answers := store.Answers()
	ctx := context.Background()

	if err := store.Create(ctx, testInterview("iv-1", "user-1")); err != nil {
		t.Fatalf("Create interview failed: %v", err)
	}

	answer := &entities.Answer{
		ID:          "ans-1",
		InterviewID: "iv-1",
		UserID:      "user-1",
		Question:    "Tell me about yourself.",
		Answer:      "I build backend systems.",
		Score:       7.5,
		Feedback:    "Clear structure | Add more detail",
		CreatedAt:   time.Now(),
	}
	if err := answers.Create(ctx, answer); err != nil {
		t.Fatalf("Create answer failed: %v", err)
	}

	got, err := answers.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(got))
	}
	if got[0].Score != 7.5 {
		t.Errorf("expected score 7.5, got %v", got[0].Score)
	}
	if got[0].Feedback != "Clear structure | Add more detail" {
		t.Errorf("unexpected feedback %q", got[0].Feedback)
	}
}

func TestDeleteCascadesToAnswers(t *testing.T) {
	store := newTestStore(t)
	answers := store.Answers()
	ctx := context.Background()

	if err := store.Create(ctx, testInterview("iv-1", "user-1")); err != nil {
		t.Fatalf("Create interview failed: %v", err)
	}
	if err := answers.Create(ctx, &entities.Answer{
		ID:          "ans-1",
		InterviewID: "iv-1",
		UserID:      "user-1",
		Question:    "Q",
		Answer:      "A",
		CreatedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("Create answer failed: %v", err)
	}

	if err := store.Delete(ctx, "iv-1", "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := answers.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected answers to cascade on delete, got %d", len(got))
	}
}

func TestCreateRejectsInvalidInterview(t *testing.T) {
	store := newTestStore(t)

	iv := testInterview("iv-1", "user-1")
	iv.Role = ""
	if err := store.Create(context.Background(), iv); err == nil {
		t.Error("expected validation error for empty role")
	}
}
