package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

// Store persists interviews and answers in a local SQLite database.
// It implements both InterviewRepository and AnswerRepository.
type Store struct {
	db *sql.DB
}

// AnswerStore is the answers view of a Store. Interviews and answers share
// one database but satisfy separate repository interfaces.
type AnswerStore struct {
	s *Store
}

var (
	_ repositories.InterviewRepository = (*Store)(nil)
	_ repositories.AnswerRepository    = (*AnswerStore)(nil)
)

func NewStore(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "prepwise.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			type TEXT NOT NULL,
			resume_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create interviews table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS answers (
			id TEXT PRIMARY KEY,
			interview_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			score REAL NOT NULL,
			feedback TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY(interview_id) REFERENCES interviews(id) ON DELETE CASCADE
		);
	`); err != nil {
		return fmt.Errorf("create answers table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_interviews_user_id ON interviews(user_id, created_at)"); err != nil {
		return fmt.Errorf("create interviews index: %w", err)
	}
	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_answers_user_id ON answers(user_id, created_at)"); err != nil {
		return fmt.Errorf("create answers index: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts an interview record.
func (s *Store) Create(ctx context.Context, interview *entities.Interview) error {
	if err := interview.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interviews(id, user_id, role, difficulty, type, resume_url, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		interview.ID,
		interview.UserID,
		interview.Role,
		interview.Difficulty,
		interview.Type,
		interview.ResumeURL,
		interview.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create interview %s: %w", interview.ID, err)
	}
	return nil
}

// GetByID fetches one interview owned by the given user.
func (s *Store) GetByID(ctx context.Context, id, userID string) (*entities.Interview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, role, difficulty, type, resume_url, created_at FROM interviews WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	iv, err := scanInterview(row)
	if err != nil {
		return nil, fmt.Errorf("query interview %s: %w", id, err)
	}
	return iv, nil
}

// ListByUser returns the user's interviews, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*entities.Interview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, difficulty, type, resume_url, created_at
		 FROM interviews
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query interviews for user %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	interviews := make([]*entities.Interview, 0, 16)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interview rows: %w", err)
	}

	return interviews, nil
}

// Delete removes an interview owned by the given user. Deleting a row that
// does not exist (or belongs to someone else) returns sql.ErrNoRows.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM interviews WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete interview %s: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete interview rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Answers returns the answers view of the store.
func (s *Store) Answers() *AnswerStore {
	return &AnswerStore{s: s}
}

// Create inserts an evaluated answer.
func (a *AnswerStore) Create(ctx context.Context, answer *entities.Answer) error {
	s := a.s
	if err := answer.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers(id, interview_id, user_id, question, answer, score, feedback, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		answer.ID,
		answer.InterviewID,
		answer.UserID,
		answer.Question,
		answer.Answer,
		answer.Score,
		answer.Feedback,
		answer.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create answer %s: %w", answer.ID, err)
	}
	return nil
}

// ListByUser returns the user's evaluated answers, newest first.
func (a *AnswerStore) ListByUser(ctx context.Context, userID string) ([]*entities.Answer, error) {
	s := a.s
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interview_id, user_id, question, answer, score, feedback, created_at
		 FROM answers
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers for user %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	answers := make([]*entities.Answer, 0, 32)
	for rows.Next() {
		var a entities.Answer
		var createdAt string
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.UserID, &a.Question, &a.Answer, &a.Score, &a.Feedback, &createdAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse answer created_at: %w", err)
		}
		a.CreatedAt = parsed

		answers = append(answers, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer rows: %w", err)
	}

	return answers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*entities.Interview, error) {
	var iv entities.Interview
	var createdAt string
	if err := row.Scan(&iv.ID, &iv.UserID, &iv.Role, &iv.Difficulty, &iv.Type, &iv.ResumeURL, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	iv.CreatedAt = parsed

	return &iv, nil
}
