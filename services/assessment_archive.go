package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// AssessmentSnapshot is the on-disk record of one practice assessment.
type AssessmentSnapshot struct {
	PracticeID       string    `json:"practiceId"`
	QuestionID       string    `json:"questionId"`
	QuestionNumber   int       `json:"questionNumber"`
	UserID           string    `json:"userId"`
	AssessmentReport string    `json:"assessmentReport"`
	TotalScore       float64   `json:"totalScore"`
	Timestamp        time.Time `json:"timestamp"`
}

// AssessmentArchive writes a JSON snapshot of every practice assessment to a
// directory, one file per submission.
type AssessmentArchive struct {
	dir   string
	mutex sync.RWMutex
}

// NewAssessmentArchive creates the archive directory if it doesn't exist
func NewAssessmentArchive(dir string) *AssessmentArchive {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("Failed to create archive directory", "dir", dir, "error", err)
	}

	return &AssessmentArchive{
		dir: dir,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// fileName keys the file by question ID when it is filename safe and by
// practice and question number otherwise.
func (a *AssessmentArchive) fileName(s AssessmentSnapshot) string {
	key := s.QuestionID
	if key == "" || unsafeKeyChars.MatchString(key) {
		key = unsafeKeyChars.ReplaceAllString(fmt.Sprintf("%s-q%d", s.PracticeID, s.QuestionNumber), "_")
	}
	return fmt.Sprintf("assessment_%s_%d.json", key, s.Timestamp.UnixNano())
}

// Save writes the snapshot. Existing files are never overwritten.
func (a *AssessmentArchive) Save(ctx context.Context, s AssessmentSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	path := filepath.Join(a.dir, a.fileName(s))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		slog.Error("Failed to create assessment snapshot", "path", path, "error", err)
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		slog.Error("Failed to write assessment snapshot", "path", path, "error", err)
		return err
	}

	slog.Info("Archived assessment", "practice_id", s.PracticeID, "question_number", s.QuestionNumber, "path", path)
	return nil
}

// List returns the snapshots of one practice, oldest first.
func (a *AssessmentArchive) List(practiceID string) ([]AssessmentSnapshot, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}

	var out []AssessmentSnapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "assessment_") || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			slog.Error("Failed to read assessment snapshot", "file", entry.Name(), "error", err)
			continue
		}
		var s AssessmentSnapshot
		if err := json.Unmarshal(data, &s); err != nil {
			slog.Warn("Skipping unreadable assessment snapshot", "file", entry.Name(), "error", err)
			continue
		}
		if s.PracticeID == practiceID {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
