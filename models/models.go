package models

// This file serves as the central export point for all models.
//
// Aggregates (persisted as one document each, embedded collections in jsonb):
// - Interview, Question, Participant, Response from interview.go
// - Practice, PracticeQuestion, EmotionSample from practice.go
//
// Accounts (plain relational tables):
// - Company, User from user.go
//
// Database schema overview:
// 1. companies  - interview owners, authenticated with bearer tokens
// 2. users      - practice owners, authenticated with bearer tokens
// 3. interviews - one row per interview, participants embedded as jsonb
// 4. practices  - one row per practice, questions embedded as jsonb

// Status is the lifecycle state shared by interviews and practices.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}
