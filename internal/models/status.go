package models

import (
	"errors"
	"strings"
)

type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
)

var (
	ErrInvalidStatus    = errors.New("invalid assignment status")
	ErrStatusRegression = errors.New("assignment status cannot move backwards")
	ErrAssignmentClosed = errors.New("assignment is already completed")
	ErrInvalidPriority  = errors.New("invalid assignment priority")
)

// ParseAssignmentStatus accepts canonical and legacy Portuguese tokens.
func ParseAssignmentStatus(raw string) (AssignmentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "pendente":
		return StatusPending, nil
	case "in_progress", "in-progress", "em_andamento", "andamento":
		return StatusInProgress, nil
	case "completed", "concluida", "concluída", "concluido", "concluído":
		return StatusCompleted, nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s AssignmentStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a canonical status.
func (s AssignmentStatus) Valid() bool {
	return s.rank() >= 0
}

// Label is the user-facing name used in notifications.
func (s AssignmentStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusInProgress:
		return "Em Andamento"
	case StatusCompleted:
		return "Concluída"
	default:
		return string(s)
	}
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if s == next {
		return nil
	}
	if s == StatusCompleted {
		return ErrAssignmentClosed
	}
	if next.rank() < s.rank() {
		return ErrStatusRegression
	}
	return nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority accepts canonical and Portuguese tokens. Empty input defaults to medium.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "medium", "media", "média":
		return PriorityMedium, nil
	case "low", "baixa":
		return PriorityLow, nil
	case "high", "alta":
		return PriorityHigh, nil
	case "urgent", "urgente":
		return PriorityUrgent, nil
	default:
		return "", ErrInvalidPriority
	}
}
