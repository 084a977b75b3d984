// Package models defines the domain types for Mythril.
package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusQueued    TaskStatus = "queued"
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether no further transitions are accepted from s.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TrustLevel tags a task's maturity. Informational only.
type TrustLevel string

const (
	TrustThrowaway TrustLevel = "THROWAWAY"
	TrustPrototype TrustLevel = "PROTOTYPE"
	TrustMature    TrustLevel = "MATURE"
)

// Valid reports whether l is a known trust level.
func (l TrustLevel) Valid() bool {
	switch l {
	case TrustThrowaway, TrustPrototype, TrustMature:
		return true
	}
	return false
}

// Priority orders queued-task retrieval.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank returns the queue ordering key: CRITICAL sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Task is a unit of work scoped to a project.
//
// The id has the form <PREFIX>-<NNN>: prefix is the project upper-cased and
// truncated to 10 characters, NNN a zero-padded per-prefix sequence number.
// Both id and project are immutable once assigned.
type Task struct {
	ID          string     `json:"id"`
	Project     string     `json:"project"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	TrustLevel  TrustLevel `json:"trust_level"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
