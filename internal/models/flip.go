// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the face a coin landed on.
type Outcome string

const (
	// Heads is the heads face.
	Heads Outcome = "heads"
	// Tails is the tails face.
	Tails Outcome = "tails"
)

// Valid reports whether o is heads or tails.
func (o Outcome) Valid() bool {
	return o == Heads || o == Tails
}

// Letter returns the single-letter face label.
func (o Outcome) Letter() string {
	if o == Tails {
		return "T"
	}
	return "H"
}

// Title returns the capitalized outcome name.
func (o Outcome) Title() string {
	switch o {
	case Heads:
		return "Heads"
	case Tails:
		return "Tails"
	default:
		return "Unknown"
	}
}

// ParseOutcome parses "heads"/"tails" (or "h"/"t"), case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heads", "h":
		return Heads, nil
	case "tails", "t":
		return Tails, nil
	default:
		return "", fmt.Errorf("invalid outcome: %q", s)
	}
}

// FlipRecord is one recorded flip. Records are immutable once created.
type FlipRecord struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Result    Outcome   `json:"result"`
	Question  string    `json:"question,omitempty"`
}
