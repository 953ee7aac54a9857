package models

import "fmt"

// RescheduleKind discriminates the reschedule option union.
type RescheduleKind string

const (
	// RescheduleDelay pushes the slot N minutes past now.
	RescheduleDelay RescheduleKind = "delay"
	// RescheduleCustom moves the slot to a user-picked time.
	RescheduleCustom RescheduleKind = "custom"
	// RescheduleSpecificTime moves the slot to an explicit time (time-grid pick).
	RescheduleSpecificTime RescheduleKind = "specific_time"
)

// RescheduleOption is a tagged reschedule request. Delay minutes are
// restricted to {15, 30, 60}; custom and specific_time carry an HH:MM string.
type RescheduleOption struct {
	Type    RescheduleKind `json:"type"`
	Minutes int            `json:"minutes,omitempty"`
	Time    string         `json:"time,omitempty"`
}

// Validate checks the option against the closed delay set and time format.
func (o RescheduleOption) Validate() error {
	switch o.Type {
	case RescheduleDelay:
		switch o.Minutes {
		case 15, 30, 60:
			return nil
		}
		return fmt.Errorf("delay must be 15, 30 or 60 minutes, got %d", o.Minutes)
	case RescheduleCustom, RescheduleSpecificTime:
		if _, err := ParseClockTime(o.Time); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown reschedule type %q", o.Type)
}

// ShortenOption is a target duration from the closed set {45, 30, 15}.
// Workouts are never shortened to an arbitrary length.
type ShortenOption int

// ShortenOptions lists the allowed target durations in display order.
var ShortenOptions = []ShortenOption{45, 30, 15}

// Validate checks membership in the closed set.
func (o ShortenOption) Validate() error {
	switch o {
	case 45, 30, 15:
		return nil
	}
	return fmt.Errorf("shorten duration must be 45, 30 or 15 minutes, got %d", int(o))
}
