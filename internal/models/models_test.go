package models

import (
	"math"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, false},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v; want %v", tc.from, tc.to, got, tc.want)
		}
	}

	if !BookingCompleted.Terminal() || !BookingCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
	if BookingPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if BookingStatus("Pending").Valid() {
		t.Error("status values are case-sensitive")
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	if !SessionScheduled.CanTransitionTo(SessionInProgress) {
		t.Error("scheduled -> in_progress should be allowed")
	}
	if !SessionInProgress.CanTransitionTo(SessionCompleted) {
		t.Error("in_progress -> completed should be allowed")
	}
	if SessionScheduled.CanTransitionTo(SessionCompleted) {
		t.Error("scheduled -> completed should not be allowed")
	}
	if SessionCompleted.CanTransitionTo(SessionScheduled) {
		t.Error("completed is terminal")
	}
}

func TestMatchesSpot(t *testing.T) {
	p := Photographer{Spots: []string{"Pichilemu", "Punta de Lobos"}}

	tests := []struct {
		name string
		spot *string
		want bool
	}{
		{"unset", nil, true},
		{"empty", strPtr(""), true},
		{"lowercase substring", strPtr("lobos"), true},
		{"mixed case", strPtr("PUNTA"), true},
		{"second spot", strPtr("pichi"), true},
		{"no match", strPtr("arica"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := PhotographerFilters{Spot: tc.spot}
			if got := f.MatchesSpot(p); got != tc.want {
				t.Errorf("MatchesSpot = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestStorageUsagePercentage(t *testing.T) {
	u := StorageUsage{UsedBytes: 512 * 1024 * 1024, TotalBytes: 5 * bytesPerGB, Plan: "Free Plan"}
	if got := u.Percentage(); math.Abs(got-10) > 1e-9 {
		t.Errorf("Percentage = %v; want 10", got)
	}
	if got := u.TotalGB(); got != 5 {
		t.Errorf("TotalGB = %v; want 5", got)
	}
	if got := u.UsedGB(); got != 0.5 {
		t.Errorf("UsedGB = %v; want 0.5", got)
	}
	if got := (StorageUsage{UsedBytes: 10}).Percentage(); got != 0 {
		t.Errorf("zero quota should report 0%%, got %v", got)
	}
}

func TestWaveConditionsEmpty(t *testing.T) {
	if !(WaveConditions{}).Empty() {
		t.Error("zero conditions should be empty")
	}
	h := 1.5
	if (WaveConditions{WaveHeight: &h}).Empty() {
		t.Error("recorded wave height should not be empty")
	}
}
