package domain

import (
	"testing"
	"time"
)

func TestEventInputValidate(t *testing.T) {
	valid := EventInput{
		Title:         "Standup",
		Description:   "Daily sync",
		Date:          "2024-01-10T09:00:00Z",
		Location:      "Room A",
		OrganizerName: "Alice",
	}

	tests := []struct {
		name           string
		mutate         func(in *EventInput)
		expectedFields []string
	}{
		{
			name:   "valid payload has no violations",
			mutate: func(in *EventInput) {},
		},
		{
			name:           "missing location",
			mutate:         func(in *EventInput) { in.Location = "" },
			expectedFields: []string{"location"},
		},
		{
			name:           "whitespace only counts as missing",
			mutate:         func(in *EventInput) { in.Title = "   " },
			expectedFields: []string{"title"},
		},
		{
			name:           "unparseable date",
			mutate:         func(in *EventInput) { in.Date = "next tuesday" },
			expectedFields: []string{"date"},
		},
		{
			name:           "every violation is reported",
			mutate:         func(in *EventInput) { *in = EventInput{Date: "bogus"} },
			expectedFields: []string{"title", "description", "date", "location", "organizerName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			violations := in.Validate()
			if len(violations) != len(tt.expectedFields) {
				t.Fatalf("expected %d violations, got %d: %+v", len(tt.expectedFields), len(violations), violations)
			}
			verr := &ValidationError{Violations: violations}
			for _, field := range tt.expectedFields {
				if !verr.Has(field) {
					t.Errorf("expected violation for %s, got %+v", field, violations)
				}
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-01-10T09:00:00Z", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{"2024-01-10T10:00:00+01:00", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{"2024-01-10T09:00", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{"2024-01-10", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if err != nil {
			t.Errorf("ParseDate(%q) returned error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.expected) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseDate(%q) not in UTC", tt.input)
		}
	}

	if _, err := ParseDate("2024-13-45"); err == nil {
		t.Error("expected error for invalid calendar date")
	}
}

func TestEventApplyKeepsOrganizer(t *testing.T) {
	event, err := NewEvent(EventInput{
		Title:         "Standup",
		Description:   "Daily sync",
		Date:          "2024-01-10T09:00:00Z",
		Location:      "Room A",
		OrganizerName: "Alice",
	}, "u1")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	err = event.Apply(EventInput{
		Title:         "Standup",
		Description:   "Daily sync",
		Date:          "2024-01-10T09:00:00Z",
		Location:      "Room B",
		OrganizerName: "Mallory",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if event.OrganizerID != "u1" {
		t.Errorf("organizer changed to %q", event.OrganizerID)
	}
	if event.Location != "Room B" {
		t.Errorf("location = %q, want Room B", event.Location)
	}
	if !event.IsOwnedBy("u1") || event.IsOwnedBy("Mallory") || event.IsOwnedBy("") {
		t.Error("ownership must compare identifiers only")
	}
}
