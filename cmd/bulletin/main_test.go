package main

import (
	"testing"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

func TestNextMonday(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-04-08", "2024-04-08"}, // Monday
		{"2024-04-09", "2024-04-15"},
		{"2024-04-13", "2024-04-15"},
		{"2024-04-14", "2024-04-15"}, // Sunday
	}

	for _, tt := range tests {
		d, err := models.ParseDate(tt.input, time.UTC)
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", tt.input, err)
		}
		result := nextMonday(d).String()
		if result != tt.expected {
			t.Errorf("nextMonday(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestTargetDate(t *testing.T) {
	now := time.Date(2024, time.April, 10, 23, 30, 0, 0, time.UTC)

	dateFlag = ""
	d, err := targetDate(time.UTC, now, tomorrow)
	if err != nil {
		t.Fatalf("targetDate failed: %v", err)
	}
	if d.String() != "2024-04-11" {
		t.Errorf("targetDate() = %s, expected 2024-04-11", d)
	}

	dateFlag = "2024-05-06"
	defer func() { dateFlag = "" }()
	d, err = targetDate(time.UTC, now, tomorrow)
	if err != nil {
		t.Fatalf("targetDate failed: %v", err)
	}
	if d.String() != "2024-05-06" {
		t.Errorf("targetDate() = %s, expected 2024-05-06", d)
	}

	dateFlag = "06/05/2024"
	if _, err := targetDate(time.UTC, now, tomorrow); err == nil {
		t.Error("Expected error for malformed --date")
	}
}
