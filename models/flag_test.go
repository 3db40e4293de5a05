package models

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestFeedbackDecodesFormAnswers(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"id":               "fb-1",
		"serviceId":        "r1",
		"providerId":       "A",
		"workQuality":      4,
		"experienceRating": "Very Satisfied",
		"providerOnTime":   true,
		"recommendation":   "Yes",
		"issueResolution":  "No",
		"timestamp":        time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var rec ProviderFeedbackRecord
	if err := bson.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.ProviderOnTime || !rec.Recommended || rec.IssueResolved {
		t.Fatalf("unexpected answers: onTime=%v recommended=%v resolved=%v", rec.ProviderOnTime, rec.Recommended, rec.IssueResolved)
	}
	if rec.WorkQuality != 4 || rec.ProviderID != "A" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestFeedbackRejectsUnknownAnswer(t *testing.T) {
	raw, _ := bson.Marshal(bson.M{"providerId": "A", "recommendation": "maybe"})
	var rec ProviderFeedbackRecord
	if err := bson.Unmarshal(raw, &rec); err == nil {
		t.Fatalf("expected an error for an unrecognised answer")
	}
}

func TestFlagWritesBoolean(t *testing.T) {
	raw, err := bson.Marshal(ProviderFeedbackRecord{ProviderID: "A", Recommended: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if v, ok := bson.Raw(raw).Lookup("recommendation").BooleanOK(); !ok || !v {
		t.Fatalf("expected recommendation to be stored as true")
	}

	var rec ProviderFeedbackRecord
	if err := json.Unmarshal([]byte(`{"recommendation":"Yes","issueResolution":false}`), &rec); err != nil {
		t.Fatalf("json: %v", err)
	}
	out, _ := json.Marshal(rec.Recommended)
	if string(out) != "true" {
		t.Fatalf("expected JSON true, got %s", out)
	}
}

func TestParseFlag(t *testing.T) {
	cases := []struct {
		in   any
		want Flag
		ok   bool
	}{
		{"Yes", true, true},
		{" no ", false, true},
		{true, true, true},
		{nil, false, true},
		{"sometimes", false, false},
		{3, false, false},
	}
	for _, tc := range cases {
		got, err := ParseFlag(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseFlag(%v) = %v, %v", tc.in, got, err)
		}
	}
}
