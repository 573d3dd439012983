package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Status
// ==========================

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{"new", StatusNew},
		{"resolved", StatusResolved},
		{"flagged", StatusFlagged},
		{"spam", StatusSpam},
		{"deleted", StatusDeleted},
		{"reviewed", StatusReviewed},
		{"", StatusNew},
		{"archived", StatusNew},
		{"FLAGGED", StatusNew},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStatus(tt.input))
		})
	}
	assert.False(t, Status("").Valid())
	assert.False(t, Status("bogus").Valid())
	assert.True(t, StatusSpam.Valid())
}

func TestStatusState_SetAndRestore(t *testing.T) {
	t.Run("entering flagged suspends the prior status", func(t *testing.T) {
		s := StatusState{Current: StatusResolved}.Set(StatusFlagged)
		assert.Equal(t, StatusFlagged, s.Current)
		assert.Equal(t, StatusResolved, s.Suspended)

		restored := s.Restore()
		assert.Equal(t, StatusResolved, restored.Current)
		assert.Empty(t, restored.Suspended)
	})

	t.Run("flagging twice keeps the original suspended status", func(t *testing.T) {
		s := NewStatusState().Set(StatusFlagged).Set(StatusFlagged)
		assert.Equal(t, StatusNew, s.Suspended)
	})

	t.Run("leaving flagged drops the suspended status", func(t *testing.T) {
		s := StatusState{Current: StatusSpam}.Set(StatusFlagged).Set(StatusResolved)
		assert.Equal(t, StatusState{Current: StatusResolved}, s)
	})

	t.Run("restore without a suspended status falls back to new", func(t *testing.T) {
		s := StatusState{Current: StatusFlagged}.Restore()
		assert.Equal(t, StatusNew, s.Current)
	})
}

// ==========================
// JSON shape
// ==========================

func TestFeedback_JSONShape(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fb := Feedback{
		ID:         "f1",
		BusinessID: "b1",
		Rating:     2,
		Comment:    "cold coffee",
		Source:     "table_1",
		State:      StatusState{Current: StatusFlagged, Suspended: StatusNew},
		CreatedAt:  created,
		Answers: map[string]Answer{
			"q1": SingleAnswer("Dine in"),
			"q2": MultiAnswer("Coffee", "Brunch"),
		},
		Activity: []Activity{{
			ID:        "a1",
			Type:      ActivityCreated,
			Message:   "Feedback received",
			CreatedAt: created,
			Detail:    CreatedDetail{Rating: 2, Source: "table_1"},
		}},
	}

	data, err := json.Marshal(fb)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "flagged", raw["status"])
	assert.Equal(t, "new", raw["previousStatus"])
	assert.Equal(t, false, raw["isRead"])
	assert.NotContains(t, raw, "updatedAt")
	assert.NotContains(t, raw, "email")

	answers := raw["answers"].(map[string]interface{})
	assert.Equal(t, "Dine in", answers["q1"])
	assert.Equal(t, []interface{}{"Coffee", "Brunch"}, answers["q2"])

	activity := raw["activity"].([]interface{})
	require.Len(t, activity, 1)
	meta := activity[0].(map[string]interface{})["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["rating"])
	assert.Equal(t, "table_1", meta["source"])

	var back Feedback
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, fb.State, back.State)
	assert.Equal(t, fb.Answers, back.Answers)
	assert.Equal(t, CreatedDetail{Rating: 2, Source: "table_1"}, back.Activity[0].Detail)
}

func TestFeedback_UnmarshalDropsStrayPreviousStatus(t *testing.T) {
	var fb Feedback
	err := json.Unmarshal([]byte(`{"id":"x","status":"resolved","previousStatus":"new","activity":null}`), &fb)
	require.NoError(t, err)
	assert.Equal(t, StatusState{Current: StatusResolved}, fb.State)
	assert.NotNil(t, fb.Activity)
}

func TestActivity_DetailVariants(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		detail ActivityDetail
	}{
		{
			name:   "status",
			input:  `{"id":"1","type":"status","message":"Status changed: new → spam","createdAt":"2024-01-01T00:00:00Z","meta":{"from":"new","to":"spam"}}`,
			detail: StatusDetail{From: StatusNew, To: StatusSpam},
		},
		{
			name:   "email",
			input:  `{"id":"2","type":"email","message":"Reply sent to customer","createdAt":"2024-01-01T00:00:00Z","meta":{"to":"a@b.co","message":"sorry"}}`,
			detail: EmailDetail{To: "a@b.co", Message: "sorry"},
		},
		{
			name:   "read without meta",
			input:  `{"id":"3","type":"read","message":"Marked as read","createdAt":"2024-01-01T00:00:00Z"}`,
			detail: nil,
		},
		{
			name:   "note",
			input:  `{"id":"4","type":"note","message":"Note added","createdAt":"2024-01-01T00:00:00Z","meta":{"text":"call back"}}`,
			detail: NoteDetail{Text: "call back"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Activity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.detail, a.Detail)
			if tt.detail != nil {
				assert.Equal(t, a.Type, tt.detail.Kind())
			}
		})
	}
}

func TestActivity_UnknownTypeRejected(t *testing.T) {
	var a Activity
	err := json.Unmarshal([]byte(`{"id":"1","type":"archive","message":"x"}`), &a)
	assert.Error(t, err)
}

func TestAnswer_RejectsObjects(t *testing.T) {
	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &a))
}

// ==========================
// Business helpers
// ==========================

func TestTheme_Merge(t *testing.T) {
	merged := Theme{AccentColor: "#10b981", LogoURL: "https://cdn/logo.png"}.Merge(DefaultTheme())
	assert.Equal(t, "#10b981", merged.AccentColor)
	assert.Equal(t, "#ffffff", merged.CustomerBackground)
	assert.Equal(t, "#f8fafc", merged.DashboardBackground)
	assert.Equal(t, "https://cdn/logo.png", merged.LogoURL)
}

func TestBusiness_Redirects(t *testing.T) {
	b := Business{ThresholdRating: 4}
	assert.True(t, b.Redirects(5))
	assert.True(t, b.Redirects(4))
	assert.False(t, b.Redirects(3))
}

func TestReviewEvent_RatingValue(t *testing.T) {
	_, ok := ReviewEvent{Type: EventScan}.RatingValue()
	assert.False(t, ok)

	v, ok := ReviewEvent{Type: EventRedirect, Rating: IntPtr(5)}.RatingValue()
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.True(t, EventInternal.Valid())
	assert.False(t, EventType("click").Valid())
}
