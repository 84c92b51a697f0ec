package service

import (
	"encoding/json"
	"testing"
	"time"

	"todo-collab/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubtasks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.Subtasks
	}{
		{"absent", ``, models.Subtasks{}},
		{"null", `null`, models.Subtasks{}},
		{"empty string", `""`, models.Subtasks{}},
		{"empty array", `[]`, models.Subtasks{}},
		{
			"generates ids",
			`[{"title":"x","completed":false},{"title":"y","completed":true}]`,
			models.Subtasks{{ID: 1, Title: "x"}, {ID: 2, Title: "y", Completed: true}},
		},
		{
			"keeps ids and numbers after the highest",
			`[{"id":7,"title":"a"},{"title":"b"}]`,
			models.Subtasks{{ID: 7, Title: "a"}, {ID: 8, Title: "b"}},
		},
		{
			"renumbers duplicates",
			`[{"id":3,"title":"a"},{"id":3,"title":"b"},{"id":0,"title":"c"}]`,
			models.Subtasks{{ID: 3, Title: "a"}, {ID: 4, Title: "b"}, {ID: 5, Title: "c"}},
		},
		{
			"string-encoded array",
			`"[{\"title\":\"x\",\"completed\":true}]"`,
			models.Subtasks{{ID: 1, Title: "x", Completed: true}},
		},
		{
			"trims titles",
			`[{"id":1,"title":"  x  "}]`,
			models.Subtasks{{ID: 1, Title: "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubtasks(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSubtasksRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"title":"x"}`,
		`"not json"`,
		`[{"title":"   "}]`,
		`[{"id":"a","title":"x"}]`,
		`42`,
		`[{"id":9223372036854775807,"title":"a"},{"title":"b"}]`,
		`[{"id":2147483649,"title":"a"}]`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSubtasks(json.RawMessage(raw))
			requireKind(t, err, KindInvalid)
		})
	}
}

func TestParseSubtasksLargestID(t *testing.T) {
	got, err := ParseSubtasks(json.RawMessage(`[{"id":2147483648,"title":"a"},{"title":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, models.Subtasks{{ID: 1 << 31, Title: "a"}, {ID: 1<<31 + 1, Title: "b"}}, got)
}

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate(json.RawMessage(`"2024-05-01"`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	got, err = parseDueDate(json.RawMessage(`"2024-05-01T10:30:00+02:00"`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Location())

	for _, clear := range []string{`null`, `""`} {
		got, err = parseDueDate(json.RawMessage(clear))
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	_, err = parseDueDate(json.RawMessage(`"next tuesday"`))
	requireKind(t, err, KindInvalid)
	_, err = parseDueDate(json.RawMessage(`12`))
	requireKind(t, err, KindInvalid)
}
