package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentfolio/server/internal/apperror"
)

func TestResolveUpdateAbsentFieldsUntouched(t *testing.T) {
	set, unset, err := ResolveUpdate(map[string]any{"title": "Engineer"})
	require.NoError(t, err)

	assert.Equal(t, "Engineer", set["title"])
	assert.Len(t, set, 1)
	assert.Empty(t, unset)
}

func TestResolveUpdateRejectsNoValidFields(t *testing.T) {
	for name, body := range map[string]map[string]any{
		"empty body":         {},
		"only unknown field": {"bogus": "value"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := ResolveUpdate(body)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.Validation))
			assert.Contains(t, err.Error(), "no valid fields")
		})
	}
}

func TestResolveUpdateEmptyValueUnsets(t *testing.T) {
	set, unset, err := ResolveUpdate(map[string]any{
		"summary": "",
		"phone":   nil,
		"title":   "  Backend Dev  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend Dev", set["title"])
	assert.ElementsMatch(t, []string{"summary", "phone"}, unset)
}

func TestResolveUpdateHourlyRate(t *testing.T) {
	// empty string clears rather than storing zero
	set, unset, err := ResolveUpdate(map[string]any{"hourlyRate": ""})
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Equal(t, []string{"hourlyRate"}, unset)

	// numeric string parses
	set, unset, err = ResolveUpdate(map[string]any{"hourlyRate": "12.5"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, set["hourlyRate"])
	assert.Empty(t, unset)

	// JSON numbers arrive as float64
	set, _, err = ResolveUpdate(map[string]any{"hourlyRate": float64(40)})
	require.NoError(t, err)
	assert.Equal(t, float64(40), set["hourlyRate"])

	// garbage clears too
	_, unset, err = ResolveUpdate(map[string]any{"hourlyRate": "a lot"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hourlyRate"}, unset)
}

func TestResolveUpdateIgnoresImmutableFields(t *testing.T) {
	set, unset, err := ResolveUpdate(map[string]any{
		"username": "someone-else",
		"email":    "evil@example.com",
		"password": "hunter2",
		"title":    "Designer",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"title": "Designer"}, map[string]any(set))
	assert.Empty(t, unset)
}

func TestClampString(t *testing.T) {
	assert.Equal(t, "padded", ClampString("  padded  ", 140))

	long := strings.Repeat("x", 200)
	assert.Len(t, ClampString(long, 140), 140)
}

func TestClampStringKeepsValidUTF8(t *testing.T) {
	// a two-byte rune straddling the limit is dropped whole, not cut in half
	s := strings.Repeat("a", 139) + "é"
	got := ClampString(s, 140)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 139), got)

	// all-multibyte input stays valid at any cutoff
	accents := strings.Repeat("é", 100)
	got = ClampString(accents, 141)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 141)
	assert.Equal(t, strings.Repeat("é", 70), got)

	// the resolved update never carries invalid bytes either
	set, _, err := ResolveUpdate(map[string]any{"title": s})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(set["title"].(string)))
}

func TestParseFlexibleDate(t *testing.T) {
	got := ParseFlexibleDate("2023-07")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), *got)

	got = ParseFlexibleDate("2023-07-15")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC), *got)

	got = ParseFlexibleDate("2023-07-15T10:30:00Z")
	require.NotNil(t, got)

	// the documented lossy fallback
	assert.Nil(t, ParseFlexibleDate("last summer"))
	assert.Nil(t, ParseFlexibleDate(""))
	assert.Nil(t, ParseFlexibleDate(nil))
	assert.Nil(t, ParseFlexibleDate(42))
}

func TestReconcileTagsDeduplicates(t *testing.T) {
	addToSet, pull, err := ReconcileTags([]string{"Go", "Go", "  Go  ", "SQL"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "SQL"}, addToSet)
	assert.Empty(t, pull)
}

func TestReconcileTagsRemoveWins(t *testing.T) {
	addToSet, pull, err := ReconcileTags([]string{"Go", "Rust"}, []string{"Go"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Rust"}, addToSet)
	assert.Equal(t, []string{"Go"}, pull)
}

func TestReconcileTagsRejectsNoChanges(t *testing.T) {
	_, _, err := ReconcileTags(nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.Validation))

	// whitespace-only entries clean away to nothing
	_, _, err = ReconcileTags([]string{"  ", ""}, []string{" "})
	require.Error(t, err)
}

func TestDiffTags(t *testing.T) {
	toAdd, toRemove := DiffTags([]string{"Go", "SQL"}, []string{"Go", "Rust"})
	assert.Equal(t, []string{"Rust"}, toAdd)
	assert.Equal(t, []string{"SQL"}, toRemove)

	// identical desired state produces no deltas
	toAdd, toRemove = DiffTags([]string{"Go"}, []string{"Go"})
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)
}

func TestExperienceFromInputDefaults(t *testing.T) {
	item, err := ExperienceFromInput(map[string]any{"title": "Engineer"})
	require.NoError(t, err)

	assert.Equal(t, "Engineer", item.Title)
	assert.Empty(t, item.Company)
	assert.Nil(t, item.StartDate)
	assert.Nil(t, item.EndDate)
	assert.False(t, item.Ongoing)
	assert.Empty(t, item.WorkMode)
}

func TestExperienceFromInputRejectsBadWorkMode(t *testing.T) {
	_, err := ExperienceFromInput(map[string]any{"title": "Engineer", "workMode": "freelancing"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.Validation))

	item, err := ExperienceFromInput(map[string]any{"title": "Engineer", "workMode": "remote"})
	require.NoError(t, err)
	assert.Equal(t, "remote", item.WorkMode)
}

func TestResolveExperienceItemUpdateOnlySubmittedFields(t *testing.T) {
	set, err := ResolveExperienceItemUpdate(map[string]any{"company": "Acme"})
	require.NoError(t, err)

	assert.Equal(t, "Acme", set["experienceItems.$.company"])
	_, hasTitle := set["experienceItems.$.title"]
	assert.False(t, hasTitle)
	// the item's own timestamp always moves
	_, hasUpdated := set["experienceItems.$.updatedAt"]
	assert.True(t, hasUpdated)
}

func TestResolveEducationItemUpdateRejectsEmpty(t *testing.T) {
	_, err := ResolveEducationItemUpdate(map[string]any{"unknown": "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.Validation))
}
