package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/talentfolio/server/internal/apperror"
	"github.com/talentfolio/server/internal/helpers"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	maxLabelLen       = 140
	maxDescriptionLen = 2000
	maxTagLen         = 120
)

type normalizerKind int

const (
	normLabel normalizerKind = iota // short text, clamped to 140
	normText                        // long text, clamped to 2000
	normNumber
	normDate
	normBool
	normWorkMode
)

type fieldSpec struct {
	key  string
	kind normalizerKind
}

// writableScalars is the catalog of profile fields the generic PATCH path
// may touch. Username, email and password are deliberately absent: they are
// immutable or have dedicated flows. Unknown submitted fields are ignored.
var writableScalars = map[string]fieldSpec{
	"phone":        {"phone", normLabel},
	"address":      {"address", normLabel},
	"locationText": {"locationText", normLabel},
	"avatarUrl":    {"avatarUrl", normLabel},
	"title":        {"title", normLabel},
	"summary":      {"summary", normText},
	"hourlyRate":   {"hourlyRate", normNumber},
	"availability": {"availability", normLabel},
	"jobType":      {"jobType", normLabel},
	// legacy plain-text fallbacks
	"education":  {"education", normText},
	"experience": {"experience", normText},
}

var experienceItemFields = map[string]fieldSpec{
	"title":       {"title", normLabel},
	"company":     {"company", normLabel},
	"startDate":   {"startDate", normDate},
	"endDate":     {"endDate", normDate},
	"ongoing":     {"ongoing", normBool},
	"location":    {"location", normLabel},
	"workMode":    {"workMode", normWorkMode},
	"description": {"description", normText},
}

var educationItemFields = map[string]fieldSpec{
	"degree":      {"degree", normLabel},
	"school":      {"school", normLabel},
	"startDate":   {"startDate", normDate},
	"endDate":     {"endDate", normDate},
	"location":    {"location", normLabel},
	"description": {"description", normText},
}

// ClampString trims surrounding whitespace and truncates to at most max
// bytes, backing up to a rune boundary so multi-byte input stays valid UTF-8.
func ClampString(s string, max int) string {
	s = helpers.StringTrim(s)
	if len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// NumberOrUnset coerces a submitted value to a number. Empty strings, nil
// and unparseable input all report ok=false, which the resolver turns into
// an unset.
func NumberOrUnset(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ParseFlexibleDate accepts RFC 3339 timestamps, plain YYYY-MM-DD dates and
// YYYY-MM strings (expanded to the first of the month). Anything else,
// including parse failures, normalizes to nil. The lossy fallback mirrors
// what the profile forms have always sent.
func ParseFlexibleDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) == 7 {
		s = s + "-01"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func normalizeScalar(spec fieldSpec, raw any) (value any, unset bool, err error) {
	switch spec.kind {
	case normNumber:
		n, ok := NumberOrUnset(raw)
		if !ok {
			return nil, true, nil
		}
		return n, false, nil
	case normDate:
		t := ParseFlexibleDate(raw)
		return t, false, nil
	case normBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, false, apperror.Validationf("%s must be a boolean", spec.key)
		}
		return b, false, nil
	case normWorkMode:
		s, ok := raw.(string)
		if !ok {
			return raw, false, nil
		}
		s = ClampString(s, maxLabelLen)
		if s != "" && !contains(WorkModeOptions, s) {
			return nil, false, apperror.Validationf("workMode must be one of %s", strings.Join(WorkModeOptions, ", "))
		}
		return s, false, nil
	default:
		if raw == nil {
			return nil, true, nil
		}
		s, ok := raw.(string)
		if !ok {
			// non-string input passes through; type validation belongs upstream
			return raw, false, nil
		}
		max := maxLabelLen
		if spec.kind == normText {
			max = maxDescriptionLen
		}
		s = ClampString(s, max)
		if s == "" {
			return nil, true, nil
		}
		return s, false, nil
	}
}

// ResolveUpdate turns a submitted field map into a set/unset mutation pair.
// A field absent from body never appears in either output; present-and-empty
// routes to unset; anything else is normalized and routed to set. Fields
// outside the writable catalog are silently skipped.
func ResolveUpdate(body map[string]any) (bson.M, []string, error) {
	set := bson.M{}
	var unset []string

	for key, raw := range body {
		spec, ok := writableScalars[key]
		if !ok {
			continue
		}
		value, toUnset, err := normalizeScalar(spec, raw)
		if err != nil {
			return nil, nil, err
		}
		if toUnset {
			unset = append(unset, spec.key)
			continue
		}
		set[spec.key] = value
	}

	if len(set) == 0 && len(unset) == 0 {
		return nil, nil, apperror.Validationf("no valid fields to update")
	}

	sort.Strings(unset)
	return set, unset, nil
}

// CleanTags trims, clamps and deduplicates tag values, dropping empties.
func CleanTags(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = ClampString(v, maxTagLen)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ReconcileTags computes the addToSet/pull operation lists for one tag
// collection. A value appearing in both lists is removed, not added: the
// pull runs after the add, so remove wins. Both lists empty after cleaning
// is a rejected no-op.
func ReconcileTags(add, remove []string) (addToSet, pull []string, err error) {
	addToSet = CleanTags(add)
	pull = CleanTags(remove)

	if len(pull) > 0 && len(addToSet) > 0 {
		removing := make(map[string]struct{}, len(pull))
		for _, v := range pull {
			removing[v] = struct{}{}
		}
		kept := addToSet[:0]
		for _, v := range addToSet {
			if _, drop := removing[v]; !drop {
				kept = append(kept, v)
			}
		}
		addToSet = kept
	}

	if len(addToSet) == 0 && len(pull) == 0 {
		return nil, nil, apperror.Validationf("no array changes provided")
	}
	return addToSet, pull, nil
}

// DiffTags is the full-desired-state form: the caller sends the collection
// it wants to end up with and the deltas are computed here.
func DiffTags(original, desired []string) (toAdd, toRemove []string) {
	desired = CleanTags(desired)
	have := make(map[string]struct{}, len(original))
	for _, v := range original {
		have[v] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, v := range desired {
		want[v] = struct{}{}
		if _, ok := have[v]; !ok {
			toAdd = append(toAdd, v)
		}
	}
	for _, v := range helpers.RemoveDuplicates(original) {
		if _, ok := want[v]; !ok {
			toRemove = append(toRemove, v)
		}
	}
	return toAdd, toRemove
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func stringField(body map[string]any, key string, max int) string {
	if raw, ok := body[key]; ok {
		if s, isStr := raw.(string); isStr {
			return ClampString(s, max)
		}
	}
	return ""
}

// ExperienceFromInput builds a new experience item from loosely typed input.
// Missing fields default rather than reject; the item id is assigned here
// and stays stable for the item's lifetime.
func ExperienceFromInput(body map[string]any) (ExperienceItem, error) {
	workMode := stringField(body, "workMode", maxLabelLen)
	if workMode != "" && !contains(WorkModeOptions, workMode) {
		return ExperienceItem{}, apperror.Validationf("workMode must be one of %s", strings.Join(WorkModeOptions, ", "))
	}
	ongoing, _ := body["ongoing"].(bool)

	now := time.Now()
	item := ExperienceItem{
		Title:       stringField(body, "title", maxLabelLen),
		Company:     stringField(body, "company", maxLabelLen),
		StartDate:   ParseFlexibleDate(body["startDate"]),
		EndDate:     ParseFlexibleDate(body["endDate"]),
		Ongoing:     ongoing,
		Location:    stringField(body, "location", maxLabelLen),
		WorkMode:    workMode,
		Description: stringField(body, "description", maxDescriptionLen),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return item, nil
}

// EducationFromInput builds a new education item from loosely typed input.
func EducationFromInput(body map[string]any) (EducationItem, error) {
	now := time.Now()
	item := EducationItem{
		Degree:      stringField(body, "degree", maxLabelLen),
		School:      stringField(body, "school", maxLabelLen),
		StartDate:   ParseFlexibleDate(body["startDate"]),
		EndDate:     ParseFlexibleDate(body["endDate"]),
		Location:    stringField(body, "location", maxLabelLen),
		Description: stringField(body, "description", maxDescriptionLen),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return item, nil
}

func resolveItemUpdate(catalog map[string]fieldSpec, arrayField string, body map[string]any) (bson.M, error) {
	set := bson.M{}
	for key, raw := range body {
		spec, ok := catalog[key]
		if !ok {
			continue
		}
		value, toUnset, err := normalizeScalar(spec, raw)
		if err != nil {
			return nil, err
		}
		// Item fields have defaults, not unset semantics: clearing a field
		// stores its zero value on the item.
		if toUnset {
			switch spec.kind {
			case normNumber, normDate:
				value = nil
			default:
				value = ""
			}
		}
		set[arrayField+".$."+spec.key] = value
	}

	if len(set) == 0 {
		return nil, apperror.Validationf("no valid fields to update")
	}
	set[arrayField+".$.updatedAt"] = time.Now()
	return set, nil
}

// ResolveExperienceItemUpdate maps submitted fields onto positional updates
// for one experience entry. Only submitted fields change.
func ResolveExperienceItemUpdate(body map[string]any) (bson.M, error) {
	return resolveItemUpdate(experienceItemFields, FieldExperienceItems, body)
}

// ResolveEducationItemUpdate is the education counterpart.
func ResolveEducationItemUpdate(body map[string]any) (bson.M, error) {
	return resolveItemUpdate(educationItemFields, FieldEducationItems, body)
}
