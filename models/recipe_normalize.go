package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxRecipeMinutes bounds a recipe's preparation time.
const MaxRecipeMinutes = 7 * 24 * 60

// SchemaMismatchError reports a recipe payload whose shape cannot be read.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("recipe %s: %s", e.Field, e.Reason)
}

// NormalizeRecipe reads a recipe in either the legacy shape (Name,
// Ingredients, Steps, Time with the lists as JSON encoded strings) or the
// canonical lowercase shape. Anything else is a *SchemaMismatchError.
func NormalizeRecipe(raw []byte) (*Recipe, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &SchemaMismatchError{Field: "recipe", Reason: "expected a JSON object"}
	}
	return NormalizeRecipeFields(fields)
}

func NormalizeRecipeFields(fields map[string]json.RawMessage) (*Recipe, error) {
	r := &Recipe{}

	nameRaw, ok := pick(fields, "name", "Name")
	if !ok {
		return nil, &SchemaMismatchError{Field: "name", Reason: "missing"}
	}
	if err := json.Unmarshal(nameRaw, &r.Name); err != nil {
		return nil, &SchemaMismatchError{Field: "name", Reason: "expected a string"}
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return nil, &SchemaMismatchError{Field: "name", Reason: "must not be blank"}
	}

	var err error
	if r.Ingredients, err = stringList(fields, "ingredients", "Ingredients"); err != nil {
		return nil, err
	}
	if r.Steps, err = stringList(fields, "steps", "Steps"); err != nil {
		return nil, err
	}

	if timeRaw, ok := pick(fields, "time", "Time"); ok {
		minutes, err := minutesValue(timeRaw)
		if err != nil {
			return nil, err
		}
		r.Time = minutes
	}

	if idRaw, ok := pick(fields, "id", "ID"); ok {
		id, err := idValue(idRaw)
		if err != nil {
			return nil, err
		}
		r.ID = id
	}
	if imgRaw, ok := pick(fields, "image_url", "ImageURL"); ok {
		var url string
		if json.Unmarshal(imgRaw, &url) == nil && url != "" {
			r.ImageURL = &url
		}
	}
	return r, nil
}

func pick(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

// stringList accepts a JSON array of strings or a string holding one.
// A missing field is an empty list.
func stringList(fields map[string]json.RawMessage, keys ...string) ([]string, error) {
	field := keys[0]
	raw, ok := pick(fields, keys...)
	if !ok {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list), nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, &SchemaMismatchError{Field: field, Reason: "expected an array of strings"}
	}
	if strings.TrimSpace(encoded) == "" {
		return []string{}, nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return nil, &SchemaMismatchError{Field: field, Reason: "string is not a JSON array of strings"}
	}
	return cleanList(list), nil
}

func cleanList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// minutesValue accepts a number or a numeric string. Zero means unknown.
func minutesValue(raw json.RawMessage) (*int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &SchemaMismatchError{Field: "time", Reason: "expected a number of minutes"}
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "min"))
		if s == "" {
			return nil, nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil, &SchemaMismatchError{Field: "time", Reason: "expected a number of minutes"}
		}
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &SchemaMismatchError{Field: "time", Reason: "must not be negative"}
	}
	if f == 0 {
		return nil, nil
	}
	if f > MaxRecipeMinutes {
		return nil, &SchemaMismatchError{Field: "time", Reason: fmt.Sprintf("must be at most %d minutes", MaxRecipeMinutes)}
	}
	minutes := int(math.Round(f))
	return &minutes, nil
}

// idValue accepts a string or an integer id.
func idValue(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return n.String(), nil
		}
	}
	return "", &SchemaMismatchError{Field: "id", Reason: "expected a string or integer"}
}
