package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecipe(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantName    string
		ingredients []string
		steps       []string
		time        *int
	}{
		{
			name:        "canonical",
			raw:         `{"name":"Tomato Soup","ingredients":["3 tomato","1 onion"],"steps":["Chop","Simmer"],"time":25}`,
			wantName:    "Tomato Soup",
			ingredients: []string{"3 tomato", "1 onion"},
			steps:       []string{"Chop", "Simmer"},
			time:        intPtr(25),
		},
		{
			name:        "legacy capitalized with encoded lists",
			raw:         `{"Name":"Omelette","Ingredients":"[\"2 egg\",\"milk\"]","Steps":"[\"Whisk\",\"Fry\"]","Time":"10"}`,
			wantName:    "Omelette",
			ingredients: []string{"2 egg", "milk"},
			steps:       []string{"Whisk", "Fry"},
			time:        intPtr(10),
		},
		{
			name:        "missing lists become empty",
			raw:         `{"name":"Toast"}`,
			wantName:    "Toast",
			ingredients: []string{},
			steps:       []string{},
		},
		{
			name:        "zero time is unknown",
			raw:         `{"name":"Salad","ingredients":[" lettuce ",""],"time":0}`,
			wantName:    "Salad",
			ingredients: []string{"lettuce"},
			steps:       []string{},
		},
		{
			name:        "null fields fall back to the other spelling",
			raw:         `{"name":null,"Name":"Stew","steps":null,"Steps":["Cook"]}`,
			wantName:    "Stew",
			ingredients: []string{},
			steps:       []string{"Cook"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NormalizeRecipe([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name)
			assert.Equal(t, tt.ingredients, r.Ingredients)
			assert.Equal(t, tt.steps, r.Steps)
			assert.Equal(t, tt.time, r.Time)
		})
	}
}

func TestNormalizeRecipeRejects(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"not an object", `["a"]`, "recipe"},
		{"missing name", `{"ingredients":[]}`, "name"},
		{"blank name", `{"name":"  "}`, "name"},
		{"numeric name", `{"name":5}`, "name"},
		{"ingredients object", `{"name":"x","ingredients":{"a":1}}`, "ingredients"},
		{"steps string not json", `{"name":"x","steps":"chop then fry"}`, "steps"},
		{"negative time", `{"name":"x","time":-5}`, "time"},
		{"time words", `{"name":"x","time":"quick"}`, "time"},
		{"time too large", `{"name":"x","time":1e300}`, "time"},
		{"time over a week", `{"name":"x","time":"10081"}`, "time"},
		{"fractional id", `{"name":"x","id":1.5}`, "id"},
		{"object id", `{"name":"x","id":{"v":1}}`, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRecipe([]byte(tt.raw))
			var mismatch *SchemaMismatchError
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			assert.Equal(t, tt.field, mismatch.Field)
		})
	}
}

func TestNormalizeRecipeID(t *testing.T) {
	r, err := NormalizeRecipe([]byte(`{"name":"Soup","id":"abc-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc-1", r.ID)

	r, err = NormalizeRecipe([]byte(`{"Name":"Soup","ID":42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", r.ID)

	r, err = NormalizeRecipe([]byte(`{"name":"Soup","time":10080}`))
	require.NoError(t, err)
	assert.Equal(t, intPtr(MaxRecipeMinutes), r.Time)
}

func intPtr(v int) *int {
	return &v
}
