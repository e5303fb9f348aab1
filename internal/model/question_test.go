package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerJSONShapes(t *testing.T) {
	choice, err := json.Marshal(ChoiceAnswer(2))
	require.NoError(t, err)
	assert.Equal(t, "2", string(choice), "option answers are bare numbers")

	text, err := json.Marshal(TextAnswer("fit_transform"))
	require.NoError(t, err)
	assert.Equal(t, `"fit_transform"`, string(text))
}

func TestAnswerUnmarshalAcceptsBothShapes(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte("3"), &a))
	assert.Equal(t, ChoiceAnswer(3), a)

	require.NoError(t, json.Unmarshal([]byte(`"model.fit"`), &a))
	assert.Equal(t, TextAnswer("model.fit"), a)

	assert.Error(t, json.Unmarshal([]byte("true"), &a))
}

func TestAnswerEquality(t *testing.T) {
	// Index 0 and empty text must not collide: the zero value is neither.
	assert.NotEqual(t, ChoiceAnswer(0), TextAnswer(""))
	assert.Equal(t, ChoiceAnswer(1), ChoiceAnswer(1))
	assert.NotEqual(t, TextAnswer("a"), TextAnswer("b"))
}
