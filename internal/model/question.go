package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Category groups questions into the arcade's four subject tracks
type Category string

const (
	CategoryDataMatrix      Category = "DATA_MATRIX"         // Data preprocessing
	CategoryNeuralForge     Category = "NEURAL_FORGE"        // Model training
	CategoryPerfScanner     Category = "PERFORMANCE_SCANNER" // Model evaluation
	CategoryCyberDeployment Category = "CYBER_DEPLOYMENT"    // MLOps
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeCodeCompletion QuestionType = "code_completion"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
)

// Answer is a submitted or expected answer value: an option index for
// multiple choice questions, text for everything else. The zero value is
// not a valid answer; use ChoiceAnswer or TextAnswer.
type Answer struct {
	Choice   int    `bson:"choice"`
	Text     string `bson:"text"`
	IsChoice bool   `bson:"isChoice"`
}

// ChoiceAnswer builds an answer referring to an option index.
func ChoiceAnswer(index int) Answer {
	return Answer{Choice: index, IsChoice: true}
}

// TextAnswer builds a free-text answer.
func TextAnswer(text string) Answer {
	return Answer{Text: text}
}

// MarshalJSON emits the catalog's native shape: a bare number for option
// indexes, a string for text answers.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsChoice {
		return json.Marshal(a.Choice)
	}
	return json.Marshal(a.Text)
}

// UnmarshalJSON accepts either a JSON number (option index) or a string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		*a = ChoiceAnswer(idx)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = TextAnswer(text)
		return nil
	}
	return fmt.Errorf("answer must be a number or a string, got %s", data)
}

func (a Answer) String() string {
	if a.IsChoice {
		return strconv.Itoa(a.Choice)
	}
	return a.Text
}

// Question is an immutable catalog entry. The catalog is loaded once at
// process start and never mutated.
type Question struct {
	ID            string       `json:"id" bson:"_id"`
	Category      Category     `json:"category" bson:"category"`
	Level         int          `json:"level" bson:"level"` // 1-9 difficulty levels
	Type          QuestionType `json:"type" bson:"type"`
	Title         string       `json:"title" bson:"title"`
	Question      string       `json:"question" bson:"question"`
	Code          string       `json:"code,omitempty" bson:"code,omitempty"`       // Optional code snippet
	Options       []string     `json:"options,omitempty" bson:"options,omitempty"` // For multiple choice
	CorrectAnswer Answer       `json:"correct_answer" bson:"correct_answer"`
	Explanation   string       `json:"explanation" bson:"explanation"`
	Points        int          `json:"points" bson:"points"`
	TimeLimit     int          `json:"time_limit" bson:"time_limit"` // in seconds
	Tags          []string     `json:"tags" bson:"tags"`
}
