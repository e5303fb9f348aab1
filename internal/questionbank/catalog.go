package questionbank

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"mlarcade/internal/model"
)

//go:embed questions.json
var embeddedCatalog []byte

// DefaultCatalog parses the catalog shipped with the binary.
func DefaultCatalog() ([]model.Question, error) {
	var questions []model.Question
	if err := json.Unmarshal(embeddedCatalog, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}
	return questions, nil
}

// Default builds a bank from the embedded catalog. It panics on a corrupt
// embed, which can only happen at build time.
func Default() *Bank {
	questions, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return New(questions)
}
