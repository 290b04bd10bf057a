package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/analyst.txt
	analystRaw string

	//go:embed template/classifier.txt
	classifierRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Analyst    string
	Classifier string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Analyst:    strings.TrimSpace(analystRaw),
		Classifier: strings.TrimSpace(classifierRaw),
	}
}
