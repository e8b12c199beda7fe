// Package quizfile reads prepared quizzes from disk for offline practice.
package quizfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// File is the on-disk layout. A bare list of questions is accepted as well.
type File struct {
	Summary   string                `json:"summary" yaml:"summary"`
	Questions []entity.QuizQuestion `json:"questions" yaml:"questions"`
}

// Load reads a quiz from path. The format is chosen by extension; anything
// other than .json is parsed as YAML, which also accepts JSON.
func Load(path string) (*File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open quiz file: %w", err)
	}
	defer f.Close()
	return Decode(f, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Decode parses a quiz document and validates every question.
func Decode(r io.Reader, isJSON bool) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read quiz file: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, entity.ErrEmptyQuiz
	}

	var file File
	if raw[0] == '[' || (!isJSON && raw[0] == '-') {
		err = unmarshal(raw, isJSON, &file.Questions)
	} else {
		err = unmarshal(raw, isJSON, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode quiz file: %w", err)
	}
	if err := Validate(file.Questions); err != nil {
		return nil, err
	}
	return &file, nil
}

func unmarshal(raw []byte, isJSON bool, v any) error {
	if isJSON {
		return json.Unmarshal(raw, v)
	}
	return yaml.Unmarshal(raw, v)
}

// Validate checks that every question can be answered and fills in defaults.
func Validate(questions []entity.QuizQuestion) error {
	if len(questions) == 0 {
		return entity.ErrEmptyQuiz
	}
	var errs []error
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.Type == "" {
			q.Type = entity.QuestionMultipleChoice
		}
		switch {
		case strings.TrimSpace(q.Question) == "":
			errs = append(errs, fmt.Errorf("question %s: empty text", q.ID))
		case len(q.Options) < 2:
			errs = append(errs, fmt.Errorf("question %s: needs at least two options", q.ID))
		case !q.HasOption(q.CorrectAnswer):
			errs = append(errs, fmt.Errorf("question %s: correct answer %q is not an option", q.ID, q.CorrectAnswer))
		}
	}
	return errors.Join(errs...)
}
