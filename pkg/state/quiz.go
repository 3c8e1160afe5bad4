package state

import (
	"github.com/google/uuid"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// QuizView is the quiz slice of the session state. Responses are
// local-only; no server round trip for answers exists in the protocol yet.
type QuizView struct {
	s *Store
}

// Quiz returns the quiz view.
func (s *Store) Quiz() QuizView {
	return QuizView{s: s}
}

// Questions returns a copy of the question list in presentation order.
func (v QuizView) Questions() []wire.QuizQuestion {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]wire.QuizQuestion, len(v.s.questions))
	copy(out, v.s.questions)
	return out
}

// ResponseFor returns the chosen option index for a question, if answered.
func (v QuizView) ResponseFor(questionID string) (int, bool) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	idx, ok := v.s.responses[questionID]
	return idx, ok
}

// Answer records the chosen option for a question.
func (v QuizView) Answer(questionID string, optionIndex int) error {
	v.s.mu.Lock()
	var q *wire.QuizQuestion
	for i := range v.s.questions {
		if v.s.questions[i].ID == questionID {
			q = &v.s.questions[i]
			break
		}
	}
	if q == nil {
		v.s.mu.Unlock()
		return ErrUnknownQuestion
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		v.s.mu.Unlock()
		return ErrBadOptionIndex
	}
	v.s.responses[questionID] = optionIndex
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeQuiz})
	return nil
}

// AddQuestion appends a question and returns it with its generated id.
func (v QuizView) AddQuestion(text string, typ wire.QuestionType, options []string, correctIndex int) wire.QuizQuestion {
	q := wire.QuizQuestion{
		ID:           uuid.NewString(),
		Text:         text,
		Type:         typ,
		Options:      append([]string(nil), options...),
		CorrectIndex: correctIndex,
	}

	v.s.mu.Lock()
	v.s.questions = append(v.s.questions, q)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeQuiz})
	return q
}

// DeleteQuestion removes a question and any recorded response to it.
func (v QuizView) DeleteQuestion(questionID string) error {
	v.s.mu.Lock()
	idx := -1
	for i := range v.s.questions {
		if v.s.questions[i].ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.s.mu.Unlock()
		return ErrUnknownQuestion
	}
	v.s.questions = append(v.s.questions[:idx:idx], v.s.questions[idx+1:]...)
	delete(v.s.responses, questionID)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeQuiz})
	return nil
}
