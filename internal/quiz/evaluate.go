package quiz

// Response is one submission for the current question.
type Response struct {
	Input   string
	Timeout bool
}

// Evaluation is the outcome of a submission, observable while the session awaits reveal.
type Evaluation struct {
	ItemID         string
	Type           QuizType
	Given          string
	Chosen         *PresentedOption
	Correct        bool
	Timeout        bool
	CorrectAnswers []string
	CorrectLabels  []string
}

type evaluator interface {
	evaluate(q *question, resp Response) (Evaluation, error)
}

type textEvaluator struct{}

func (textEvaluator) evaluate(q *question, resp Response) (Evaluation, error) {
	given := NormalizeAnswer(resp.Input)
	return Evaluation{
		Given:   given,
		Correct: q.item.Accepts(given),
	}, nil
}

type choiceEvaluator struct{}

func (choiceEvaluator) evaluate(q *question, resp Response) (Evaluation, error) {
	chosen, ok := findPresented(q.options, resp.Input)
	if !ok {
		return Evaluation{}, ErrInvalidChoice
	}

	correct := chosen.IsCorrect
	if q.legacy {
		correct = q.item.Accepts(chosen.Text)
	}
	return Evaluation{
		Given:   NormalizeAnswer(chosen.Text),
		Chosen:  &chosen,
		Correct: correct,
	}, nil
}

var evaluators = map[QuizType]evaluator{
	TypeGuessImage:     textEvaluator{},
	TypeTextQuestion:   textEvaluator{},
	TypeFillBlank:      textEvaluator{},
	TypeMultipleChoice: choiceEvaluator{},
	TypeTrueFalse:      choiceEvaluator{},
}

func evaluate(q *question, resp Response) (Evaluation, error) {
	var (
		ev  Evaluation
		err error
	)
	if resp.Timeout {
		ev = Evaluation{Timeout: true}
	} else {
		strategy, ok := evaluators[q.item.Type]
		if !ok {
			return Evaluation{}, ErrInvalidQuizType
		}
		ev, err = strategy.evaluate(q, resp)
		if err != nil {
			return Evaluation{}, err
		}
	}

	ev.ItemID = q.item.ID
	ev.Type = q.item.Type
	ev.CorrectAnswers = append([]string(nil), q.item.CorrectAnswers...)
	for _, option := range q.options {
		if option.IsCorrect || (q.legacy && q.item.Accepts(option.Text)) {
			ev.CorrectLabels = append(ev.CorrectLabels, option.Label)
		}
	}
	return ev, nil
}
