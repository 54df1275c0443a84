package content

import (
	"math/rand/v2"
	"strings"
)

// Shuffler permutes answers in place. Tests inject a deterministic one.
type Shuffler func(answers []string)

// RandomShuffle is the default Shuffler.
func RandomShuffle(answers []string) {
	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
}

// QuizCard is a question as shown to the player: the correct answer is mixed
// into the wrong ones and not identified.
type QuizCard struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// AnswerResult is the outcome of CheckAnswer.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// Score tiers, from best to worst.
const (
	TierPerfect = "perfect"
	TierAmazing = "amazing"
	TierGood    = "good"
	TierMore    = "more"
)

// ScoreTier buckets a finished quiz the way the result screen does.
func ScoreTier(score, total int) string {
	if total <= 0 {
		return TierMore
	}
	pct := float64(score) / float64(total) * 100
	switch {
	case pct >= 100:
		return TierPerfect
	case pct >= 80:
		return TierAmazing
	case pct >= 60:
		return TierGood
	default:
		return TierMore
	}
}

func cardOf(q QuizQuestion, shuffle Shuffler) QuizCard {
	answers := make([]string, 0, len(q.WrongAnswers)+1)
	answers = append(answers, q.CorrectAnswer)
	answers = append(answers, q.WrongAnswers...)
	if shuffle != nil {
		shuffle(answers)
	}
	return QuizCard{ID: q.ID, Question: q.Question, Answers: answers}
}

func grade(q QuizQuestion, answer string) AnswerResult {
	return AnswerResult{
		Correct:       strings.TrimSpace(answer) == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
	}
}
