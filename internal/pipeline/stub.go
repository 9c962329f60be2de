package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/vidquiz/internal/models"
)

// Simulation backends. They stand in for real speech-to-text and LLM
// question generation: template fill plus an artificial per-segment
// delay so the UI has progress to show.

var lectureTopics = []string{
	"introduction to machine learning",
	"neural networks and deep learning",
	"convolutional neural networks",
	"recurrent neural networks",
	"transformers and attention mechanisms",
	"reinforcement learning",
	"natural language processing",
	"computer vision",
	"generative adversarial networks",
	"ethical considerations in AI",
}

// NewStubTextSource returns a TextSource that fabricates transcript
// text from a rotating topic list.
func NewStubTextSource(delay time.Duration) TextSource {
	return func(ctx context.Context, src Source, index int) (string, error) {
		if err := sleepCtx(ctx, delay); err != nil {
			return "", err
		}

		topic := lectureTopics[index%len(lectureTopics)]
		return fmt.Sprintf("In this segment of the lecture, we discuss %s. "+
			"This is an important concept in artificial intelligence with many practical applications. "+
			"We begin by exploring the fundamentals and then move on to more advanced concepts, "+
			"covering basic principles, implementation strategies, and real-world examples. "+
			"We also address common misconceptions and challenges in applying these techniques, "+
			"and close with future directions and ongoing research in this area.", topic), nil
	}
}

var questionTemplates = []string{
	"What is the main focus of %s?",
	"Which concept is most closely related to %s?",
	"What is a key application of %s?",
	"Which statement best describes %s?",
	"What is a limitation of %s?",
}

var optionSets = [][]string{
	{
		"It uses supervised learning techniques",
		"It relies on unsupervised learning",
		"It combines multiple models into an ensemble",
		"It requires reinforcement learning",
	},
	{
		"Neural networks with convolutional layers",
		"Traditional decision trees",
		"Support vector machines",
		"Linear regression models",
	},
	{
		"Computer vision applications",
		"Financial forecasting",
		"Medical diagnosis",
		"Natural language processing",
	},
	{
		"A model that learns representations through multiple layers",
		"A single-layer perceptron with linear activation",
		"A rule-based expert system",
		"A statistical method using Bayesian inference",
	},
}

var questionKeywords = []string{
	"machine learning",
	"neural networks",
	"deep learning",
	"convolutional networks",
	"recurrent networks",
	"transformers",
	"attention mechanisms",
	"reinforcement learning",
	"natural language processing",
	"computer vision",
}

// NewStubQuestionSource returns a QuestionSource that derives 2-3
// template questions per segment from keyword matches in its text.
// Pass seed 0 for a time-based seed; fix it for deterministic tests.
func NewStubQuestionSource(delay time.Duration, seed int64) QuestionSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex

	return func(ctx context.Context, segment models.Segment) ([]models.QuestionDraft, error) {
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}

		subject := "this segment"
		lower := strings.ToLower(segment.Text)
		for _, keyword := range questionKeywords {
			if strings.Contains(lower, keyword) {
				subject = keyword
				break
			}
		}

		mu.Lock()
		defer mu.Unlock()

		count := 2 + rng.Intn(2)
		drafts := make([]models.QuestionDraft, 0, count)
		for i := 0; i < count; i++ {
			set := optionSets[rng.Intn(len(optionSets))]
			options := make([]models.Option, len(set))
			for j, text := range set {
				options[j] = models.Option{Text: text}
			}
			correct := rng.Intn(len(options))
			options[correct].IsCorrect = true

			drafts = append(drafts, models.QuestionDraft{
				Text:               fmt.Sprintf(questionTemplates[i%len(questionTemplates)], subject),
				Options:            options,
				CorrectOptionIndex: correct,
			})
		}
		return drafts, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
