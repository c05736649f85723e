package questions

import (
	"context"
	"fmt"
	"strings"

	"millionaire-service/internal/domain"
)

// Generator produces a main-game question sized to a contestant's age and prize level.
type Generator interface {
	Generate(ctx context.Context, age, prize, tier int) (domain.GameQuestion, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, age, prize, tier int) (domain.GameQuestion, error)

func (f GeneratorFunc) Generate(ctx context.Context, age, prize, tier int) (domain.GameQuestion, error) {
	return f(ctx, age, prize, tier)
}

// Disabled is used when no generation endpoint is configured; every turn gets the fallback question.
var Disabled Generator = GeneratorFunc(func(context.Context, int, int, int) (domain.GameQuestion, error) {
	return domain.GameQuestion{}, fmt.Errorf("%w: no generator configured", domain.ErrProvisioning)
})

// Validate checks the shape of a generated question.
func Validate(q domain.GameQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question text", domain.ErrProvisioning)
	}
	if len(q.Options) != domain.OptionCount {
		return fmt.Errorf("%w: expected %d options, got %d", domain.ErrProvisioning, domain.OptionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", domain.ErrProvisioning, i)
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= domain.OptionCount {
		return fmt.Errorf("%w: answer index %d out of range", domain.ErrProvisioning, q.CorrectAnswerIndex)
	}
	return nil
}
