package questions

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
)

// Provisioner wraps a Generator so a turn is never blocked: any failure is replaced
// by the fallback question. Concurrent calls with the same key share one generation.
type Provisioner struct {
	gen     Generator
	log     *zap.Logger
	timeout time.Duration
	sf      singleflight.Group
}

func NewProvisioner(gen Generator, log *zap.Logger, timeout time.Duration) *Provisioner {
	if gen == nil {
		gen = Disabled
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{gen: gen, log: log, timeout: timeout}
}

// Provide returns a question for tier and whether it is the fallback.
func (p *Provisioner) Provide(ctx context.Context, key string, age, prize, tier int) (domain.GameQuestion, bool) {
	v, _, _ := p.sf.Do(fmt.Sprintf("%s/%d", key, tier), func() (interface{}, error) {
		return p.generate(ctx, age, prize, tier), nil
	})
	res := v.(provided)
	q := res.question
	q.Options = append([]string(nil), q.Options...)
	q.QuestionIndex = domain.Ptr(tier)
	return q, res.fallback
}

type provided struct {
	question domain.GameQuestion
	fallback bool
}

func (p *Provisioner) generate(ctx context.Context, age, prize, tier int) provided {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	q, err := p.gen.Generate(ctx, age, prize, tier)
	if err == nil {
		err = Validate(q)
	}
	if err != nil {
		p.log.Warn("question generation failed, using fallback",
			zap.Int("age", age), zap.Int("prize", prize), zap.Int("tier", tier), zap.Error(err))
		return provided{question: domain.FallbackQuestion(tier), fallback: true}
	}
	p.log.Debug("question generated", zap.Int("tier", tier), zap.Int("prize", prize))
	return provided{question: q}
}
