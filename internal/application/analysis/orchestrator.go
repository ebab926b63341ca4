package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/codereview/internal/application"
	"github.com/bryanwahyu/codereview/internal/domain/ai"
	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

// errNoCompiler is a wiring mistake, not a request failure.
var errNoCompiler = errors.New("orchestrator: prompt compiler not configured")

// Orchestrator runs one request/response cycle: validate, prompt, call the
// model, normalize. It does not persist anything.
// Safe for concurrent use; it holds no per-request state.
type Orchestrator struct {
	Client ai.Client
	Clock  application.Clock
	Logger *zap.Logger
	// Compile renders the prompt for one snippet. Required.
	Compile func(code, language string) string
	// Redact masks credential literals before the code leaves the process and
	// returns how many it masked. Nil sends the code unchanged.
	Redact func(code string) (string, int)
}

// Analyze returns a complete envelope or an error; never both and never a
// partial result.
func (o *Orchestrator) Analyze(ctx context.Context, req domain.Request) (*domain.Result, error) {
	log := o.logger()

	req, err := domain.ValidateRequest(req)
	if err != nil {
		return nil, err
	}
	req = domain.ApplyDefaults(req)
	if o.Compile == nil {
		return nil, errNoCompiler
	}

	if err := o.Client.Ready(); err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	start := time.Now()

	code := req.Code
	if o.Redact != nil {
		var n int
		code, n = o.Redact(code)
		if n > 0 {
			log.Info("redacted secrets before prompting", zap.Int("count", n))
		}
	}

	raw, err := o.Client.Complete(ctx, o.Compile(code, req.Language))
	if err != nil {
		return nil, fmt.Errorf("model completion: %w", err)
	}

	norm, err := domain.Normalize(raw, nil)
	if err != nil {
		var ne *domain.NormalizationError
		if errors.As(err, &ne) {
			log.Warn("model output rejected", zap.Error(ne.Err), zap.Int("dropped", len(norm.Rejected)), zap.String("raw", ne.Raw))
		}
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	for _, rej := range norm.Rejected {
		log.Warn("dropped malformed issue", zap.Int("index", rej.Index), zap.Error(rej.Err))
	}

	res := &domain.Result{
		ID:           uuid.NewString(),
		Code:         req.Code,
		Language:     req.Language,
		Issues:       norm.Issues,
		AnalysisTime: elapsed,
		Timestamp:    o.now(),
	}
	log.Debug("analysis finished",
		zap.String("id", res.ID),
		zap.String("language", res.Language),
		zap.Stringer("phase", norm.Phase),
		zap.Int("issues", len(res.Issues)),
		zap.Int("dropped", len(norm.Rejected)),
		zap.Int64("analysis_ms", elapsed),
	)
	return res, nil
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now().UTC()
	}
	return o.Clock.Now()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
