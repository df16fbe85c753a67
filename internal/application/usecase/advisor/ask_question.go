package advisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/application/adapter"
	domainerror "github.com/money-tracker/backend/internal/domain/error"
)

// AskQuestionInput represents a question for the advisor.
type AskQuestionInput struct {
	UserID   uuid.UUID
	Question string
}

// AskQuestionOutput represents the advisor's answer.
type AskQuestionOutput struct {
	Answer   string
	Attempts int
}

// AskQuestionUseCase forwards a question to the language model, retrying quota failures.
type AskQuestionUseCase struct {
	model       adapter.LanguageModel
	maxAttempts int
	retryWait   time.Duration
}

// NewAskQuestionUseCase creates a new AskQuestionUseCase instance. maxRetries counts the
// calls made after the first one.
func NewAskQuestionUseCase(model adapter.LanguageModel, maxRetries int, retryWait time.Duration) *AskQuestionUseCase {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &AskQuestionUseCase{
		model:       model,
		maxAttempts: maxRetries + 1,
		retryWait:   retryWait,
	}
}

// Execute asks the question. Only quota errors are retried.
func (uc *AskQuestionUseCase) Execute(ctx context.Context, input AskQuestionInput) (*AskQuestionOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domainerror.NewAdvisorError(
			domainerror.ErrCodeQuestionRequired,
			messageQuestionRequired,
			domainerror.ErrQuestionRequired,
		)
	}

	if uc.model == nil || !uc.model.IsAvailable() {
		return nil, domainerror.NewAdvisorError(
			domainerror.ErrCodeAdvisorNotConfigured,
			messageNotConfigured,
			domainerror.ErrAdvisorNotConfigured,
		)
	}

	for attempt := 1; ; attempt++ {
		answer, err := uc.model.Generate(ctx, question)
		if err == nil {
			return &AskQuestionOutput{Answer: strings.TrimSpace(answer), Attempts: attempt}, nil
		}

		advisorErr := classifyError(err)
		if advisorErr.Code != domainerror.ErrCodeAdvisorQuotaExceeded || attempt >= uc.maxAttempts {
			slog.Error("Advisor request failed", "error", err, "userID", input.UserID, "attempts", attempt, "code", advisorErr.Code)
			return nil, advisorErr
		}

		slog.Warn("Advisor quota exceeded, retrying", "userID", input.UserID, "attempt", attempt, "wait", uc.retryWait)

		timer := time.NewTimer(uc.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, classifyError(ctx.Err())
		case <-timer.C:
		}
	}
}
