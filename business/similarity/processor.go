package similarity

import (
	"context"

	"shopPulse/domain"
)

// FeedbackProcessor is the extension point invoked after every stored
// feedback row; reserved for future model tuning. Processing failures never
// fail the submission.
type FeedbackProcessor interface {
	Process(ctx context.Context, feedback domain.RecommendationFeedback) error
}

// NoopFeedbackProcessor is the default implementation that does nothing.
type NoopFeedbackProcessor struct{}

func (NoopFeedbackProcessor) Process(ctx context.Context, feedback domain.RecommendationFeedback) error {
	return nil
}
