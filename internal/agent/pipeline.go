package agent

import (
	"context"

	"github.com/richxcame/commuter-agent/internal/commuter"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"go.uber.org/zap"
)

// QueryProcessor answers a single free-text query.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, query string) (commuter.Payload, error)
}

// Pipeline turns a message list into an envelope. It has a single step: pick
// the latest user message and hand it to the processor.
type Pipeline struct {
	processor QueryProcessor
}

// NewPipeline creates a pipeline over processor.
func NewPipeline(processor QueryProcessor) *Pipeline {
	return &Pipeline{processor: processor}
}

// Run never returns nil.
func (p *Pipeline) Run(ctx context.Context, messages []Message) *AgentResponse {
	if len(messages) == 0 {
		return Failure(MsgNoMessages)
	}

	query, ok := latestUserMessage(messages)
	if !ok {
		return Failure(MsgNoUserMessage)
	}

	logger.InfoContext(ctx, "processing message", zap.Int("length", len(query)))

	payload, err := p.processor.ProcessQuery(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to process query", zap.Error(err))
		return Failure(err.Error())
	}
	return Success(payload)
}

// latestUserMessage returns the content of the last user message, which must
// be non-empty.
func latestUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsUser() {
			return messages[i].Content, messages[i].Content != ""
		}
	}
	return "", false
}
