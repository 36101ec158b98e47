package source

import (
	"context"
	"sync/atomic"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/pkg/anthropic"
)

// fakeSource returns scripted results in order, repeating the last one.
type fakeSource struct {
	name    string
	results [][]model.Candidate
	errs    []error
	calls   atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, _ Request) ([]model.Candidate, error) {
	i := int(f.calls.Add(1)) - 1
	var err error
	if len(f.errs) > 0 {
		err = f.errs[min(i, len(f.errs)-1)]
	}
	if err != nil {
		return nil, err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	return f.results[min(i, len(f.results)-1)], nil
}

// fakeAnthropic returns a fixed reply and records the last request.
type fakeAnthropic struct {
	reply string
	err   error
	last  anthropic.MessageRequest
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
		Usage:   anthropic.TokenUsage{InputTokens: 200, OutputTokens: 120},
	}, nil
}
