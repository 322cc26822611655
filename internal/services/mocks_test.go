package services

import (
	"context"

	"podsafe/internal/models"
	"podsafe/pkg/classifier"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, keywords []string) (classifier.Result, error) {
	args := m.Called(ctx, keywords)
	return args.Get(0).(classifier.Result), args.Error(1)
}

func (m *mockClassifier) Name() string { return "mock" }

// gatedChecker blocks each Check call until a reply is sent for its description.
type gatedChecker struct {
	replies map[string]chan reply
	started chan string
}

type reply struct {
	isForKids bool
	err       error
}

func newGatedChecker(descriptions ...string) *gatedChecker {
	g := &gatedChecker{replies: make(map[string]chan reply), started: make(chan string, len(descriptions))}
	for _, d := range descriptions {
		g.replies[d] = make(chan reply, 1)
	}
	return g
}

func (g *gatedChecker) Check(ctx context.Context, params CheckParams) (*models.Check, error) {
	g.started <- params.Input
	var r reply
	select {
	case r = <-g.replies[params.Input]:
	case <-ctx.Done():
		r = reply{err: ctx.Err()}
	}
	check := &models.Check{ID: uuid.New(), Keywords: []string{params.Input}, IsForKids: r.isForKids}
	return check, r.err
}

// ignoringCancelChecker keeps running after cancellation, like a response already on the wire.
type ignoringCancelChecker struct {
	*gatedChecker
}

func (g ignoringCancelChecker) Check(_ context.Context, params CheckParams) (*models.Check, error) {
	return g.gatedChecker.Check(context.Background(), params)
}
