package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"playday/pkg/config"
	apperrors "playday/pkg/errors"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySubscriberRepository struct {
	mu     sync.Mutex
	emails map[string]bool
	err    error
}

func (m *memorySubscriberRepository) Upsert(ctx context.Context, email string) (*model.Subscriber, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emails[email] {
		return &model.Subscriber{Email: email}, false, nil
	}
	m.emails[email] = true
	return &model.Subscriber{ID: "s-" + email, Email: email}, true, nil
}

type recordingPublisher struct {
	events []model.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event model.ChangeEvent) {
	p.events = append(p.events, event)
}

func newService(repo *memorySubscriberRepository, pub *recordingPublisher) SubscriberService {
	return NewSubscriberService(repo, pub, &config.Config{Log: logger.Discard()})
}

func TestSubscribe_ResubscribeIsAccepted(t *testing.T) {
	repo := &memorySubscriberRepository{emails: map[string]bool{}}
	pub := &recordingPublisher{}
	svc := newService(repo, pub)

	_, err := svc.Subscribe(context.Background(), &model.SubscribeRequest{Email: "fan@example.com"})
	require.NoError(t, err)
	_, err = svc.Subscribe(context.Background(), &model.SubscribeRequest{Email: " FAN@example.com"})
	require.NoError(t, err)

	assert.Len(t, repo.emails, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "subscriber.created", pub.events[0].EventType())
	assert.Equal(t, "fan@example.com", pub.events[0].Attributes["email"])
}

func TestSubscribe_EmailFormat(t *testing.T) {
	svc := newService(&memorySubscriberRepository{emails: map[string]bool{}}, &recordingPublisher{})

	for _, email := range []string{"", "no-at-sign", "a@b", "a+b@example.com", "a@b.c"} {
		_, err := svc.Subscribe(context.Background(), &model.SubscribeRequest{Email: email})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "email %q: %v", email, err)
	}

	for _, email := range []string{"first.last@example.co", "a_b-c@sub.example.org"} {
		_, err := svc.Subscribe(context.Background(), &model.SubscribeRequest{Email: email})
		assert.NoError(t, err, email)
	}
}

func TestSubscribe_StoreFailure(t *testing.T) {
	svc := newService(&memorySubscriberRepository{err: errors.New("timeout")}, &recordingPublisher{})
	_, err := svc.Subscribe(context.Background(), &model.SubscribeRequest{Email: "fan@example.com"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
