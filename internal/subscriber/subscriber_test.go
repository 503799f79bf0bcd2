package subscriber

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/penwise/backend/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	deleted []string
	err     error
}

func (s *recordingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.err
}

func TestSampleDeletedRemovesArchive(t *testing.T) {
	store := &recordingStore{}
	bus := eventbus.NewSampleEventBus()
	NewSampleEventSubscriber(store).Register(bus)

	err := bus.Publish(context.Background(), eventbus.SampleEventDeleted, eventbus.SampleEvent{
		Type: eventbus.SampleEventDeleted, SampleID: "s-1", StorageKey: "user-1/s-1/notes.md",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1/s-1/notes.md"}, store.deleted)

	// 没有归档文件时不访问存储
	err = bus.Publish(context.Background(), eventbus.SampleEventDeleted, eventbus.SampleEvent{Type: eventbus.SampleEventDeleted, SampleID: "s-2"})
	require.NoError(t, err)
	assert.Len(t, store.deleted, 1)
}

func TestSampleDeletedStoreFailureIsSwallowed(t *testing.T) {
	store := &recordingStore{err: errors.New("minio down")}
	bus := eventbus.NewSampleEventBus()
	NewSampleEventSubscriber(store).Register(bus)

	err := bus.Publish(context.Background(), eventbus.SampleEventDeleted, eventbus.SampleEvent{
		Type: eventbus.SampleEventDeleted, SampleID: "s-1", StorageKey: "k",
	})
	assert.NoError(t, err)
}

func TestActivitySubscriberHandlesAllEvents(t *testing.T) {
	profileBus := eventbus.NewProfileEventBus()
	postBus := eventbus.NewPostEventBus()
	NewActivitySubscriber().Register(profileBus, postBus)

	ctx := context.Background()
	assert.NoError(t, profileBus.Publish(ctx, eventbus.ProfileEventCreated, eventbus.ProfileEvent{Type: eventbus.ProfileEventCreated, ProfileID: "p-1"}))
	assert.NoError(t, postBus.Publish(ctx, eventbus.PostEventGenerated, eventbus.PostEvent{Type: eventbus.PostEventGenerated, Fallback: true}))
	assert.NoError(t, postBus.Publish(ctx, eventbus.PostEventDeleted, eventbus.PostEvent{Type: eventbus.PostEventDeleted, PostID: "x"}))
}
