package main

import (
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/pkg/storage"
	"github.com/penwise/backend/internal/subscriber"
)

// eventBuses 进程内事件总线
type eventBuses struct {
	sample  *eventbus.SampleEventBus
	profile *eventbus.ProfileEventBus
	post    *eventbus.PostEventBus
}

func newEventBuses() *eventBuses {
	return &eventBuses{
		sample:  eventbus.NewSampleEventBus(),
		profile: eventbus.NewProfileEventBus(),
		post:    eventbus.NewPostEventBus(),
	}
}

// register 注册全部订阅者
func (b *eventBuses) register(store storage.ObjectStore) {
	subscriber.NewSampleEventSubscriber(store).Register(b.sample)
	subscriber.NewActivitySubscriber().Register(b.profile, b.post)
}
