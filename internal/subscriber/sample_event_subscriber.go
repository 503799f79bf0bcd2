package subscriber

import (
	"context"

	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/pkg/storage"
	"k8s.io/klog/v2"
)

// SampleEventSubscriber 样本删除后清理归档的原文件
type SampleEventSubscriber struct {
	store storage.ObjectStore
}

func NewSampleEventSubscriber(store storage.ObjectStore) *SampleEventSubscriber {
	return &SampleEventSubscriber{store: store}
}

func (s *SampleEventSubscriber) Register(bus *eventbus.SampleEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.SampleEventCreated, s.handleSampleCreated)
	bus.Subscribe(eventbus.SampleEventDeleted, s.handleSampleDeleted)
}

func (s *SampleEventSubscriber) handleSampleCreated(ctx context.Context, event eventbus.SampleEvent) error {
	klog.V(6).Infof("样本创建事件: sampleID=%s, userID=%s, source=%s", event.SampleID, event.UserID, event.Source)
	return nil
}

// handleSampleDeleted 删除归档文件，失败只记录日志
func (s *SampleEventSubscriber) handleSampleDeleted(ctx context.Context, event eventbus.SampleEvent) error {
	if event.StorageKey == "" || s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, event.StorageKey); err != nil {
		klog.Warningf("删除样本归档文件失败: sampleID=%s, key=%s, err=%v", event.SampleID, event.StorageKey, err)
		return nil
	}
	klog.V(6).Infof("样本归档文件已删除: sampleID=%s, key=%s", event.SampleID, event.StorageKey)
	return nil
}
