package subscriber

import (
	"context"

	"github.com/penwise/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

// ActivitySubscriber 记录画像和帖子的变更日志
type ActivitySubscriber struct{}

func NewActivitySubscriber() *ActivitySubscriber {
	return &ActivitySubscriber{}
}

func (s *ActivitySubscriber) Register(profileBus *eventbus.ProfileEventBus, postBus *eventbus.PostEventBus) {
	if profileBus != nil {
		profileBus.Subscribe(eventbus.ProfileEventCreated, s.handleProfileEvent)
		profileBus.Subscribe(eventbus.ProfileEventDeleted, s.handleProfileEvent)
	}
	if postBus != nil {
		postBus.Subscribe(eventbus.PostEventGenerated, s.handlePostGenerated)
		postBus.Subscribe(eventbus.PostEventSaved, s.handlePostEvent)
		postBus.Subscribe(eventbus.PostEventUpdated, s.handlePostEvent)
		postBus.Subscribe(eventbus.PostEventDeleted, s.handlePostEvent)
	}
}

func (s *ActivitySubscriber) handleProfileEvent(ctx context.Context, event eventbus.ProfileEvent) error {
	klog.V(6).Infof("画像事件: type=%s, profileID=%s, userID=%s, samples=%d", event.Type, event.ProfileID, event.UserID, event.SampleCount)
	return nil
}

// handlePostGenerated 生成失败走兜底文本时提升日志级别
func (s *ActivitySubscriber) handlePostGenerated(ctx context.Context, event eventbus.PostEvent) error {
	if event.Fallback {
		klog.Warningf("内容生成返回兜底文本: profileID=%s, userID=%s", event.ProfileID, event.UserID)
		return nil
	}
	klog.V(6).Infof("内容生成完成: profileID=%s, userID=%s", event.ProfileID, event.UserID)
	return nil
}

func (s *ActivitySubscriber) handlePostEvent(ctx context.Context, event eventbus.PostEvent) error {
	klog.V(6).Infof("帖子事件: type=%s, postID=%s, profileID=%s, userID=%s", event.Type, event.PostID, event.ProfileID, event.UserID)
	return nil
}
