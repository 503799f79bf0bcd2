package eventbus

type SampleEventType string

const (
	SampleEventCreated SampleEventType = "SampleCreated"
	SampleEventDeleted SampleEventType = "SampleDeleted"
)

type SampleEvent struct {
	Type       SampleEventType
	SampleID   string
	UserID     string
	Source     string
	StorageKey string // 归档原文件 key，没有归档时为空
}

type SampleEventHandler = Handler[SampleEvent]
type SampleEventBus = Bus[SampleEventType, SampleEvent]

func NewSampleEventBus() *SampleEventBus {
	return NewBus[SampleEventType, SampleEvent]()
}

type ProfileEventType string

const (
	ProfileEventCreated ProfileEventType = "ProfileCreated"
	ProfileEventDeleted ProfileEventType = "ProfileDeleted"
)

type ProfileEvent struct {
	Type        ProfileEventType
	ProfileID   string
	UserID      string
	SampleCount int
}

type ProfileEventHandler = Handler[ProfileEvent]
type ProfileEventBus = Bus[ProfileEventType, ProfileEvent]

func NewProfileEventBus() *ProfileEventBus {
	return NewBus[ProfileEventType, ProfileEvent]()
}

type PostEventType string

const (
	PostEventGenerated PostEventType = "PostGenerated"
	PostEventSaved     PostEventType = "PostSaved"
	PostEventUpdated   PostEventType = "PostUpdated"
	PostEventDeleted   PostEventType = "PostDeleted"
)

type PostEvent struct {
	Type      PostEventType
	PostID    string
	ProfileID string
	UserID    string
	Fallback  bool // 生成失败返回了兜底文本
}

type PostEventHandler = Handler[PostEvent]
type PostEventBus = Bus[PostEventType, PostEvent]

func NewPostEventBus() *PostEventBus {
	return NewBus[PostEventType, PostEvent]()
}
