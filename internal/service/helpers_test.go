package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/penwise/backend/config"
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/pkg/database"
	"github.com/penwise/backend/internal/pkg/linkedin"
	"github.com/penwise/backend/internal/pkg/llm/llmtest"
	"github.com/penwise/backend/internal/pkg/storage"
	"github.com/penwise/backend/internal/repository"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	llm        *llmtest.StubCompleter
	profiles   repository.ProfileRepository
	posts      repository.PostRepository
	samples    repository.SampleRepository
	sampleBus  *eventbus.SampleEventBus
	profileBus *eventbus.ProfileEventBus
	postBus    *eventbus.PostEventBus

	analyzer      *StyleAnalyzer
	profileSvc    ProfileService
	postSvc       PostService
	generator     *Generator
	ingest        *IngestService
	engagement    *EngagementService
	linkedInStub  *fakeLinkedIn
	storageRoot   string
	ingestOptions config.IngestConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	root := t.TempDir()
	store, err := storage.NewLocalStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{
		db:           db,
		llm:          &llmtest.StubCompleter{},
		profiles:     repository.NewProfileRepository(db),
		posts:        repository.NewPostRepository(db),
		samples:      repository.NewSampleRepository(db),
		sampleBus:    eventbus.NewSampleEventBus(),
		profileBus:   eventbus.NewProfileEventBus(),
		postBus:      eventbus.NewPostEventBus(),
		linkedInStub: &fakeLinkedIn{},
		storageRoot:  root,
		ingestOptions: config.IngestConfig{
			MaxFileBytes:     1 << 20,
			URLConcurrency:   2,
			AllowPrivateURLs: true,
		},
	}
	env.analyzer = NewStyleAnalyzer(env.llm)
	env.profileSvc = NewProfileService(env.profiles, env.samples, env.analyzer, env.profileBus)
	env.postSvc = NewPostService(env.posts, env.profiles, env.postBus)
	env.generator = NewGenerator(env.llm, env.profiles, env.postBus)
	env.ingest = NewIngestService(env.samples, env.profileSvc, env.analyzer, store, env.linkedInStub, env.sampleBus, env.ingestOptions)
	env.engagement = NewEngagementService(env.llm)
	return env
}

type fakeLinkedIn struct {
	profile    *linkedin.Profile
	posts      []linkedin.Post
	err        error
	authorURNs []string
}

func (f *fakeLinkedIn) FetchProfile(ctx context.Context, accessToken string) (*linkedin.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeLinkedIn) FetchPosts(ctx context.Context, accessToken, authorURN string) ([]linkedin.Post, error) {
	f.authorURNs = append(f.authorURNs, authorURN)
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

// recorder 收集事件总线上的事件
type recorder[E any] struct {
	mu     sync.Mutex
	events []E
}

func (r *recorder[E]) handle(ctx context.Context, event E) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *recorder[E]) all() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]E(nil), r.events...)
}

func strPtr(s string) *string { return &s }

const analysisJSON = `{
  "toneDistribution": {"formal": 40, "conversational": 35, "inspirational": 25},
  "sentenceStructure": {"simple": 50, "compound": 30, "complex": 20},
  "vocabularyLevel": 65,
  "averageSentenceLength": 12.5,
  "commonPhrases": ["at the end of the day", "let's dive in"],
  "topicAreas": ["leadership", "hiring"]
}`
