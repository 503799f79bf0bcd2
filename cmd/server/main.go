package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/penwise/backend/config"
	"github.com/penwise/backend/internal/handler"
	"github.com/penwise/backend/internal/pkg/database"
	"github.com/penwise/backend/internal/pkg/linkedin"
	"github.com/penwise/backend/internal/pkg/llm"
	"github.com/penwise/backend/internal/pkg/ratelimit"
	"github.com/penwise/backend/internal/pkg/storage"
	"github.com/penwise/backend/internal/repository"
	"github.com/penwise/backend/internal/router"
	"github.com/penwise/backend/internal/service"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if cfg.Database.Type == "" || cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	completer, err := llm.NewCompleter(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	limiter, err := ratelimit.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	if closer, ok := limiter.(io.Closer); ok {
		defer closer.Close()
	}

	// 事件总线与订阅者
	buses := newEventBuses()
	buses.register(store)

	// 初始化 Repository
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	sampleRepo := repository.NewSampleRepository(db)

	// 初始化 Service
	analyzer := service.NewStyleAnalyzer(completer)
	profileService := service.NewProfileService(profileRepo, sampleRepo, analyzer, buses.profile)
	postService := service.NewPostService(postRepo, profileRepo, buses.post)
	generator := service.NewGenerator(completer, profileRepo, buses.post)
	engagement := service.NewEngagementService(completer)
	linkedInClient := linkedin.NewClient(cfg.LinkedIn.APIURL, cfg.Ingest.URLTimeout)
	ingestService := service.NewIngestService(sampleRepo, profileService, analyzer, store, linkedInClient, buses.sample, cfg.Ingest)

	// 初始化 Handler
	handlers := router.Handlers{
		WritingAssistant: handler.NewWritingAssistantHandler(profileService, postService, generator, engagement),
		Samples:          handler.NewSampleHandler(ingestService),
		Profiles:         handler.NewProfileHandler(profileService),
		Posts:            handler.NewPostHandler(postService),
		LinkedIn:         handler.NewLinkedInHandler(ingestService),
		Generate:         handler.NewGenerateHandler(generator),
	}

	// 设置路由
	r := router.Setup(cfg, handlers, limiter)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
