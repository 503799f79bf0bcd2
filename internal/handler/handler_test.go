package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/penwise/backend/config"
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/pkg/database"
	"github.com/penwise/backend/internal/pkg/linkedin"
	"github.com/penwise/backend/internal/pkg/llm/llmtest"
	"github.com/penwise/backend/internal/pkg/storage"
	"github.com/penwise/backend/internal/repository"
	"github.com/penwise/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const analysisJSON = `{
  "toneDistribution": {"formal": 40, "conversational": 35, "inspirational": 25},
  "sentenceStructure": {"simple": 50, "compound": 30, "complex": 20},
  "vocabularyLevel": 65,
  "averageSentenceLength": 12.5,
  "commonPhrases": ["at the end of the day"],
  "topicAreas": ["leadership"]
}`

type testServer struct {
	router *gin.Engine
	llm    *llmtest.StubCompleter
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	stub := &llmtest.StubCompleter{Response: analysisJSON}
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	sampleRepo := repository.NewSampleRepository(db)
	postBus := eventbus.NewPostEventBus()

	analyzer := service.NewStyleAnalyzer(stub)
	profiles := service.NewProfileService(profileRepo, sampleRepo, analyzer, eventbus.NewProfileEventBus())
	posts := service.NewPostService(postRepo, profileRepo, postBus)
	generator := service.NewGenerator(stub, profileRepo, postBus)
	ingest := service.NewIngestService(sampleRepo, profiles, analyzer, store, linkedin.NewClient("http://127.0.0.1:1", 0),
		eventbus.NewSampleEventBus(), config.IngestConfig{MaxFileBytes: 1 << 20, URLConcurrency: 1})

	r := gin.New()
	api := r.Group("/api")
	assistant := api.Group("/writing-assistant")
	NewWritingAssistantHandler(profiles, posts, generator, service.NewEngagementService(stub)).RegisterRoutes(assistant)
	NewSampleHandler(ingest).RegisterRoutes(assistant)
	NewProfileHandler(profiles).RegisterRoutes(api)
	NewPostHandler(posts).RegisterRoutes(api)
	NewLinkedInHandler(ingest).RegisterRoutes(api)
	NewGenerateHandler(generator).RegisterRoutes(api)

	return &testServer{router: r, llm: stub, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var payload map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unmarshal response error: %v, body=%s", err, w.Body.String())
		}
	}
	return w, payload
}

func (s *testServer) analyze(t *testing.T, userID string) string {
	t.Helper()
	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/analyze", gin.H{
		"userId":  userID,
		"samples": []gin.H{{"title": "Launch notes", "content": "We launched today. It was hard."}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := payload["profile"].(map[string]interface{})
	return profile["id"].(string)
}

func TestAnalyzeHandler(t *testing.T) {
	s := newTestServer(t)

	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/analyze", gin.H{
		"userId":  "user-1",
		"samples": []gin.H{{"title": "Launch notes", "content": "We launched today."}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	profile := payload["profile"].(map[string]interface{})
	assert.Equal(t, "Style from Launch notes", profile["name"])
	assert.Equal(t, float64(1), profile["sampleCount"])
	insights := profile["styleInsights"].(map[string]interface{})
	assert.Equal(t, float64(65), insights["vocabularyLevel"])

	w, payload = s.do(t, http.MethodPost, "/api/writing-assistant/analyze", gin.H{"userId": "user-1", "samples": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request. User ID and content samples are required.", payload["error"])
}

func TestGenerateHandler(t *testing.T) {
	s := newTestServer(t)
	profileID := s.analyze(t, "user-1")

	s.llm.Response = "Fresh post"
	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/generate", gin.H{
		"userId": "user-1", "profileId": profileID, "options": gin.H{"tone": "casual", "length": "short"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fresh post", payload["content"])

	w, payload = s.do(t, http.MethodPost, "/api/writing-assistant/generate", gin.H{"userId": "user-1", "profileId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Profile not found", payload["error"])

	w, _ = s.do(t, http.MethodPost, "/api/writing-assistant/generate", gin.H{"userId": "user-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandlers(t *testing.T) {
	s := newTestServer(t)
	profileID := s.analyze(t, "user-1")

	w, _ := s.do(t, http.MethodGet, "/api/writing-assistant/history", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/history", gin.H{
		"id": "ignored", "userId": "user-1", "profileId": profileID, "content": "Saved post",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, payload["success"])
	contentID := payload["contentId"].(string)
	assert.NotEqual(t, "ignored", contentID)

	w, payload = s.do(t, http.MethodGet, "/api/writing-assistant/history?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := payload["history"].([]interface{})
	require.Len(t, history, 1)
	entry := history[0].(map[string]interface{})
	assert.Equal(t, "Saved post", entry["content"])
	assert.Equal(t, "Style from Launch notes", entry["profile"].(map[string]interface{})["name"])

	w, _ = s.do(t, http.MethodDelete, "/api/writing-assistant/history/"+contentID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/writing-assistant/history/"+contentID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileHandlers(t *testing.T) {
	s := newTestServer(t)
	profileID := s.analyze(t, "user-1")

	w, payload := s.do(t, http.MethodGet, "/api/profiles?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, payload["profiles"], 1)

	w, payload = s.do(t, http.MethodGet, "/api/profiles/"+profileID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := payload["profile"].(map[string]interface{})
	phrases := profile["commonPhrases"].([]interface{})
	require.Len(t, phrases, 1)
	assert.Equal(t, "at the end of the day", phrases[0].(map[string]interface{})["phrase"])
	topics := profile["topicAreas"].([]interface{})
	require.Len(t, topics, 1)
	assert.Equal(t, float64(1), topics[0].(map[string]interface{})["relevanceScore"])
	assert.NotNil(t, profile["styleInsights"])

	w, _ = s.do(t, http.MethodGet, "/api/profiles/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/writing-assistant/profiles", gin.H{"profileId": profileID})
	assert.Equal(t, http.StatusOK, w.Code)
	w, payload = s.do(t, http.MethodDelete, "/api/writing-assistant/profiles", gin.H{"profileId": profileID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Profile not found", payload["error"])
}

func TestPostHandlers(t *testing.T) {
	s := newTestServer(t)
	profileID := s.analyze(t, "user-1")

	w, payload := s.do(t, http.MethodPost, "/api/posts", gin.H{
		"id": "post-1", "userId": "user-1", "profileId": profileID, "content": "We are Hiring!",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "post-1", payload["id"])

	w, payload = s.do(t, http.MethodGet, "/api/posts?userId=user-1&search=hiring", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, payload["posts"], 1)

	w, _ = s.do(t, http.MethodPatch, "/api/posts/post-1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, payload = s.do(t, http.MethodGet, "/api/posts/post-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "We are Hiring!", payload["post"].(map[string]interface{})["content"])

	w, _ = s.do(t, http.MethodPatch, "/api/posts/post-1", gin.H{"goal": "build_network"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, payload = s.do(t, http.MethodGet, "/api/posts/post-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "build_network", payload["post"].(map[string]interface{})["goal"])

	w, _ = s.do(t, http.MethodPatch, "/api/posts/missing", gin.H{"goal": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/posts/post-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, payload = s.do(t, http.MethodGet, "/api/posts/post-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", payload["error"])
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("userId", "user-1"))
	part, err := mw.CreateFormFile("file", "huge.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 1<<20+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/writing-assistant/samples/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "huge.txt: file exceeds upload limit")

	w, payload := s.do(t, http.MethodGet, "/api/writing-assistant/samples?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, payload["samples"])
}

func TestSampleHandlers(t *testing.T) {
	s := newTestServer(t)

	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/samples", gin.H{"userId": "user-1", "content": "Some pasted text"})
	require.Equal(t, http.StatusOK, w.Code)
	sample := payload["sample"].(map[string]interface{})
	assert.Equal(t, "paste", sample["source"])
	assert.Equal(t, float64(3), sample["wordCount"])

	w, _ = s.do(t, http.MethodPost, "/api/writing-assistant/samples", gin.H{"userId": "user-1", "content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("userId", "user-1"))
	part, err := mw.CreateFormFile("file", "essay.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("An uploaded essay"))
	require.NoError(t, err)
	part, err = mw.CreateFormFile("file", "draft.md")
	require.NoError(t, err)
	_, err = part.Write([]byte("# Draft"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/writing-assistant/samples/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var upload struct {
		Samples []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			ContentType string `json:"contentType"`
		} `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	require.Len(t, upload.Samples, 2)
	assert.Equal(t, "essay.txt", upload.Samples[0].Title)
	assert.Equal(t, "text", upload.Samples[0].ContentType)
	assert.Equal(t, "article", upload.Samples[1].ContentType)

	w, payload = s.do(t, http.MethodGet, "/api/writing-assistant/samples?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, payload["samples"], 3)

	w, _ = s.do(t, http.MethodDelete, "/api/writing-assistant/samples", gin.H{"sampleId": upload.Samples[0].ID})
	assert.Equal(t, http.StatusOK, w.Code)
	w, payload = s.do(t, http.MethodDelete, "/api/writing-assistant/samples", gin.H{"sampleId": upload.Samples[0].ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sample not found", payload["error"])

	w, _ = s.do(t, http.MethodPost, "/api/writing-assistant/samples/url", gin.H{"userId": "user-1", "urls": []string{"not a url"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewAndIndustryHandlers(t *testing.T) {
	s := newTestServer(t)

	s.llm.Response = `{"engagementScore": 72, "strengths": ["Clear"], "improvementSuggestions": [], "estimatedReactions": 40, "estimatedComments": 5, "audienceAppeal": "Founders"}`
	w, payload := s.do(t, http.MethodPost, "/api/writing-assistant/preview", gin.H{"content": "My post"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(72), payload["engagementScore"])

	w, payload = s.do(t, http.MethodPost, "/api/writing-assistant/preview", gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content is required", payload["error"])

	s.llm.Response = "Industry draft"
	w, payload = s.do(t, http.MethodPost, "/api/generate", gin.H{"industry": "healthcare"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Industry draft", payload["content"])

	w, _ = s.do(t, http.MethodPost, "/api/generate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopicPostAndOptimizeHandlers(t *testing.T) {
	s := newTestServer(t)
	profileID := s.analyze(t, "user-1")

	s.llm.Response = "A post about pricing"
	w, payload := s.do(t, http.MethodPost, "/api/generate-content", gin.H{"profileId": profileID, "topic": "pricing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A post about pricing", payload["content"])

	w, payload = s.do(t, http.MethodPost, "/api/generate-content", gin.H{"profileId": "missing", "topic": "pricing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Profile not found", payload["error"])

	w, payload = s.do(t, http.MethodPost, "/api/generate-content", gin.H{"profileId": profileID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Profile ID and topic are required", payload["error"])

	s.llm.Response = "Optimized post"
	w, payload = s.do(t, http.MethodPost, "/api/optimize", gin.H{
		"post": "Original post",
		"goal": "brand_awareness",
		"evaluation": gin.H{
			"feedback":      []gin.H{{"type": "tip", "message": "Add a hook"}},
			"goalAlignment": gin.H{"recommendations": []string{"Mention the brand"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Optimized post", payload["optimizedPost"])

	w, payload = s.do(t, http.MethodPost, "/api/optimize", gin.H{"post": "Original post", "goal": "brand_awareness"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", payload["error"])
}

func TestLinkedInImportHandler(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"expired"}`, http.StatusUnauthorized)
	}))
	defer api.Close()

	gin.SetMode(gin.TestMode)
	ingest := service.NewIngestService(nil, nil, nil, nil, linkedin.NewClient(api.URL, 0), nil, config.IngestConfig{})
	r := gin.New()
	NewLinkedInHandler(ingest).RegisterRoutes(r.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/linkedin/import", bytes.NewReader([]byte(`{"userId":"u","accessToken":"t"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/linkedin/import", bytes.NewReader([]byte(`{"userId":"u"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
