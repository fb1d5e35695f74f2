package translate

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/cache"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []model.UserEvent
	err    error
}

func (r *recordingTracker) TrackEvent(_ context.Context, e *model.UserEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return r.err
}

type fixture struct {
	svc     *Service
	mock    *llm.MockProvider
	store   *store.Store
	cache   cache.Cache
	tracker *recordingTracker
}

func newFixture(t *testing.T, c cache.Cache, responses ...llm.MockResponse) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "translate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if c == nil {
		m, err := cache.NewMemory(1000)
		require.NoError(t, err)
		t.Cleanup(func() { m.Close() })
		c = m
	}

	mock := llm.NewMockProvider(responses...)
	tracker := &recordingTracker{}
	return &fixture{
		svc:     NewService(c, st.Translations(), content.NewRequester(mock), tracker, DefaultConfig(), nil),
		mock:    mock,
		store:   st,
		cache:   c,
		tracker: tracker,
	}
}

func (f *fixture) usage(t *testing.T, text string) int {
	t.Helper()
	row, err := f.store.Translations().Find(context.Background(), normalize(text), "en", "tr")
	require.NoError(t, err)
	return row.UsageCount
}

func TestKey(t *testing.T) {
	assert.Equal(t, "translation:en:tr:hello world", Key("en", "tr", "  Hello World "))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Turkish", LanguageName("tr"))
	assert.Equal(t, "Japanese", LanguageName("JA"))
	assert.Equal(t, "xx", LanguageName("xx"))
}

func TestTranslate_ProviderThenCache(t *testing.T) {
	f := newFixture(t, nil, llm.TextResponse("  havalimanı \n"))
	ctx := context.Background()
	req := Request{Text: "Airport", SourceLanguage: "en", TargetLanguage: "tr", IsWord: true, StoryID: "s1"}

	first, err := f.svc.Translate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, FromProvider, first.Origin)
	assert.Equal(t, "havalimanı", first.TranslatedText)
	assert.Equal(t, "Airport", first.SourceText)
	assert.Equal(t, 1, f.usage(t, "airport"))

	prompt := f.mock.LastCall()
	assert.Equal(t, systemPrompt, prompt.System)
	assert.Equal(t, 200, prompt.MaxTokens)
	assert.Equal(t, 0.3, prompt.Temperature)
	assert.Contains(t, prompt.Messages[0].Content, "English text to Turkish")
	assert.Contains(t, prompt.Messages[0].Content, "Airport")

	second, err := f.svc.Translate(ctx, Request{Text: "airport ", SourceLanguage: "EN", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.Equal(t, FromCache, second.Origin)
	assert.Equal(t, first.TranslatedText, second.TranslatedText)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, f.mock.CallCount(), "second lookup within TTL must not call the provider")
	assert.Equal(t, 2, f.usage(t, "airport"))

	list, err := f.svc.ListForStory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "havalimanı", list[0].TranslatedText)
}

func TestTranslate_StoreHitFillsCache(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.store.Translations().Create(ctx, &model.Translation{
		ID: "t1", SourceText: "Passport", NormalizedText: "passport",
		SourceLanguage: "en", TargetLanguage: "tr", TranslatedText: "pasaport",
		IsWord: true, UsageCount: 4, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	res, err := f.svc.Translate(ctx, Request{Text: "PASSPORT", SourceLanguage: "en", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.Equal(t, FromStore, res.Origin)
	assert.Equal(t, "pasaport", res.TranslatedText)
	assert.Equal(t, 5, f.usage(t, "passport"))
	assert.Equal(t, 0, f.mock.CallCount())

	cached, err := f.cache.Get(ctx, Key("en", "tr", "passport"))
	require.NoError(t, err)
	assert.Contains(t, string(cached), "pasaport")
}

func TestTranslate_ProviderFailureIsFatal(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Err: errors.New("503")})
	_, err := f.svc.Translate(context.Background(), Request{Text: "luggage", SourceLanguage: "en", TargetLanguage: "tr"})
	assert.True(t, apperr.IsKind(err, apperr.Generation), "got %v", err)

	_, err = f.store.Translations().Find(context.Background(), "luggage", "en", "tr")
	assert.ErrorIs(t, err, store.ErrNotFound, "no fallback row may be written")
	assert.Empty(t, f.tracker.events)
}

func TestTranslate_Validation(t *testing.T) {
	f := newFixture(t, nil)
	for _, req := range []Request{
		{Text: "  ", SourceLanguage: "en", TargetLanguage: "tr"},
		{Text: "hi", TargetLanguage: "tr"},
		{Text: "hi", SourceLanguage: "en"},
	} {
		_, err := f.svc.Translate(context.Background(), req)
		assert.True(t, apperr.IsKind(err, apperr.Validation), "req %+v: got %v", req, err)
	}
}

func TestTranslate_TracksEvents(t *testing.T) {
	f := newFixture(t, nil, llm.TextResponse("bilet"), llm.TextResponse("Trene bindi."))
	ctx := context.Background()

	_, err := f.svc.Translate(ctx, Request{Text: "ticket", SourceLanguage: "en", TargetLanguage: "tr", IsWord: true, UserID: "u1", StoryID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.Translate(ctx, Request{Text: "She took the train.", SourceLanguage: "en", TargetLanguage: "tr", UserID: "u1"})
	require.NoError(t, err)
	_, err = f.svc.Translate(ctx, Request{Text: "ticket", SourceLanguage: "en", TargetLanguage: "tr", IsWord: true})
	require.NoError(t, err)

	require.Len(t, f.tracker.events, 2, "anonymous lookups are not tracked")
	assert.Equal(t, model.EventWordTap, f.tracker.events[0].EventType)
	require.NotNil(t, f.tracker.events[0].StoryID)
	assert.Equal(t, "s1", *f.tracker.events[0].StoryID)
	assert.Contains(t, f.tracker.events[0].EventData, `"text":"ticket"`)
	assert.Equal(t, model.EventSentencePress, f.tracker.events[1].EventType)
}

func TestTranslate_TrackingFailureNotFatal(t *testing.T) {
	f := newFixture(t, nil, llm.TextResponse("bilet"))
	f.tracker.err = errors.New("events table locked")

	_, err := f.svc.Translate(context.Background(), Request{Text: "ticket", SourceLanguage: "en", TargetLanguage: "tr", UserID: "u1"})
	assert.NoError(t, err)
}

func TestTranslate_ConcurrentMissesShareOneCall(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: []byte("bagaj"), Delay: 100 * time.Millisecond})
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Result, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.svc.Translate(ctx, Request{Text: "luggage", SourceLanguage: "en", TargetLanguage: "tr"})
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, "bagaj", results[i].TranslatedText)
	}
	assert.Equal(t, 1, f.mock.CallCount())
	assert.Equal(t, n, f.usage(t, "luggage"), "every lookup counts as a use")
}

func TestTranslate_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: []byte("bagaj"), Delay: 200 * time.Millisecond})
	req := Request{Text: "luggage", SourceLanguage: "en", TargetLanguage: "tr"}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.svc.Translate(first, req)
		firstErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	second := make(chan error, 1)
	var got *Result
	go func() {
		var err error
		got, err = f.svc.Translate(context.Background(), req)
		second <- err
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, <-second)
	assert.Equal(t, "bagaj", got.TranslatedText)
	assert.Equal(t, 1, f.mock.CallCount())

	// The abandoned call still stored its row.
	res, err := f.svc.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, FromCache, res.Origin)
	assert.Equal(t, 1, f.mock.CallCount())
}

func TestTranslate_CrossProcessRaceAdoptsExistingRow(t *testing.T) {
	f := newFixture(t, nil, llm.TextResponse("bagaj (new)"))
	ctx := context.Background()

	// Simulate another process storing the key between our lookup and insert.
	repo := &racingRepo{TranslationRepo: f.store.Translations(), before: func() {
		_, err := f.store.Translations().Create(ctx, &model.Translation{
			ID: "other", SourceText: "luggage", NormalizedText: "luggage",
			SourceLanguage: "en", TargetLanguage: "tr", TranslatedText: "bagaj",
			UsageCount: 1, CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}}
	svc := NewService(f.cache, repo, content.NewRequester(f.mock), nil, DefaultConfig(), nil)

	res, err := svc.Translate(ctx, Request{Text: "luggage", SourceLanguage: "en", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.Equal(t, "other", res.ID)
	assert.Equal(t, "bagaj", res.TranslatedText)
	assert.Equal(t, 2, f.usage(t, "luggage"))
}

type racingRepo struct {
	store.TranslationRepo
	before func()
}

func (r *racingRepo) Create(ctx context.Context, t *model.Translation) (bool, error) {
	if r.before != nil {
		r.before()
		r.before = nil
	}
	return r.TranslationRepo.Create(ctx, t)
}

func TestTranslate_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedis(cache.Config{RedisAddr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	f := newFixture(t, rc, llm.TextResponse("merhaba"))
	ctx := context.Background()

	_, err := f.svc.Translate(ctx, Request{Text: "hello", SourceLanguage: "en", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("translation:en:tr:hello"))
	assert.Equal(t, time.Hour, mr.TTL("translation:en:tr:hello"))

	res, err := f.svc.Translate(ctx, Request{Text: "Hello", SourceLanguage: "en", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.Equal(t, FromCache, res.Origin)

	// After expiry the store answers and the cache is refilled.
	mr.FastForward(2 * time.Hour)
	res, err = f.svc.Translate(ctx, Request{Text: "hello", SourceLanguage: "en", TargetLanguage: "tr"})
	require.NoError(t, err)
	assert.Equal(t, FromStore, res.Origin)
	assert.Equal(t, 1, f.mock.CallCount())
	assert.Equal(t, 3, f.usage(t, "hello"))
}
