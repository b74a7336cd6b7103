// internal/scheduler/runner_test.go
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"
	composecaption "ai-post-scheduler/internal/workers/content/compose-caption"
	composeprompt "ai-post-scheduler/internal/workers/content/compose-prompt"
	publishpost "ai-post-scheduler/internal/workers/publishing/publish-post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	failures []error
	delay    time.Duration
	inFlight int
	maxSeen  int
	onCall   func(ctx context.Context) error
}

func (g *fakeGenerator) Generate(ctx context.Context, req models.ContentRequest) (*models.GeneratedAsset, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.inFlight++
	if g.inFlight > g.maxSeen {
		g.maxSeen = g.inFlight
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()

	if g.onCall != nil {
		if err := g.onCall(ctx); err != nil {
			return nil, err
		}
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if n <= len(g.failures) && g.failures[n-1] != nil {
		return nil, g.failures[n-1]
	}
	return &models.GeneratedAsset{
		Image:         []byte("png"),
		ContentType:   "image/png",
		Provider:      "fake",
		RevisedPrompt: fmt.Sprintf("attempt %d", n),
		GeneratedAt:   time.Now(),
		Request:       req,
	}, nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type publishCall struct {
	asset    *models.GeneratedAsset
	caption  models.Caption
	postType models.PostType
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	errs  []error
}

func (p *fakePublisher) Name() string { return "fake" }

func (p *fakePublisher) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*publishpost.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{asset: asset, caption: caption, postType: postType})
	n := len(p.calls)
	if n <= len(p.errs) && p.errs[n-1] != nil {
		return nil, p.errs[n-1]
	}
	return &publishpost.Result{
		Platform:    "fake",
		MediaID:     fmt.Sprintf("media-%d", n),
		PostType:    postType,
		PublishedAt: time.Now(),
	}, nil
}

func (p *fakePublisher) Calls() []publishCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishCall(nil), p.calls...)
}

type fakeAlerter struct {
	mu        sync.Mutex
	exhausted []map[string]interface{}
	smoke     []error
}

func (a *fakeAlerter) NotifyExhausted(ctx context.Context, exhausted *retry.ExhaustedError, metadata map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	md := map[string]interface{}{"operation": exhausted.Operation, "attempts": exhausted.Attempts}
	for k, v := range metadata {
		md[k] = v
	}
	a.exhausted = append(a.exhausted, md)
}

func (a *fakeAlerter) NotifySmokeTestFailed(ctx context.Context, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoke = append(a.smoke, err)
}

type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(kinds ...models.ContentKind) *Config {
	if len(kinds) == 0 {
		kinds = []models.ContentKind{models.KindPosts}
	}
	return &Config{
		Location:      time.UTC,
		Entries:       []models.ScheduleEntry{{Hour: 9, Minute: 0, Enabled: true}},
		Kinds:         kinds,
		Concurrency:   1,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

func createComposer(t *testing.T, posts, stories int) *composeprompt.Handler {
	cfg := &composeprompt.Config{
		Catalog: map[string]models.Genre{
			"fantasy": {
				Name:     "fantasy",
				Enabled:  true,
				Styles:   []string{"oil painting", "watercolor"},
				Themes:   []string{"dragons", "enchanted forest"},
				Palettes: []string{"emerald", "golden"},
			},
		},
		Kinds: map[models.ContentKind]composeprompt.KindConfig{
			models.KindPosts:   {Enabled: posts > 0, Count: posts, Genres: []string{"fantasy"}, Resolution: "1024x1024"},
			models.KindStories: {Enabled: stories > 0, Count: stories, Genres: []string{"fantasy"}, Resolution: "1024x1792"},
		},
		Quality: "hd",
	}
	return composeprompt.NewHandler(cfg, composeprompt.NewRotationStrategy(), logger.NewTestLogger(t))
}

type testRig struct {
	runner    *Runner
	generator *fakeGenerator
	publisher *fakePublisher
	alerter   *fakeAlerter
	sleeper   *sleepRecorder
}

func newTestRig(t *testing.T, cfg *Config, posts, stories int, publisher Publisher, daily counter.DailyCounter) *testRig {
	rig := &testRig{
		generator: &fakeGenerator{},
		publisher: &fakePublisher{},
		alerter:   &fakeAlerter{},
		sleeper:   &sleepRecorder{},
	}
	if publisher == nil {
		publisher = rig.publisher
	}
	rig.runner = NewRunner(cfg, Components{
		Composer:  createComposer(t, posts, stories),
		Generator: rig.generator,
		Captioner: composecaption.NewHandler(&composecaption.Config{HashtagStyle: models.HashtagStyleNone}, logger.NewNoOpLogger()),
		Publisher: publisher,
		Counter:   daily,
		Alerter:   rig.alerter,
		Sleep:     rig.sleeper.Sleep,
	}, logger.NewTestLogger(t))
	return rig
}

// ==========================
// Slot Tests
// ==========================

func TestRunSlot_TransientGenerationFailuresAreRetried(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 1, 0, nil, nil)
	rig.generator.failures = []error{
		errors.NewGenerationFailedError("fake", stderrors.New("503 Service Unavailable")),
		errors.NewGenerationFailedError("fake", stderrors.New("503 Service Unavailable")),
	}

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	assert.Equal(t, 3, rig.generator.Calls())
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, rig.sleeper.slept)

	calls := rig.publisher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "attempt 3", calls[0].asset.RevisedPrompt)
	assert.Equal(t, models.PostTypeFeed, calls[0].postType)
	assert.Empty(t, calls[0].caption.Hashtags)

	assert.Equal(t, 1, report.Published())
	assert.Equal(t, 0, report.Failed())
	assert.Empty(t, rig.alerter.exhausted)
}

func TestRunSlot_RejectedGenerationSkipsItem(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 2, 0, nil, nil)
	rig.generator.failures = []error{
		errors.NewGenerationRejectedError("fake", "content policy violation", nil),
	}

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	assert.Equal(t, 2, rig.generator.Calls())
	assert.Len(t, rig.publisher.Calls(), 1)
	assert.Empty(t, rig.sleeper.slept)
	require.Len(t, report.Kinds, 1)
	assert.Equal(t, 1, report.Kinds[0].Failed)
	assert.Equal(t, 1, report.Kinds[0].Published)
}

func TestRunSlot_ExhaustedRetriesAlertAndContinue(t *testing.T) {
	rig := newTestRig(t, createTestConfig(models.KindPosts, models.KindStories), 1, 1, nil, nil)
	transient := errors.NewGenerationFailedError("fake", stderrors.New("timeout"))
	rig.generator.failures = []error{transient, transient, transient}

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	// three attempts for the post, one for the story
	assert.Equal(t, 4, rig.generator.Calls())
	require.Len(t, rig.alerter.exhausted, 1)
	assert.Equal(t, opGenerate, rig.alerter.exhausted[0]["operation"])
	assert.Equal(t, 3, rig.alerter.exhausted[0]["attempts"])
	assert.Equal(t, "posts", rig.alerter.exhausted[0]["kind"])
	assert.NotEmpty(t, rig.alerter.exhausted[0]["itemId"])

	calls := rig.publisher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.PostTypeStory, calls[0].postType)

	require.Len(t, report.Kinds, 2)
	assert.Equal(t, 1, report.Kinds[0].Failed)
	assert.Equal(t, 1, report.Kinds[1].Published)
}

func TestRunSlot_FatalPublishErrorIsNotRetried(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 2, 0, nil, nil)
	rig.publisher.errs = []error{
		errors.NewPublishFatalError("fake", stderrors.New("invalid access token")),
	}

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	assert.Len(t, rig.publisher.Calls(), 2)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Published())
}

func TestRunSlot_DailyCapStopsKind(t *testing.T) {
	platform := &fakePublisher{}
	daily := counter.NewMemoryCounter(2, time.UTC, nil)
	capped := publishpost.NewCappedPublisher(platform, daily, 0, logger.NewNoOpLogger())

	// the runner is not given the counter, so the cap surfaces at publish time
	rig := newTestRig(t, createTestConfig(), 3, 0, capped, nil)

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	assert.Len(t, platform.Calls(), 2)
	require.Len(t, report.Kinds, 1)
	kr := report.Kinds[0]
	assert.Equal(t, 3, kr.Requested)
	assert.Equal(t, 2, kr.Published)
	assert.Equal(t, 1, kr.Skipped)
	assert.Equal(t, 0, kr.Failed)
	assert.True(t, kr.CapHit)

	count, err := daily.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunSlot_TrimsRequestsToRemainingCap(t *testing.T) {
	platform := &fakePublisher{}
	daily := counter.NewMemoryCounter(2, time.UTC, nil)
	capped := publishpost.NewCappedPublisher(platform, daily, 0, logger.NewNoOpLogger())
	rig := newTestRig(t, createTestConfig(), 3, 0, capped, daily)

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)
	assert.Equal(t, 2, rig.generator.Calls())
	assert.Len(t, platform.Calls(), 2)
	assert.Equal(t, 1, report.Kinds[0].Skipped)
	assert.True(t, report.Kinds[0].CapHit)

	// a second slot the same day generates nothing
	report, err = rig.runner.RunSlot(context.Background(), "18:00")
	require.NoError(t, err)
	assert.Equal(t, 2, rig.generator.Calls())
	assert.Equal(t, 3, report.Kinds[0].Skipped)
}

func TestRunSlot_ComposeErrorDoesNotAbortSlot(t *testing.T) {
	rig := newTestRig(t, createTestConfig(models.KindPosts, models.KindStories), 1, 1, nil, nil)
	rig.runner.components.Composer = composeprompt.NewHandler(&composeprompt.Config{
		Catalog: map[string]models.Genre{
			"fantasy": {Name: "fantasy", Enabled: true, Styles: []string{"ink"}, Themes: []string{"myth"}, Palettes: []string{"sepia"}},
		},
		Kinds: map[models.ContentKind]composeprompt.KindConfig{
			models.KindPosts:   {Enabled: true, Count: 1, Genres: []string{"unknown"}},
			models.KindStories: {Enabled: true, Count: 1, Genres: []string{"fantasy"}},
		},
	}, nil, logger.NewNoOpLogger())

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)
	require.Len(t, report.Kinds, 2)
	assert.Equal(t, 0, report.Kinds[0].Requested)
	assert.Equal(t, 1, report.Kinds[1].Published)
}

func TestRunSlot_OverlappingGenerationRespectsLimit(t *testing.T) {
	cfg := createTestConfig()
	cfg.Concurrency = 2
	rig := newTestRig(t, cfg, 4, 0, nil, nil)
	rig.generator.delay = 20 * time.Millisecond

	report, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	assert.Equal(t, 4, report.Published())
	assert.LessOrEqual(t, rig.generator.maxSeen, 2)
	assert.Equal(t, 4, rig.generator.Calls())
}

func TestRunSlot_PublishesInRequestOrder(t *testing.T) {
	cfg := createTestConfig()
	cfg.Concurrency = 3
	rig := newTestRig(t, cfg, 3, 0, nil, nil)
	rig.generator.delay = 5 * time.Millisecond

	_, err := rig.runner.RunSlot(context.Background(), "09:00")
	require.NoError(t, err)

	calls := rig.publisher.Calls()
	require.Len(t, calls, 3)
	// rotation alternates the two styles
	assert.Equal(t, "oil painting", calls[0].asset.Request.Style)
	assert.Equal(t, "watercolor", calls[1].asset.Request.Style)
	assert.Equal(t, "oil painting", calls[2].asset.Request.Style)
}

func TestRunSlot_CancellationAbandonsInFlightItem(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 2, 0, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var once sync.Once
	rig.generator.onCall = func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}

	go func() {
		<-started
		cancel()
	}()

	report, err := rig.runner.RunSlot(ctx, "09:00")
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, rig.publisher.Calls())
	assert.Equal(t, 0, report.Failed())
	assert.Empty(t, rig.alerter.exhausted)
	assert.Equal(t, StateIdle, rig.runner.State())
}

func TestRunSlot_BusySlotIsSkipped(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 1, 0, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	rig.generator.onCall = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = rig.runner.RunSlot(ctx, "09:00")
	}()

	<-started
	assert.Equal(t, StateRunning, rig.runner.State())
	_, err := rig.runner.RunSlot(context.Background(), "09:01")
	assert.ErrorIs(t, err, ErrSlotBusy)

	cancel()
	<-done
}

func TestRunKind_ProcessesOnlyThatKind(t *testing.T) {
	rig := newTestRig(t, createTestConfig(models.KindPosts), 1, 2, nil, nil)

	report, err := rig.runner.RunKind(context.Background(), models.KindStories)
	require.NoError(t, err)

	assert.Equal(t, TriggerManual, report.Trigger)
	require.Len(t, report.Kinds, 1)
	assert.Equal(t, models.KindStories, report.Kinds[0].Kind)
	assert.Equal(t, 2, report.Published())
	for _, c := range rig.publisher.Calls() {
		assert.Equal(t, models.PostTypeStory, c.postType)
	}
}

// ==========================
// Run / State Tests
// ==========================

func TestRun_StateTransitions(t *testing.T) {
	cfg := createTestConfig()
	r := NewRunner(cfg, Components{
		Composer:  createComposer(t, 1, 0),
		Generator: &fakeGenerator{},
		Captioner: composecaption.NewHandler(&composecaption.Config{}, logger.NewNoOpLogger()),
		Publisher: &fakePublisher{},
	}, logger.NewNoOpLogger())
	assert.Equal(t, StateIdle, r.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return r.State() == StateWaiting }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Equal(t, StateStopped, r.State())
}

func TestRun_RequiresEnabledEntry(t *testing.T) {
	cfg := createTestConfig()
	cfg.Entries = []models.ScheduleEntry{{Hour: 9, Minute: 0, Enabled: false}}
	r := NewRunner(cfg, Components{}, logger.NewNoOpLogger())

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Equal(t, StateIdle, r.State())
}

// ==========================
// Smoke Test Tests
// ==========================

func TestSmokeTest_PublishesFeedAndStory(t *testing.T) {
	rig := newTestRig(t, createTestConfig(models.KindPosts, models.KindStories), 3, 3, nil, nil)

	require.NoError(t, rig.runner.SmokeTest(context.Background()))

	calls := rig.publisher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.PostTypeFeed, calls[0].postType)
	assert.Equal(t, models.PostTypeStory, calls[1].postType)
	assert.Empty(t, rig.alerter.smoke)
}

func TestSmokeTest_FailureIsReturnedAndAlerted(t *testing.T) {
	rig := newTestRig(t, createTestConfig(models.KindPosts, models.KindStories), 1, 1, nil, nil)
	rig.publisher.errs = []error{
		errors.NewPublishFatalError("fake", stderrors.New("(#190) Error validating access token")),
	}

	err := rig.runner.SmokeTest(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePublishFatal, errors.CodeOf(err))

	assert.Len(t, rig.publisher.Calls(), 1)
	assert.Len(t, rig.alerter.smoke, 1)
	assert.Empty(t, rig.alerter.exhausted)
	assert.Equal(t, StateIdle, rig.runner.State())
}

func TestSmokeTest_ExhaustedGenerationFails(t *testing.T) {
	rig := newTestRig(t, createTestConfig(), 1, 0, nil, nil)
	transient := errors.NewGenerationFailedError("fake", stderrors.New("502"))
	rig.generator.failures = []error{transient, transient, transient}

	err := rig.runner.SmokeTest(context.Background())
	require.Error(t, err)

	var exhausted *retry.ExhaustedError
	assert.True(t, stderrors.As(err, &exhausted))
	assert.Equal(t, 3, rig.generator.Calls())
	assert.Empty(t, rig.publisher.Calls())
	assert.Len(t, rig.alerter.smoke, 1)
}

func TestSmokeTest_CapAlreadyReachedPasses(t *testing.T) {
	daily := counter.NewMemoryCounter(0, time.UTC, nil)
	platform := &fakePublisher{}
	capped := publishpost.NewCappedPublisher(platform, daily, 0, logger.NewNoOpLogger())
	rig := newTestRig(t, createTestConfig(), 1, 0, capped, nil)

	require.NoError(t, rig.runner.SmokeTest(context.Background()))
	assert.Empty(t, platform.Calls())
	assert.Empty(t, rig.alerter.smoke)
}

// ==========================
// Config Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{
		Scheduling: config.SchedulingConfig{
			Timezone: "Europe/Berlin",
			DailyRuns: []config.DailyRunConfig{
				{Time: "09:30", Enabled: true},
				{Time: "18:00", Enabled: false},
			},
		},
		ContentGeneration: config.ContentGenerationConfig{
			Posts:   config.ContentKindConfig{Enabled: true, Count: 2},
			Stories: config.ContentKindConfig{Enabled: false},
		},
		ErrorHandling: config.ErrorHandlingConfig{RetryAttempts: 3, RetryDelayMinutes: 0.5},
	}

	sc, err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", sc.Location.String())
	assert.Equal(t, []models.ContentKind{models.KindPosts}, sc.Kinds)
	assert.Equal(t, 1, sc.Concurrency)
	assert.Equal(t, 3, sc.RetryAttempts)
	assert.Equal(t, 30*time.Second, sc.RetryDelay)
	require.Len(t, sc.enabledEntries(), 1)
	assert.Equal(t, "30 9 * * *", sc.enabledEntries()[0].CronSpec())
	assert.False(t, sc.storiesEnabled())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		scheduling config.SchedulingConfig
	}{
		{name: "unknown timezone", scheduling: config.SchedulingConfig{Timezone: "Mars/Olympus"}},
		{name: "bad time", scheduling: config.SchedulingConfig{DailyRuns: []config.DailyRunConfig{{Time: "25:99", Enabled: true}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(&config.Config{Scheduling: tt.scheduling})
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "09:00", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 1, "next": "09:00"}, fields)
}
