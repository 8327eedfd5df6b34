package async

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshhk/MiningResume/internal/cache"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
	"github.com/yogeshhk/MiningResume/internal/parser"
	"github.com/yogeshhk/MiningResume/internal/provider"
	"github.com/yogeshhk/MiningResume/internal/repository"
	"github.com/yogeshhk/MiningResume/internal/textextract"
)

type staticProvider struct{}

func (staticProvider) Generate(_ context.Context, req provider.Request) (*provider.Response, error) {
	return &provider.Response{Value: "v:" + req.Attribute.Name, Found: true}, nil
}

func (staticProvider) HealthCheck(context.Context) bool { return true }

// fakeRepo records every saved result.
type fakeRepo struct {
	mu    sync.Mutex
	saved []*parser.ParserResult
}

func (f *fakeRepo) Save(_ context.Context, result *parser.ParserResult) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, result)
	return uuid.New(), nil
}

func (f *fakeRepo) Get(context.Context, uuid.UUID) (*repository.StoredResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeRepo) List(context.Context, int) ([]*repository.StoredResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func newQueueService() *parser.Service {
	cfg := &common.Config{
		Parser: common.ParserConfig{
			Attributes:           []string{"Name", "Email"},
			AttributeConcurrency: 2,
			BatchWorkers:         2,
			ProviderTimeout:      time.Second,
		},
		Files: common.FilesConfig{MaxFileSizeMB: 10},
		Cache: common.CacheConfig{Enabled: true, TTL: time.Minute},
		Retry: common.RetryConfig{MaxAttempts: 1, InitialWait: time.Millisecond, BackoffFactor: 2.0},
	}
	return parser.NewService(
		document.NewReader(cfg.Files.MaxFileSizeMB, nil),
		textextract.NewNormalizer(nil),
		staticProvider{},
		cache.NewMemoryCache(),
		cfg,
		"queue-test-fp",
		nil,
	)
}

func TestQueueProcessesAndPersistsJobs(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("resume-%d.txt", i))
		require.NoError(t, os.WriteFile(paths[i], []byte("resume body\n"), 0644))
	}

	repo := &fakeRepo{}
	q := NewParseQueue(newQueueService(), repo, nil, WithWorkers(3), WithQueueSize(8))

	ctx := context.Background()
	for _, p := range paths {
		require.NoError(t, q.Enqueue(ctx, NewJob(p)))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	assert.Equal(t, len(paths), repo.count())
	for _, r := range repo.saved {
		assert.True(t, r.Success)
	}
}

func TestQueueWithoutRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("resume body\n"), 0644))

	q := NewParseQueue(newQueueService(), nil, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), NewJob(path)))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)
}

func TestQueueRecordsDocumentFailures(t *testing.T) {
	repo := &fakeRepo{}
	q := NewParseQueue(newQueueService(), repo, nil, WithWorkers(1))

	require.NoError(t, q.Enqueue(context.Background(), NewJob(filepath.Join(t.TempDir(), "absent.txt"))))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	require.Equal(t, 1, repo.count())
	assert.False(t, repo.saved[0].Success)
}

func TestQueueEnqueueAfterShutdownIsDropped(t *testing.T) {
	q := NewParseQueue(newQueueService(), nil, nil, WithWorkers(1))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	// Must not panic on the closed channel.
	require.NoError(t, q.Enqueue(context.Background(), NewJob("late.txt")))
	q.Shutdown(shutdownCtx)
}

func TestNewJobPopulatesTrace(t *testing.T) {
	j := NewJob("/resumes/a.txt")
	assert.Equal(t, "/resumes/a.txt", j.Path)
	assert.NotEmpty(t, j.TraceID)
	assert.False(t, j.SubmittedAt.IsZero())
}
