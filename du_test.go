package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	output string
	err    error
	calls  atomic.Int32
}

func (f *fakeScanner) Scan(ctx context.Context, target string) (string, error) {
	f.calls.Add(1)

	return f.output, f.err
}

func requireGNUDu(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("du"); err != nil {
		t.Skip("du not installed")
	}
	out, err := exec.Command("du", "--version").Output()
	if err != nil || !strings.Contains(string(out), "GNU") {
		t.Skip("du is not GNU coreutils")
	}
}

func TestDuScannerRealDirectory(t *testing.T) {
	requireGNUDu(t)

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("abc"), 0o644))

	cfg := &Config{duCommand: "du", target: dir, length: 20}

	blob, err := newDuScanner(cfg).Scan(context.Background(), dir)
	require.NoError(t, err)

	usage, err := parseUsage(blob)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	paths := []string{usage[0].Path, usage[1].Path}
	assert.Contains(t, paths, dir)
	assert.Contains(t, paths, filepath.Join(dir, "sub"))
}

func TestDuScannerMissingTarget(t *testing.T) {
	requireGNUDu(t)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	cfg := &Config{duCommand: "du", target: missing}

	_, err := newDuScanner(cfg).Scan(context.Background(), missing)
	assert.ErrorIs(t, err, ErrScanFailed)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDuScannerMissingCommand(t *testing.T) {
	cfg := &Config{duCommand: "duim-no-such-command"}

	_, err := newDuScanner(cfg).Scan(context.Background(), ".")
	assert.ErrorIs(t, err, ErrScanFailed)
}

func TestDuScannerArgs(t *testing.T) {
	d := newDuScanner(&Config{duCommand: "du"})
	assert.Equal(t, []string{"-B1", "-d", "1", "/srv"}, d.args("/srv"))
}

type blockingScanner struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingScanner) Scan(ctx context.Context, target string) (string, error) {
	b.calls.Add(1)
	<-b.release

	return "1\t" + target + "\n", nil
}

func TestSharedScannerCollapsesConcurrentScans(t *testing.T) {
	inner := &blockingScanner{release: make(chan struct{})}
	shared := newSharedScanner(inner, 0)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := shared.Scan(context.Background(), "/srv")
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}

	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	for _, out := range results {
		assert.Equal(t, "1\t/srv\n", out)
	}
	assert.LessOrEqual(t, inner.calls.Load(), int32(len(results)))
	assert.GreaterOrEqual(t, inner.calls.Load(), int32(1))
}

type cancellableScanner struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *cancellableScanner) Scan(ctx context.Context, target string) (string, error) {
	c.once.Do(func() { close(c.started) })

	select {
	case <-c.release:
		return "1\t" + target + "\n", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSharedScannerSurvivesCallerCancellation(t *testing.T) {
	inner := &cancellableScanner{started: make(chan struct{}), release: make(chan struct{})}
	shared := newSharedScanner(inner, 0)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := shared.Scan(firstCtx, "/srv")
		firstErr <- err
	}()

	<-inner.started

	type result struct {
		out string
		err error
	}
	second := make(chan result, 1)
	go func() {
		out, err := shared.Scan(context.Background(), "/srv")
		second <- result{out, err}
	}()

	cancelFirst()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, errors.Is(err, ErrScanFailed))
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting for the shared scan")
	}

	close(inner.release)

	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, "1\t/srv\n", res.out)
	case <-time.After(time.Second):
		t.Fatal("second caller never received the shared result")
	}
}

func TestSharedScannerTimeout(t *testing.T) {
	inner := &cancellableScanner{started: make(chan struct{}), release: make(chan struct{})}
	shared := newSharedScanner(inner, 20*time.Millisecond)

	_, err := shared.Scan(context.Background(), "/srv")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSharedScannerPassesErrors(t *testing.T) {
	shared := newSharedScanner(&fakeScanner{err: ErrScanFailed}, 0)

	_, err := shared.Scan(context.Background(), "/srv")
	assert.ErrorIs(t, err, ErrScanFailed)
}

func TestGenerateReport(t *testing.T) {
	cfg := &Config{target: "/data", length: 10, human: true}
	sc := &fakeScanner{output: "1024\t/data/a\n3072\t/data\n"}

	report, err := generateReport(context.Background(), cfg, sc)
	require.NoError(t, err)
	assert.Equal(t, "Disk Usage for /data (Total: 4.0 K)", report.Header())
	assert.Len(t, report.Rows, 2)
}

func TestGenerateReportErrors(t *testing.T) {
	cfg := &Config{target: "/data", length: 10}

	_, err := generateReport(context.Background(), cfg, &fakeScanner{output: ""})
	assert.ErrorIs(t, err, ErrEmptyReport)

	_, err = generateReport(context.Background(), cfg, &fakeScanner{output: "garbage"})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = generateReport(context.Background(), cfg, &fakeScanner{err: ErrScanFailed})
	assert.ErrorIs(t, err, ErrScanFailed)
}
