package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pwa/internal/app"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.uber.org/mock/gomock"
)

func TestWatch_RegeneratesOnChange(t *testing.T) {
	h := newHarness(t)
	h.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	h.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ports.WatchEvent, 4)
	defer close(events)
	events <- ports.WatchEvent{Path: filepath.Join(h.root, "public", "sw.js"), Operation: ports.OpWrite}
	events <- ports.WatchEvent{Path: filepath.Join(h.root, domain.CacheFileName), Operation: ports.OpWrite}
	events <- ports.WatchEvent{Path: filepath.Join(h.root, "package.json"), Operation: ports.OpWrite}

	h.watcher.EXPECT().Start(gomock.Any(), h.root).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(func(yield func(ports.WatchEvent) bool) {
		for e := range events {
			if !yield(e) {
				return
			}
		}
	})

	scans := 0
	h.scanner.EXPECT().Scan(gomock.Any(), h.root, gomock.Any()).
		DoAndReturn(func(context.Context, string, []string) (domain.ScanReport, error) {
			scans++
			if scans == 2 {
				cancel()
			}
			return h.report(t), nil
		}).Times(2)

	done := make(chan error, 1)
	go func() { done <- h.app().Watch(ctx, app.GenerateOptions{Dir: h.root}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Equal(t, 2, scans)
}

func TestWatch_StartFailure(t *testing.T) {
	h := newHarness(t)
	h.expectScan(t, 1)

	boom := errors.New("too many open files")
	h.watcher.EXPECT().Start(gomock.Any(), h.root).Return(boom)
	h.watcher.EXPECT().Stop().Return(nil)

	err := h.app().Watch(context.Background(), app.GenerateOptions{Dir: h.root})
	require.ErrorIs(t, err, boom)
}
