package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pwa/internal/adapters/artifact"
	"go.trai.ch/pwa/internal/adapters/fs"
	"go.trai.ch/pwa/internal/adapters/telemetry"
	"go.trai.ch/pwa/internal/app"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports/mocks"
	"go.trai.ch/pwa/internal/engine/scancache"
	"go.uber.org/mock/gomock"
)

func provide(t *testing.T, loader *mocks.MockConfigLoader, log *mocks.MockLogger) ComponentProvider {
	t.Helper()
	application := app.New(
		loader,
		fs.NewScanner(fs.NewWalker()),
		fs.NewResolver(),
		artifact.NewWriter(),
		scancache.New(fs.NewHasher()),
		log,
		telemetry.NewNoOpTracer(),
		nil,
	)
	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: log}, func() {}, nil
	}
}

func TestRun_Version(t *testing.T) {
	ctrl := gomock.NewController(t)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	code := run(context.Background(), []string{"version"}, stdout, stderr,
		provide(t, mocks.NewMockConfigLoader(ctrl), mocks.NewMockLogger(ctrl)))

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "pwa version dev")
}

func TestRun_Generate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"name":"shop"}`), 0o600))

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(root).Return(domain.DefaultConfig(root), nil)
	log := mocks.NewMockLogger(ctrl)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := run(context.Background(), []string{"generate", "--dir", root}, stdout, stderr, provide(t, loader, log))

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "public/manifest.json")
	assert.Contains(t, stdout.String(), "public/sw.js")
	assert.FileExists(t, filepath.Join(root, "public", "sw.js"))
}

func TestRun_CommandError(t *testing.T) {
	root := t.TempDir()

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(root).Return(nil, domain.ErrInvalidConfig)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	code := run(context.Background(), []string{"routes", "--dir", root}, new(bytes.Buffer), new(bytes.Buffer), provide(t, loader, log))
	assert.Equal(t, 1, code)
}

func TestRun_ProviderError(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr,
		func(context.Context) (*app.Components, func(), error) {
			return nil, nil, errors.New("graph failed")
		})

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: graph failed\n", stderr.String())
}
