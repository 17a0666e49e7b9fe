package vdiff

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/vdiff/document"
	"github.com/scenekit/vdiff/hashcache"
	"github.com/scenekit/vdiff/snapshot"
)

var (
	originalScene = filepath.Join("testdata", "original.scene.yaml")
	modifiedScene = filepath.Join("testdata", "modified.scene.yaml")
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *document.FileHost) {
	t.Helper()
	host := document.NewFileHost()
	engine, err := New(host, opts...)
	require.NoError(t, err)
	return engine, host
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestSnapshotCurrentNoDocument(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.SnapshotCurrent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActiveDocument)
}

func TestSnapshotFile(t *testing.T) {
	engine, host := newTestEngine(t)

	snap, err := engine.SnapshotFile(context.Background(), originalScene)
	require.NoError(t, err)
	assert.Len(t, snap, 3)
	assert.Equal(t, originalScene, host.ActivePath())
}

func TestSnapshotFileMissing(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.SnapshotFile(context.Background(), "testdata/nope.yaml")
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindIO, verr.Kind)
}

func TestDiffFiles(t *testing.T) {
	engine, _ := newTestEngine(t)

	res, err := engine.DiffFiles(context.Background(), originalScene, modifiedScene)
	require.NoError(t, err)

	delta := res.Changed["objects"]["Cube.001"]
	require.NotNil(t, delta)
	assert.Equal(t, "Cube", delta["name"].A)
	assert.Equal(t, "Cube.001", delta["name"].B)
	assert.Equal(t, []float64{1, 1, 1}, delta["scale"].A)
	assert.Equal(t, []float64{1.5, 1.5, 1.5}, delta["scale"].B)

	assert.Contains(t, res.Added["objects"], "Icosphere")
	assert.Contains(t, res.Added["meshes"], "Icosphere")
	assert.Contains(t, res.Removed["materials"], "Material")

	assert.Same(t, res, engine.LastDiff())
}

func TestDiffFilesIdentical(t *testing.T) {
	engine, _ := newTestEngine(t)

	res, err := engine.DiffFiles(context.Background(), originalScene, originalScene)
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestDiffCurrentVsFileRestoresSession(t *testing.T) {
	engine, host := newTestEngine(t)
	_, err := host.Load(originalScene)
	require.NoError(t, err)

	res, err := engine.DiffCurrentVsFile(context.Background(), modifiedScene, false)
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Contains(t, res.Added["objects"], "Icosphere")

	assert.Equal(t, originalScene, host.ActivePath(), "original session must be restored")
}

func TestDiffCurrentVsFileReverse(t *testing.T) {
	engine, host := newTestEngine(t)
	_, err := host.Load(originalScene)
	require.NoError(t, err)

	res, err := engine.DiffCurrentVsFile(context.Background(), modifiedScene, true)
	require.NoError(t, err)

	// Reversed: the current document is the modified side, so the extra
	// object reads as removed.
	assert.Contains(t, res.Removed["objects"], "Icosphere")
}

func TestDiffCurrentVsFileUnsavedInMemory(t *testing.T) {
	engine, host := newTestEngine(t)
	doc, err := document.LoadScene(originalScene)
	require.NoError(t, err)
	host.SetActive(doc, "")
	host.MarkDirty()

	// No backing file: restore is skipped, the other file stays active.
	res, err := engine.DiffCurrentVsFile(context.Background(), modifiedScene, false)
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Equal(t, modifiedScene, host.ActivePath())
}

func TestHashFileStable(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	second, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)

	assert.Equal(t, first.FileHash, second.FileHash)
	assert.Len(t, first.FileHash, 64)
	assert.Equal(t, engine.Policy().Digest(), first.Metadata.PolicyHash)
	assert.Equal(t, CodebaseHash(), first.Metadata.CodebaseHash)
}

func TestHashFileDiffersAcrossFiles(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	b, err := engine.HashFile(ctx, modifiedScene)
	require.NoError(t, err)
	assert.NotEqual(t, a.FileHash, b.FileHash)
}

func TestHashCurrentMatchesHashFile(t *testing.T) {
	engine, host := newTestEngine(t)
	ctx := context.Background()

	_, err := host.Load(originalScene)
	require.NoError(t, err)
	current, err := engine.HashCurrent(ctx)
	require.NoError(t, err)

	fromFile, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	assert.Equal(t, fromFile.FileHash, current.FileHash)
}

func TestHashFileUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := hashcache.NewRedisCache(hashcache.RedisOptions{
		URL: fmt.Sprintf("redis://%s", mr.Addr()),
		TTL: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	engine, _ := newTestEngine(t, WithHashCache(cache))
	ctx := context.Background()

	first, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	second, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	assert.Equal(t, first.FileHash, second.FileHash)

	require.NoError(t, engine.InvalidateCache(ctx, originalScene))
	third, err := engine.HashFile(ctx, originalScene)
	require.NoError(t, err)
	assert.Equal(t, first.FileHash, third.FileHash)
}

func TestBudgetIsFatal(t *testing.T) {
	engine, _ := newTestEngine(t, WithBudget(snapshot.Budget{MaxEntities: 1}))

	_, err := engine.SnapshotFile(context.Background(), originalScene)
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrBudgetExceeded)

	payload := FatalPayload(err)
	assert.Equal(t, "MemoryError", payload.Error)
	assert.Equal(t, "snapshot", payload.Stage)
}

func TestFatalPayloadKinds(t *testing.T) {
	payload := FatalPayload(NewIOError("Engine.SnapshotFile", assert.AnError))
	assert.Equal(t, KindIO, payload.Error)
	assert.Equal(t, "Engine.SnapshotFile", payload.Stage)

	payload = FatalPayload(assert.AnError)
	assert.Equal(t, KindInternal, payload.Error)
}

func TestWithIDProp(t *testing.T) {
	engine, _ := newTestEngine(t, WithIDProp("asset_id"))

	snap, err := engine.SnapshotFile(context.Background(), originalScene)
	require.NoError(t, err)
	// No entity in the fixture carries the tag; strategies fall through.
	assert.Contains(t, snap, "Object:stable:Cube:MESH")
}

func TestCodebaseHashStable(t *testing.T) {
	assert.Equal(t, CodebaseHash(), CodebaseHash())
	assert.Len(t, CodebaseHash(), 64)
}

func TestSessionIDsAreUnique(t *testing.T) {
	a, _ := newTestEngine(t)
	b, _ := newTestEngine(t)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
	assert.NotEmpty(t, a.SessionID())
}
