package vdiff

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/scenekit/vdiff/diff"
	"github.com/scenekit/vdiff/document"
	"github.com/scenekit/vdiff/hashcache"
	"github.com/scenekit/vdiff/obs"
	"github.com/scenekit/vdiff/policy"
	"github.com/scenekit/vdiff/snapshot"
)

// HashReport is the result of hashing one document.
type HashReport struct {
	FileHash string       `json:"file_hash"`
	Metadata HashMetadata `json:"metadata"`
}

// HashMetadata pins a file hash to the comparison semantics and engine
// build that produced it.
type HashMetadata struct {
	PolicyHash   string `json:"policy_hash"`
	CodebaseHash string `json:"codebase_hash"`
}

// Engine is the façade over snapshotting, hashing and diffing. It is
// single-session: it owns the host's one active document slot and must not
// be shared across goroutines.
type Engine struct {
	host    document.Host
	pol     *policy.Policy
	builder *snapshot.Builder
	cfg     engineConfig

	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *obs.Metrics
	sessionID string

	lastDiff *diff.Result
}

// New creates an Engine around the given host.
func New(host document.Host, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, NewValidationError("vdiff.New", errors.New("host is required"))
	}

	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	pol := cfg.pol
	if pol == nil {
		pol = policy.Default()
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := obs.NewMetrics(cfg.meter)
	if err != nil {
		return nil, NewInternalError("vdiff.New", err)
	}

	builder := snapshot.NewBuilder(pol, logger)
	builder.SetIDProp(cfg.idProp)
	builder.SetIgnoreLinked(!cfg.includeLinked)
	builder.SetBudget(cfg.budget)

	sessionID := uuid.NewString()
	logger.Debug("engine created",
		"session_id", sessionID,
		"policy_hash", pol.Digest())

	return &Engine{
		host:      host,
		pol:       pol,
		builder:   builder,
		cfg:       cfg,
		logger:    logger,
		tracer:    cfg.tracer,
		metrics:   metrics,
		sessionID: sessionID,
	}, nil
}

// SessionID returns the engine's unique session identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// Policy returns the engine's comparison policy.
func (e *Engine) Policy() *policy.Policy { return e.pol }

// SnapshotCurrent snapshots the host's active document.
func (e *Engine) SnapshotCurrent(ctx context.Context) (snapshot.Snapshot, error) {
	const op = "Engine.SnapshotCurrent"

	doc := e.host.Active()
	if doc == nil {
		return nil, NewHostError(op, ErrNoActiveDocument)
	}
	return e.buildSnapshot(ctx, op, doc, "current")
}

// SnapshotFile loads path as the active document and snapshots it. The
// load replaces whatever document was active; callers needing the previous
// document back own the restore (see DiffCurrentVsFile).
func (e *Engine) SnapshotFile(ctx context.Context, path string) (snapshot.Snapshot, error) {
	const op = "Engine.SnapshotFile"

	doc, err := e.host.Load(path)
	if err != nil {
		return nil, NewIOError(op, err).WithContext(map[string]any{"path": path})
	}
	return e.buildSnapshot(ctx, op, doc, "file")
}

func (e *Engine) buildSnapshot(ctx context.Context, op string, doc *document.Document, source string) (snapshot.Snapshot, error) {
	ctx, span := e.startSpan(ctx, obs.SpanSnapshotBuild,
		attribute.String("source", source))
	start := time.Now()

	snap, err := e.builder.Build(doc)
	obs.EndSpan(span, err)
	if err != nil {
		if errors.Is(err, snapshot.ErrBudgetExceeded) {
			return nil, NewBudgetError(op, err)
		}
		return nil, NewInternalError(op, err)
	}

	e.metrics.RecordSnapshot(ctx, len(snap), float64(time.Since(start).Milliseconds()), source)
	e.logger.Debug("snapshot built",
		"session_id", e.sessionID,
		"source", source,
		"entities", len(snap))
	return snap, nil
}

// DiffFiles loads and snapshots both files, then diffs original against
// modified. The host is left with the modified file active.
func (e *Engine) DiffFiles(ctx context.Context, originalPath, modifiedPath string) (*diff.Result, error) {
	original, err := e.SnapshotFile(ctx, originalPath)
	if err != nil {
		return nil, err
	}
	modified, err := e.SnapshotFile(ctx, modifiedPath)
	if err != nil {
		return nil, err
	}
	return e.diff(ctx, original, modified), nil
}

// DiffCurrentVsFile compares the host's current document against another
// file. The current state is snapshotted first, the other file is loaded
// and snapshotted, and the originally active file is reloaded to restore
// the caller's session. The restore is best-effort: an active document
// with no backing file cannot be reloaded, and its unsaved state is lost.
//
// With reverse set, the other file is treated as the original and the
// current document as the modified side.
func (e *Engine) DiffCurrentVsFile(ctx context.Context, otherPath string, reverse bool) (*diff.Result, error) {
	const op = "Engine.DiffCurrentVsFile"

	restorePath := e.host.ActivePath()
	if e.host.Unsaved() {
		e.logger.Warn("active document has unsaved changes; they are lost on restore",
			"session_id", e.sessionID,
			"restore_path", restorePath)
	}

	current, err := e.SnapshotCurrent(ctx)
	if err != nil {
		return nil, err
	}
	other, err := e.SnapshotFile(ctx, otherPath)
	if err != nil {
		return nil, err
	}

	if restorePath != "" {
		if _, err := e.host.Load(restorePath); err != nil {
			// The session now points at the wrong document; surface it.
			return nil, NewHostError(op, err).WithContext(map[string]any{
				"restore_path": restorePath,
			})
		}
	}

	if reverse {
		return e.diff(ctx, other, current), nil
	}
	return e.diff(ctx, current, other), nil
}

func (e *Engine) diff(ctx context.Context, original, modified snapshot.Snapshot) *diff.Result {
	ctx, span := e.startSpan(ctx, obs.SpanDiffCompute,
		attribute.Int("original_entities", len(original)),
		attribute.Int("modified_entities", len(modified)))

	var opts []diff.Option
	if e.cfg.retainPayloads {
		opts = append(opts, diff.WithPayloads())
	}
	result := diff.Compute(original, modified, opts...)
	obs.EndSpan(span, nil)

	e.metrics.RecordDiff(ctx, !result.Empty())
	e.lastDiff = result
	return result
}

// LastDiff returns the most recent diff result, or nil. It is an ephemeral
// per-session cache, not persistent state.
func (e *Engine) LastDiff() *diff.Result { return e.lastDiff }

// HashCurrent digests the host's active document.
func (e *Engine) HashCurrent(ctx context.Context) (*HashReport, error) {
	snap, err := e.SnapshotCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return e.report(snapshot.Digest(snap)), nil
}

// HashFile digests the document at path, consulting the hash cache when
// one is configured. Cache failures degrade to a recompute.
func (e *Engine) HashFile(ctx context.Context, path string) (*HashReport, error) {
	ctx, span := e.startSpan(ctx, obs.SpanHashFile,
		attribute.String("path", path))
	defer span.End()

	key, keyErr := e.cacheKey(path)
	if e.cfg.cache != nil && keyErr == nil {
		entry, err := e.cfg.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("hash cache read failed", "error", err)
		} else if entry != nil && entry.CodebaseHash == CodebaseHash() {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return e.report(entry.FileHash), nil
		}
	}

	snap, err := e.SnapshotFile(ctx, path)
	if err != nil {
		return nil, err
	}
	report := e.report(snapshot.Digest(snap))

	if e.cfg.cache != nil && keyErr == nil {
		if err := e.cfg.cache.Put(ctx, key, hashcache.Entry{
			FileHash:     report.FileHash,
			CodebaseHash: CodebaseHash(),
		}); err != nil {
			e.logger.Warn("hash cache write failed", "error", err)
		}
	}
	return report, nil
}

// InvalidateCache drops path's cached digest, if any.
func (e *Engine) InvalidateCache(ctx context.Context, path string) error {
	if e.cfg.cache == nil {
		return nil
	}
	key, err := e.cacheKey(path)
	if err != nil {
		return NewIOError("Engine.InvalidateCache", err)
	}
	return e.cfg.cache.Invalidate(ctx, key)
}

func (e *Engine) cacheKey(path string) (hashcache.Key, error) {
	return hashcache.KeyForFile(path, e.pol.Digest())
}

func (e *Engine) report(fileHash string) *HashReport {
	return &HashReport{
		FileHash: fileHash,
		Metadata: HashMetadata{
			PolicyHash:   e.pol.Digest(),
			CodebaseHash: CodebaseHash(),
		},
	}
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := e.tracer
	if tracer == nil {
		tracer = obs.Tracer(nil)
	}
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attrs...)
	span.SetAttributes(attribute.String("session_id", e.sessionID))
	return ctx, span
}

// FatalPayload maps an error to the structured payload emitted on fatal
// failure. Budget exhaustion is the single recognized fatal condition;
// everything else reports as an internal failure.
func FatalPayload(err error) *diff.ErrorResult {
	if errors.Is(err, snapshot.ErrBudgetExceeded) {
		return &diff.ErrorResult{Error: "MemoryError", Stage: "snapshot"}
	}
	var e *Error
	if errors.As(err, &e) {
		return &diff.ErrorResult{Error: e.Kind, Stage: e.Op}
	}
	return &diff.ErrorResult{Error: KindInternal, Stage: "engine"}
}
