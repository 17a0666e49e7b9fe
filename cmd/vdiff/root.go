package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scenekit/vdiff"
	"github.com/scenekit/vdiff/document"
	"github.com/scenekit/vdiff/hashcache"
	"github.com/scenekit/vdiff/launch"
	"github.com/scenekit/vdiff/policy"
	"github.com/scenekit/vdiff/watch"
)

type cliOptions struct {
	hashMode bool
	diffMode bool

	hashFile     string
	fileOriginal string
	fileModified string

	idProp     string
	policyPath string
	cacheURL   string

	fileOut    string
	useStdout  bool
	prettyJSON bool
	verbose    bool

	watchFiles bool
	hostExec   string
	hostArgs   []string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "vdiff",
		Short: "Snapshot, hash and diff scene documents",
		Long: `vdiff snapshots scene documents into flat, hashable state and either
digests a single file or reports the added/removed/changed delta between
two files. Comparison semantics are governed by a policy of excluded
collections and property paths.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.hashMode, "hash", false, "compute a single file's content digest")
	flags.BoolVar(&opts.diffMode, "diff", false, "diff two files")
	flags.StringVar(&opts.hashFile, "hash-file", "", "file to hash (with --hash)")
	flags.StringVar(&opts.fileOriginal, "file-original", "", "original file (with --diff)")
	flags.StringVar(&opts.fileModified, "file-modified", "", "modified file (with --diff)")
	flags.StringVar(&opts.idProp, "id-prop", "", "custom tag property for entity identity")
	flags.StringVar(&opts.policyPath, "policy", "", "policy config file overriding the default exclusions")
	flags.StringVar(&opts.cacheURL, "cache-url", "", "Redis URL for the file hash cache")
	flags.StringVar(&opts.fileOut, "file-out", "", "write the result to a file")
	flags.BoolVar(&opts.useStdout, "stdout", false, "write the result to stdout")
	flags.BoolVar(&opts.prettyJSON, "pretty-json", false, "indent JSON output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.watchFiles, "watch", false, "re-run the diff whenever an input file changes")
	flags.StringVar(&opts.hostExec, "host-exec", "", "re-invoke the engine inside this host binary")
	flags.StringArrayVar(&opts.hostArgs, "host-arg", nil, "extra argument placed before the forwarded flags (repeatable)")

	cmd.MarkFlagsMutuallyExclusive("hash", "diff")
	cmd.MarkFlagsOneRequired("hash", "diff")
	cmd.MarkFlagsMutuallyExclusive("file-out", "stdout")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts *cliOptions) error {
	logger := newLogger(opts.verbose)
	slog.SetDefault(logger)

	if err := validate(opts); err != nil {
		return err
	}

	if opts.hostExec != "" {
		return runWrapped(ctx, out, opts)
	}

	engine, cleanup, err := buildEngine(opts, logger)
	if err != nil {
		return emitFatal(out, opts, err)
	}
	defer cleanup()

	if opts.hashMode {
		report, err := engine.HashFile(ctx, opts.hashFile)
		if err != nil {
			return emitFatal(out, opts, err)
		}
		return emit(out, opts, report)
	}

	runDiff := func(ctx context.Context) error {
		result, err := engine.DiffFiles(ctx, opts.fileOriginal, opts.fileModified)
		if err != nil {
			return emitFatal(out, opts, err)
		}
		return emit(out, opts, result)
	}

	if err := runDiff(ctx); err != nil {
		return err
	}
	if opts.watchFiles {
		return watchAndRerun(ctx, logger, opts, runDiff)
	}
	return nil
}

func validate(opts *cliOptions) error {
	if opts.hashMode && opts.hashFile == "" {
		return errors.New("--hash requires --hash-file")
	}
	if opts.diffMode && (opts.fileOriginal == "" || opts.fileModified == "") {
		return errors.New("--diff requires --file-original and --file-modified")
	}
	if opts.watchFiles && !opts.diffMode {
		return errors.New("--watch requires --diff")
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildEngine(opts *cliOptions, logger *slog.Logger) (*vdiff.Engine, func(), error) {
	engineOpts := []vdiff.Option{vdiff.WithLogger(logger)}
	cleanup := func() {}

	if opts.idProp != "" {
		engineOpts = append(engineOpts, vdiff.WithIDProp(opts.idProp))
	}
	if opts.policyPath != "" {
		pol, err := policy.Load(opts.policyPath)
		if err != nil {
			return nil, cleanup, fmt.Errorf("load policy: %w", err)
		}
		engineOpts = append(engineOpts, vdiff.WithPolicy(pol))
	}
	if opts.cacheURL != "" {
		cache, err := hashcache.NewRedisCache(hashcache.RedisOptions{URL: opts.cacheURL})
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect hash cache: %w", err)
		}
		cleanup = func() { vdiff.CloseWithLog(cache, logger, "hash cache") }
		engineOpts = append(engineOpts, vdiff.WithHashCache(cache))
	}

	engine, err := vdiff.New(document.NewFileHost(), engineOpts...)
	if err != nil {
		return nil, cleanup, err
	}
	return engine, cleanup, nil
}

// runWrapped forwards the invocation into the host binary and relays the
// first JSON object from the host's stdout.
func runWrapped(ctx context.Context, out io.Writer, opts *cliOptions) error {
	wrapper := &launch.Wrapper{
		Exec:    opts.hostExec,
		PreArgs: opts.hostArgs,
		Timeout: 10 * time.Minute,
	}

	raw, err := wrapper.Invoke(ctx, forwardFlags(opts))
	if err != nil {
		return emitFatal(out, opts, err)
	}
	return emitRaw(out, opts, raw)
}

// forwardFlags rebuilds the engine flags for the in-host invocation. The
// wrapper flags themselves are not forwarded.
func forwardFlags(opts *cliOptions) []string {
	var flags []string
	if opts.hashMode {
		flags = append(flags, "--hash", "--hash-file", opts.hashFile)
	}
	if opts.diffMode {
		flags = append(flags,
			"--diff",
			"--file-original", opts.fileOriginal,
			"--file-modified", opts.fileModified)
	}
	if opts.idProp != "" {
		flags = append(flags, "--id-prop", opts.idProp)
	}
	if opts.policyPath != "" {
		flags = append(flags, "--policy", opts.policyPath)
	}
	if opts.prettyJSON {
		flags = append(flags, "--pretty-json")
	}
	if opts.verbose {
		flags = append(flags, "--verbose")
	}
	flags = append(flags, "--stdout")
	return flags
}

func watchAndRerun(ctx context.Context, logger *slog.Logger, opts *cliOptions, rerun func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(func(path string) {
		logger.Debug("input changed", "path", path)
		if err := rerun(ctx); err != nil {
			logger.Warn("rerun failed", "error", err)
		}
	}, &watch.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Add(opts.fileOriginal); err != nil {
		return err
	}
	if err := w.Add(opts.fileModified); err != nil {
		return err
	}

	logger.Debug("watching for changes",
		"original", opts.fileOriginal,
		"modified", opts.fileModified)
	w.Run(ctx)
	return nil
}

func emit(out io.Writer, opts *cliOptions, v any) error {
	var (
		data []byte
		err  error
	)
	if opts.prettyJSON {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return emitRaw(out, opts, data)
}

func emitRaw(out io.Writer, opts *cliOptions, data []byte) error {
	data = append(data, '\n')
	if opts.fileOut != "" {
		return os.WriteFile(opts.fileOut, data, 0o644)
	}
	_, err := out.Write(data)
	return err
}

// emitFatal writes the structured error payload to the selected output and
// returns the original error so the process exits non-zero.
func emitFatal(out io.Writer, opts *cliOptions, err error) error {
	if werr := emit(out, opts, vdiff.FatalPayload(err)); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}
