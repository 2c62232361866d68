package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"rigprep/internal/bonemap"
	"rigprep/internal/clips"
	"rigprep/internal/config"
	"rigprep/internal/history"
	"rigprep/internal/logging"
	"rigprep/internal/normalize"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
)

// lockFileName guards the staging directory against concurrent batches.
const lockFileName = "rigprep.lock"

// Exporter writes a finished scene to its output path. Implemented by
// gltfio; tests substitute stubs.
type Exporter interface {
	SaveScene(scene *rig.Scene, path string) error
}

// Driver executes worklists job by job.
type Driver struct {
	cfg      *config.Config
	loader   clips.Loader
	exporter Exporter
	store    *history.Store
	logger   *slog.Logger
}

// NewDriver wires a batch driver. The history store may be nil to disable
// run recording.
func NewDriver(cfg *config.Config, loader clips.Loader, exporter Exporter, store *history.Store, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:      cfg,
		loader:   loader,
		exporter: exporter,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes every job in the worklist in order. A job failure is
// recorded and the run continues; Run itself only fails on setup problems
// such as a held lock. The returned summary covers all jobs.
func (d *Driver) Run(ctx context.Context, wl *Worklist) (*Summary, error) {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(d.cfg.Paths.StagingDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another batch is already running for %s", d.cfg.Paths.StagingDir)
	}
	defer func() { _ = lock.Unlock() }()

	summary := &Summary{RunID: uuid.NewString()}
	run := history.Run{ID: summary.RunID, StartedAt: time.Now()}
	d.recordStart(ctx, run)

	d.logger.Info("batch started",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("jobs", len(wl.Jobs)),
	)

	for i, job := range wl.Jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := d.runJob(ctx, summary.RunID, i, job)
		summary.Results = append(summary.Results, result)
		d.recordJob(ctx, summary.RunID, result)
	}

	run.FinishedAt = time.Now()
	run.Jobs = len(summary.Results)
	run.Succeeded, run.SucceededWithSkips, run.Failed = summary.Counts()
	d.recordFinish(ctx, run)

	d.logger.Info("batch finished",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("succeeded", run.Succeeded),
		logging.Int("succeeded_with_skips", run.SucceededWithSkips),
		logging.Int("failed", run.Failed),
	)
	return summary, nil
}

// runJob executes one job against a fresh scene. Skippable clip errors
// degrade the clip set; every other error fails the job without touching the
// output path.
func (d *Driver) runJob(ctx context.Context, runID string, index int, job Job) JobResult {
	jobID := job.ID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	result := JobResult{
		JobID:  jobID,
		Base:   job.Base,
		Output: job.OutputPath(d.cfg.Paths.OutputDir),
	}
	log := d.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldJobID, jobID),
	)
	log.Info("job started",
		logging.Int("index", index),
		logging.String("base", job.Base),
		logging.Int("clips", len(job.Clips)),
	)

	fail := func(err error) JobResult {
		result.Status = history.StatusFailed
		result.Err = err
		logging.ErrorWithContext(log, "job failed", "job_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no output written for "+job.Base),
		)
		return result
	}

	scene, err := d.loader.LoadScene(job.Base)
	if err != nil {
		return fail(fmt.Errorf("load base: %w", err))
	}

	opts := normalize.Options{
		RootName:     d.cfg.Rig.RootName,
		WrapperJoint: d.cfg.Rig.WrapperJoint,
	}
	if err := normalize.Apply(scene, opts, log); err != nil {
		return fail(err)
	}

	importer := clips.NewImporter(d.loader, log)
	var merged []*rig.AnimationClip
	for _, spec := range job.Clips {
		clip, importErr := importer.Import(spec.Source, spec.Name)
		if importErr != nil {
			if pipeline.Skippable(importErr) {
				result.SkippedClips++
				logging.WarnWithContext(log, "clip skipped", "clip_skipped",
					logging.String(logging.FieldSource, spec.Source),
					logging.String(logging.FieldClip, spec.Name),
					logging.Error(importErr),
					logging.String(logging.FieldImpact, "output will not contain this clip"),
				)
				continue
			}
			return fail(importErr)
		}
		merged = append(merged, clip)
	}

	renamed, err := bonemap.Apply(scene)
	if err != nil {
		return fail(fmt.Errorf("apply bone map: %w", err))
	}
	if renamed > 0 {
		log.Debug("bones renamed", logging.Int("renamed", renamed))
	}

	skelObj, ok := scene.SkeletonObject()
	if !ok {
		return fail(pipeline.Wrap(pipeline.ErrMissingSkeleton, "merge", "", job.Base, nil))
	}
	if err := clips.Merge(skelObj.Skeleton, merged, log); err != nil {
		return fail(err)
	}
	result.Tracks = len(skelObj.Skeleton.Animation.Tracks)

	if !d.cfg.Export.OverwriteExisting {
		if _, statErr := os.Stat(result.Output); statErr == nil {
			return fail(pipeline.Wrap(pipeline.ErrExport, "export", "",
				fmt.Sprintf("output %s exists and overwrite is disabled", result.Output), nil))
		}
	}
	if err := d.exporter.SaveScene(scene, result.Output); err != nil {
		return fail(err)
	}

	result.Status = history.StatusSucceeded
	if result.SkippedClips > 0 {
		result.Status = history.StatusSucceededWithSkips
	}
	log.Info("job finished",
		logging.String("status", string(result.Status)),
		logging.String("output", result.Output),
		logging.Int("tracks", result.Tracks),
		logging.Int("skipped_clips", result.SkippedClips),
	)
	return result
}

func (d *Driver) recordStart(ctx context.Context, run history.Run) {
	if d.store == nil {
		return
	}
	if err := d.store.StartRun(ctx, run); err != nil {
		d.logger.Warn("history write failed", logging.Error(err))
	}
}

func (d *Driver) recordFinish(ctx context.Context, run history.Run) {
	if d.store == nil {
		return
	}
	if err := d.store.FinishRun(ctx, run); err != nil {
		d.logger.Warn("history write failed", logging.Error(err))
	}
}

func (d *Driver) recordJob(ctx context.Context, runID string, result JobResult) {
	if d.store == nil {
		return
	}
	job := history.Job{
		RunID:        runID,
		JobID:        result.JobID,
		Base:         result.Base,
		Output:       result.Output,
		Status:       result.Status,
		Tracks:       result.Tracks,
		SkippedClips: result.SkippedClips,
		FinishedAt:   time.Now(),
	}
	if result.Err != nil {
		job.Error = result.Err.Error()
	}
	if err := d.store.RecordJob(ctx, job); err != nil {
		d.logger.Warn("history write failed", logging.Error(err))
	}
}
