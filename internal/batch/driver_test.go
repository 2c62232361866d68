package batch_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"rigprep/internal/batch"
	"rigprep/internal/history"
	"rigprep/internal/logging"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
	"rigprep/internal/testsupport"
)

// stubLoader builds a fresh scene per call so driver-side mutation can never
// leak between jobs.
type stubLoader struct {
	scenes map[string]func() *rig.Scene
}

func (s *stubLoader) LoadScene(path string) (*rig.Scene, error) {
	fn, ok := s.scenes[path]
	if !ok {
		return nil, fmt.Errorf("unreadable glb %s", path)
	}
	return fn(), nil
}

// captureExporter records exported scenes and materializes the output file.
type captureExporter struct {
	saved map[string]*rig.Scene
	err   error
}

func (c *captureExporter) SaveScene(scene *rig.Scene, path string) error {
	if c.err != nil {
		return c.err
	}
	if c.saved == nil {
		c.saved = make(map[string]*rig.Scene)
	}
	c.saved[path] = scene
	return os.WriteFile(path, []byte("glb"), 0o644)
}

func fixtureJob(t *testing.T, loader *stubLoader, dir string, clips ...string) batch.Job {
	t.Helper()
	base := filepath.Join(dir, "ybot.glb")
	loader.scenes[base] = func() *rig.Scene { return testsupport.RiggedScene(t) }

	job := batch.Job{Base: base}
	for _, name := range clips {
		src := filepath.Join(dir, name+".glb")
		testsupport.WriteFile(t, src, 16)
		loader.scenes[src] = func() *rig.Scene { return testsupport.MotionScene(t, 1, 60) }
		job.Clips = append(job.Clips, batch.ClipSpec{Source: src, Name: name})
	}
	return job
}

func TestRunMergesClipsInOrderAndSkipsMissingSources(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	job := fixtureJob(t, loader, dir, "Idle", "Run")
	// Walk is listed between them but its source file never exists.
	job.Clips = []batch.ClipSpec{
		job.Clips[0],
		{Source: filepath.Join(dir, "walk.glb"), Name: "Walk"},
		job.Clips[1],
	}

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{job}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(summary.Results))
	}
	result := summary.Results[0]
	if result.Status != history.StatusSucceededWithSkips {
		t.Fatalf("status = %s, want succeeded_with_skips", result.Status)
	}
	if result.SkippedClips != 1 || result.Tracks != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	wantOutput := filepath.Join(cfg.Paths.OutputDir, "ybot.glb")
	scene, ok := exporter.saved[wantOutput]
	if !ok {
		t.Fatalf("nothing exported to %s", wantOutput)
	}
	skelObj, _ := scene.SkeletonObject()
	names := skelObj.Skeleton.Animation.TrackNames()
	if len(names) != 2 || names[0] != "Idle" || names[1] != "Run" {
		t.Fatalf("unexpected track order: %v", names)
	}
	if _, ok := skelObj.Skeleton.Lookup("mixamorig:Hips_01"); !ok {
		t.Fatal("bones not renamed to canonical convention before export")
	}
	if skelObj.Name != cfg.Rig.RootName {
		t.Fatalf("root not normalized: %q", skelObj.Name)
	}
}

func TestRunContinuesAfterJobFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	broken := batch.Job{Base: filepath.Join(dir, "missing.glb")}
	good := fixtureJob(t, loader, dir, "Idle")

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{broken, good}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	succeeded, withSkips, failed := summary.Counts()
	if succeeded != 1 || withSkips != 0 || failed != 1 {
		t.Fatalf("unexpected counts: %d/%d/%d", succeeded, withSkips, failed)
	}
	if !summary.Failed() {
		t.Fatal("summary must report the failed job")
	}
	if summary.Results[0].Err == nil {
		t.Fatal("failed job must carry its error")
	}
	if len(exporter.saved) != 1 {
		t.Fatalf("expected exactly the good job exported, got %d", len(exporter.saved))
	}
}

func TestRunExportsNormalizedBaseWhenEveryClipSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	job := fixtureJob(t, loader, dir)
	job.Clips = []batch.ClipSpec{{Source: filepath.Join(dir, "absent.glb"), Name: "Idle"}}

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{job}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result := summary.Results[0]
	if result.Status != history.StatusSucceededWithSkips {
		t.Fatalf("status = %s, want succeeded_with_skips", result.Status)
	}
	if result.Tracks != 0 {
		t.Fatalf("expected 0 tracks, got %d", result.Tracks)
	}
	if len(exporter.saved) != 1 {
		t.Fatal("normalized base must still be exported")
	}
}

func TestRunFailsJobWhenBaseHasNoSkeleton(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	boneless := filepath.Join(dir, "boneless.glb")
	loader.scenes[boneless] = func() *rig.Scene {
		scene := rig.NewScene()
		scene.Add(&rig.Object{Kind: rig.KindMesh, Name: "Body", Local: rig.IdentityTransform(), Mesh: &rig.Mesh{Name: "Body"}})
		return scene
	}
	good := fixtureJob(t, loader, dir, "Idle")

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{
		Jobs: []batch.Job{{Base: boneless}, good},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	first := summary.Results[0]
	if first.Status != history.StatusFailed {
		t.Fatalf("status = %s, want failed", first.Status)
	}
	if !errors.Is(first.Err, pipeline.ErrMissingSkeleton) {
		t.Fatalf("expected ErrMissingSkeleton, got %v", first.Err)
	}
	if _, exported := exporter.saved[first.Output]; exported {
		t.Fatal("no output may be written for a skeleton-less base")
	}
	if summary.Results[1].Status != history.StatusSucceeded {
		t.Fatalf("second job did not run to success: %+v", summary.Results[1])
	}
}

func TestRunFailsJobOnFatalExportError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{err: pipeline.Wrap(pipeline.ErrExport, "export", "write", "disk full", nil)}

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{
		Jobs: []batch.Job{fixtureJob(t, loader, dir, "Idle")},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result := summary.Results[0]
	if result.Status != history.StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if !errors.Is(result.Err, pipeline.ErrExport) {
		t.Fatalf("expected ErrExport, got %v", result.Err)
	}
}

func TestRunRespectsOverwritePolicy(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOverwrite(false))
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	job := fixtureJob(t, loader, dir)
	testsupport.WriteFile(t, job.OutputPath(cfg.Paths.OutputDir), 8)

	driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{job}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Results[0].Status != history.StatusFailed {
		t.Fatalf("status = %s, want failed", summary.Results[0].Status)
	}
	if len(exporter.saved) != 0 {
		t.Fatal("exporter must not run when overwrite is disabled and output exists")
	}
}

func TestRunRefusesConcurrentBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	held := flock.New(filepath.Join(cfg.Paths.StagingDir, "rigprep.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: %v", err)
	}
	defer held.Unlock()

	driver := batch.NewDriver(cfg, &stubLoader{scenes: map[string]func() *rig.Scene{}}, &captureExporter{}, nil, logging.NewNop())
	_, err = driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{{Base: "x.glb"}}})
	if err == nil {
		t.Fatal("expected second concurrent batch to fail fast")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}
	exporter := &captureExporter{}

	broken := batch.Job{Base: filepath.Join(dir, "missing.glb")}
	good := fixtureJob(t, loader, dir, "Idle")

	driver := batch.NewDriver(cfg, loader, exporter, store, logging.NewNop())
	summary, err := driver.Run(context.Background(), &batch.Worklist{Jobs: []batch.Job{good, broken}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ctx := context.Background()
	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID {
		t.Fatalf("run not recorded: %+v", runs)
	}
	if runs[0].Jobs != 2 || runs[0].Succeeded != 1 || runs[0].Failed != 1 {
		t.Fatalf("unexpected run tallies: %+v", runs[0])
	}

	jobs, err := store.RunJobs(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("RunJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 job rows, got %d", len(jobs))
	}
	if jobs[0].Status != history.StatusSucceeded || jobs[1].Status != history.StatusFailed {
		t.Fatalf("unexpected job statuses: %s, %s", jobs[0].Status, jobs[1].Status)
	}
	if jobs[1].Error == "" {
		t.Fatal("failed job row must carry an error message")
	}
}

func TestRunTwiceProducesIdenticalOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	loader := &stubLoader{scenes: map[string]func() *rig.Scene{}}

	job := fixtureJob(t, loader, dir, "Idle", "Run")
	// A missing middle clip exercises skip handling on both passes.
	job.Clips = []batch.ClipSpec{
		job.Clips[0],
		{Source: filepath.Join(dir, "walk.glb"), Name: "Walk"},
		job.Clips[1],
	}
	wl := &batch.Worklist{Jobs: []batch.Job{job}}

	var snapshots []snapshot
	for pass := 0; pass < 2; pass++ {
		exporter := &captureExporter{}
		driver := batch.NewDriver(cfg, loader, exporter, nil, logging.NewNop())
		summary, err := driver.Run(context.Background(), wl)
		if err != nil {
			t.Fatalf("pass %d: Run failed: %v", pass, err)
		}
		result := summary.Results[0]
		scene, ok := exporter.saved[result.Output]
		if !ok {
			t.Fatalf("pass %d: nothing exported to %s", pass, result.Output)
		}
		snapshots = append(snapshots, snapshotScene(t, scene, result))
	}

	first, second := snapshots[0], snapshots[1]
	if first.status != second.status || first.skipped != second.skipped {
		t.Fatalf("runs diverged: %+v vs %+v", first, second)
	}
	if len(first.tracks) != len(second.tracks) {
		t.Fatalf("track counts diverged: %v vs %v", first.tracks, second.tracks)
	}
	for i := range first.tracks {
		if first.tracks[i] != second.tracks[i] {
			t.Fatalf("track order diverged at %d: %v vs %v", i, first.tracks, second.tracks)
		}
	}
	if first.active != second.active {
		t.Fatalf("active clip diverged: %q vs %q", first.active, second.active)
	}
	if len(first.bones) != len(second.bones) {
		t.Fatalf("bone counts diverged: %v vs %v", first.bones, second.bones)
	}
	for i := range first.bones {
		if first.bones[i] != second.bones[i] {
			t.Fatalf("bone names diverged at %d: %v vs %v", i, first.bones, second.bones)
		}
	}
}

type snapshot struct {
	status  history.Status
	skipped int
	tracks  []string
	active  string
	bones   []string
}

func snapshotScene(t *testing.T, scene *rig.Scene, result batch.JobResult) snapshot {
	t.Helper()
	skelObj, ok := scene.SkeletonObject()
	if !ok {
		t.Fatal("exported scene has no skeleton")
	}
	snap := snapshot{
		status:  result.Status,
		skipped: result.SkippedClips,
		tracks:  skelObj.Skeleton.Animation.TrackNames(),
	}
	if active := skelObj.Skeleton.Animation.Active; active != nil {
		snap.active = active.Name
	}
	for _, bone := range skelObj.Skeleton.Bones() {
		snap.bones = append(snap.bones, bone.Name)
	}
	return snap
}
