package clips

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rigprep/internal/bonemap"
	"rigprep/internal/logging"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
)

// Loader decodes a motion-source file into a scene. Implemented by gltfio;
// tests substitute stubs.
type Loader interface {
	LoadScene(path string) (*rig.Scene, error)
}

// Importer extracts exactly one clip per motion source.
type Importer struct {
	loader Loader
	logger *slog.Logger
}

// NewImporter returns an importer using the given loader.
func NewImporter(loader Loader, logger *slog.Logger) *Importer {
	return &Importer{loader: loader, logger: logging.NewComponentLogger(logger, "import")}
}

// Import loads one motion source into an isolated scratch scene, extracts its
// single active clip renamed to clipName, and drops everything else from the
// source. Curve bone references are retargeted to the canonical convention so
// the clip binds to a normalized skeleton.
//
// A missing file maps to ErrSourceNotFound, a file that fails to decode to
// ErrUnreadableSource, and a source without a usable clip to ErrNoAnimation;
// all are skippable per-source conditions.
func (im *Importer) Import(path, clipName string) (*rig.AnimationClip, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrSourceNotFound, "import", "stat", path, err)
	}

	scratch, err := im.loader.LoadScene(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrUnreadableSource, "import", "decode", path, err)
	}

	skelObj, ok := scratch.SkeletonObject()
	if !ok {
		return nil, pipeline.Wrap(pipeline.ErrNoAnimation, "import", "", "motion source has no skeleton: "+path, nil)
	}
	clip := skelObj.Skeleton.Animation.Active
	if clip == nil || len(clip.Curves) == 0 {
		return nil, pipeline.Wrap(pipeline.ErrNoAnimation, "import", "", "motion source has no active clip: "+path, nil)
	}

	// Only the clip leaves the scratch scene; the imported skeleton and its
	// geometry are discarded with the scene.
	clip.Name = NormalizeName(clipName)
	bonemap.ApplyToClip(clip)
	clip.RecomputeFrameRange()

	im.logger.Info("extracted clip",
		logging.String(logging.FieldSource, path),
		logging.String(logging.FieldClip, clip.Name),
		logging.Float64("frame_start", clip.FrameStart),
		logging.Float64("frame_end", clip.FrameEnd),
		logging.Int("curves", len(clip.Curves)),
	)
	return clip, nil
}

var titler = cases.Title(language.English)

// NormalizeName trims a clip name and title-cases it when it was authored in
// all lowercase, so worklists with "idle" and "Idle" produce the same track
// name. Mixed-case names pass through untouched.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && name == strings.ToLower(name) {
		return titler.String(name)
	}
	return name
}
