package clips

import (
	"fmt"
	"log/slog"

	"github.com/tiendc/go-deepcopy"

	"rigprep/internal/logging"
	"rigprep/internal/rig"
)

// Merge attaches the clips to the skeleton's animation container as ordered
// tracks, one slot per clip, each starting at the clip's own first frame so
// tracks stay independently selectable rather than blended. The first clip in
// the list becomes the active clip used for preview and fallback playback,
// replacing whatever clip the skeleton carried before.
//
// Ordering is the caller's contract: track order equals input order, and the
// runtime depends on it for index-based clip lookup. Clip sample data is deep
// copied, so mutating a source clip after the merge never alters a track.
func Merge(skeleton *rig.Skeleton, ordered []*rig.AnimationClip, logger *slog.Logger) error {
	if skeleton == nil {
		return fmt.Errorf("merge: target skeleton must not be nil")
	}
	log := logging.NewComponentLogger(logger, "merge")

	container := &skeleton.Animation
	seen := make(map[string]struct{}, len(container.Tracks)+len(ordered))
	for _, track := range container.Tracks {
		seen[track.Name] = struct{}{}
	}

	var first *rig.AnimationClip
	for _, clip := range ordered {
		if clip == nil {
			continue
		}
		if _, dup := seen[clip.Name]; dup {
			return fmt.Errorf("merge: duplicate clip name %q", clip.Name)
		}
		seen[clip.Name] = struct{}{}

		copied := &rig.AnimationClip{}
		if err := deepcopy.Copy(copied, clip); err != nil {
			return fmt.Errorf("merge: copy clip %q: %w", clip.Name, err)
		}

		container.Tracks = append(container.Tracks, rig.Track{
			Name:  copied.Name,
			Start: copied.FrameStart,
			Clip:  copied,
		})
		if first == nil {
			first = copied
		}
		log.Info("added track",
			logging.String(logging.FieldClip, copied.Name),
			logging.Int("track_index", len(container.Tracks)-1),
		)
	}
	if first != nil {
		container.Active = first
	}
	return nil
}
