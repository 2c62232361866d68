package rig

// CurvePath identifies which local-transform channel a curve animates.
type CurvePath string

const (
	PathTranslation CurvePath = "translation"
	PathRotation    CurvePath = "rotation"
	PathScale       CurvePath = "scale"
)

// Keyframe is one sample on a curve. Value has three components for
// translation and scale, four (x, y, z, w) for rotation.
type Keyframe struct {
	Frame float64
	Value []float64
}

// BoneCurve is the keyframe sequence for one bone and one channel. Bones are
// referenced by name because clips travel between skeletons; the merger
// resolves names against the target skeleton.
type BoneCurve struct {
	Bone string
	Path CurvePath
	Keys []Keyframe
}

// AnimationClip is a named, time-ranged set of per-bone transform samples.
type AnimationClip struct {
	Name       string
	FrameStart float64
	FrameEnd   float64
	Curves     []BoneCurve
}

// RecomputeFrameRange derives FrameStart/FrameEnd from the curve keys.
// A clip without keys keeps a zero range.
func (c *AnimationClip) RecomputeFrameRange() {
	first := true
	for _, curve := range c.Curves {
		for _, key := range curve.Keys {
			if first {
				c.FrameStart, c.FrameEnd = key.Frame, key.Frame
				first = false
				continue
			}
			if key.Frame < c.FrameStart {
				c.FrameStart = key.Frame
			}
			if key.Frame > c.FrameEnd {
				c.FrameEnd = key.Frame
			}
		}
	}
	if first {
		c.FrameStart, c.FrameEnd = 0, 0
	}
}

// Track is an independently addressable slot holding one clip on a skeleton.
type Track struct {
	Name  string
	Start float64
	Clip  *AnimationClip
}

// AnimationContainer holds the ordered tracks attached to a skeleton plus the
// active clip used for preview or fallback playback. Track order is the index
// contract the runtime depends on.
type AnimationContainer struct {
	Tracks []Track
	Active *AnimationClip
}

// TrackNames returns the track names in track order.
func (a *AnimationContainer) TrackNames() []string {
	names := make([]string, len(a.Tracks))
	for i, track := range a.Tracks {
		names[i] = track.Name
	}
	return names
}
