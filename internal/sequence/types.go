// Package sequence plays timed programs of clips against strip segments:
// each clip swaps a segment's effect and automates its parameters with
// keyframed envelopes.
package sequence

// Keyframe is a value at time T (seconds into the clip). Ease shapes the
// run from this keyframe to the next.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"` // linear, smooth, cubic, sine, out
}

// Envelope is a list of keyframes sorted by T.
type Envelope []Keyframe

// Clip is one step of a program on one segment.
type Clip struct {
	Name      string  `yaml:"name" json:"name"`
	Segment   string  `yaml:"segment,omitempty" json:"segment,omitempty"` // empty means primary
	Effect    string  `yaml:"effect,omitempty" json:"effect,omitempty"`
	Color     string  `yaml:"color,omitempty" json:"color,omitempty"`
	Palette   string  `yaml:"palette,omitempty" json:"palette,omitempty"`
	Overlay   string  `yaml:"overlay,omitempty" json:"overlay,omitempty"`
	DurationS float64 `yaml:"duration_s" json:"durationS"`

	// Params automates numeric parameters: brightness, opacity, speed.
	Params map[string]Envelope `yaml:"params,omitempty" json:"params,omitempty"`
	// Bools automates switches (crossfade, pause), thresholded at 0.5.
	Bools map[string]Envelope `yaml:"bools,omitempty" json:"bools,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Loop  bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
	Clips []Clip `yaml:"clips" json:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are the callbacks a Player drives the strip through.
type Hooks struct {
	// StartClip applies a clip's effect, colors and overlay to its segment.
	StartClip func(c Clip)
	SetParam  func(segment, name string, v float64)
	SetBool   func(segment, name string, b bool)
	// Done fires when a non-looping program runs out.
	Done func()
}

// Player owns the current Program timeline and uses Hooks to drive the strip.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index

	hooks Hooks
}
