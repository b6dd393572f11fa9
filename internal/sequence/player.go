package sequence

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrEmptyProgram = errors.New("program has no clips")

// NewPlayer constructs a Player with the provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current program and resets to Idle. Keyframes are
// sorted; clips without a positive duration are rejected.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrEmptyProgram
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Name)
		}
		for _, env := range c.Params {
			env.Sort()
		}
		for _, env := range c.Bools {
			env.Sort()
		}
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Position is the time into the program and the current clip index.
func (p *Player) Position() (float64, int) { return p.nowS, p.idx }

// Start moves to Running and applies the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	resume := p.State == Paused
	p.State = Running
	if !resume {
		p.startClip()
	}
}

func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop halts playback and rewinds.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
}

// Seek jumps to absolute program time t, clamped into [0, total).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if t >= total {
		t = math.Nextafter(total, -1)
	}
	starts := p.clipStarts()
	p.idx = sort.Search(len(starts), func(i int) bool { return starts[i] > t }) - 1
	p.nowS = t
	p.startClip()
	p.applyParams()
}

// Tick advances the sequencer by dt seconds and drives the hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt
	for {
		clip, localT := p.currentClipAndLocalT()
		if localT < clip.DurationS {
			break
		}
		// finish the clip on its last values before moving on
		p.applyAt(clip, clip.DurationS)
		if !p.advanceClip() {
			return
		}
	}
	p.applyParams()
}

func (p *Player) applyParams() {
	clip, localT := p.currentClipAndLocalT()
	p.applyAt(clip, localT)
}

func (p *Player) applyAt(clip Clip, t float64) {
	if p.hooks.SetParam != nil {
		for _, name := range sortedKeys(clip.Params) {
			p.hooks.SetParam(clip.Segment, name, clip.Params[name].Eval(t))
		}
	}
	if p.hooks.SetBool != nil {
		for _, name := range sortedKeys(clip.Bools) {
			p.hooks.SetBool(clip.Segment, name, clip.Bools[name].BoolEval(t))
		}
	}
}

func sortedKeys(m map[string]Envelope) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Player) startClip() {
	if p.hooks.StartClip != nil {
		p.hooks.StartClip(p.prog.Clips[p.idx])
	}
}

func (p *Player) clipStarts() []float64 {
	starts := make([]float64, len(p.prog.Clips))
	acc := 0.0
	for i, c := range p.prog.Clips {
		starts[i] = acc
		acc += c.DurationS
	}
	return starts
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	return p.prog.Clips[p.idx], p.nowS - p.clipStarts()[p.idx]
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

// advanceClip moves to the next clip, wrapping when looping. It reports
// false when the program is over, leaving the player rewound and Idle.
func (p *Player) advanceClip() bool {
	next := p.idx + 1
	if next >= len(p.prog.Clips) {
		if !p.prog.Loop {
			p.Stop()
			if p.hooks.Done != nil {
				p.hooks.Done()
			}
			return false
		}
		next = 0
		p.nowS -= p.totalDuration()
	}
	p.idx = next
	p.startClip()
	return true
}
