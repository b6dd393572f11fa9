package fx

import "fmt"

// EventKind tags everything a segment reports to its controller's sink.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventOverlayStarted
	EventOverlayStopped
	EventOverlayCompleted
	EventPaused
	EventResumed
	EventBrightnessChanged
	EventLocalBrightnessEnabled
	EventOpacityChanged
	EventParamChange
	EventLog
)

var eventNames = [...]string{
	EventStarted:                "started",
	EventStopped:                "stopped",
	EventOverlayStarted:         "overlay_started",
	EventOverlayStopped:         "overlay_stopped",
	EventOverlayCompleted:       "overlay_completed",
	EventPaused:                 "paused",
	EventResumed:                "resumed",
	EventBrightnessChanged:      "brightness_changed",
	EventLocalBrightnessEnabled: "local_brightness_enabled",
	EventOpacityChanged:         "opacity_changed",
	EventParamChange:            "param_change",
	EventLog:                    "log",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Param names the effect parameter behind an EventParamChange.
type Param int

const (
	ParamNone Param = iota
	ParamInterval
	ParamSpeed
	ParamMovement
	ParamColor
	ParamPalette
	ParamCrossFade
	ParamVCycleRange
	ParamFade
	ParamCustom
)

var paramNames = [...]string{
	ParamNone:        "",
	ParamInterval:    "interval",
	ParamSpeed:       "speed",
	ParamMovement:    "movement",
	ParamColor:       "color",
	ParamPalette:     "palette",
	ParamCrossFade:   "crossfade",
	ParamVCycleRange: "vcycle_range",
	ParamFade:        "fade",
	ParamCustom:      "custom",
}

func (p Param) String() string {
	if p >= 0 && int(p) < len(paramNames) {
		return paramNames[p]
	}
	return fmt.Sprintf("param(%d)", int(p))
}

// Event is emitted synchronously by effects and segments.
type Event struct {
	Kind    EventKind
	Param   Param
	Message string
}

// Name is the human readable detail of the event: the log text, the changed
// parameter, or the kind itself.
func (e Event) Name() string {
	switch {
	case e.Kind == EventLog:
		return e.Message
	case e.Param == ParamCustom && e.Message != "":
		return e.Message
	case e.Param != ParamNone:
		return e.Param.String()
	case e.Message != "":
		return e.Message
	}
	return e.Kind.String()
}

// Emitter receives events from an effect.
type Emitter func(Event)
