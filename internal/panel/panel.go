// Package panel holds the display state of the bell control panel.
//
// A Panel carries the same named elements the device's web page has: two
// checkboxes, the displayed and editable alarm time, the countdown and
// clock read-outs, the bell indicator with its state class, and the
// set-time dialog. It does no I/O; the controller feeds it device
// statuses and wall-clock time, and front-ends render it.
package panel

import (
	"sort"
	"time"

	"bellalarm/internal/models"
)

// Element ids of the control surface.
const (
	IDMotor         = "motor"
	IDAlarm         = "alarm"
	IDAlarmTime     = "alarm_time"
	IDTime          = "time"
	IDRemainingTime = "remaining_time"
	IDCurrentTime   = "current_time"
	IDBell          = "bell"
	IDSetTime       = "set_time"
	IDSubmitTime    = "submit_time"
	IDSetTimeModal  = "set_time_modal"
	ClassClose      = "close"
)

// Placeholder is shown instead of a countdown when no alarm time is displayed.
const Placeholder = "-"

const clockLayout = "2006-01-02 15:04:05"

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Panel is the display state. It is not safe for concurrent use.
type Panel struct {
	motor       bool
	alarm       bool
	alarmTime   string
	timeInput   string
	remaining   string
	currentTime string
	bell        map[string]bool

	modalOpen   bool
	modalBounds Rect
}

// New returns an empty panel: both toggles off, no alarm time, no bell class.
func New() *Panel {
	return &Panel{
		remaining: Placeholder,
		bell:      make(map[string]bool, 1),
	}
}

// Apply replaces the displayed state with st.
func (p *Panel) Apply(st models.DeviceStatus) error {
	class, err := st.MotorStatus.BellClass()
	if err != nil {
		return err
	}

	p.motor = st.MotorButtonOn
	p.alarm = st.AlarmButtonOn
	p.alarmTime = st.AlarmTime
	p.timeInput = st.AlarmTime

	for _, c := range []string{models.BellClassStopped, models.BellClassRunning, models.BellClassStopping} {
		delete(p.bell, c)
	}
	p.bell[class] = true
	return nil
}

// Intent reads all three controls as they are now.
func (p *Panel) Intent() models.UserIntent {
	return models.UserIntent{
		MotorButtonOn: p.motor,
		AlarmButtonOn: p.alarm,
		AlarmTime:     p.timeInput,
	}
}

// Refresh recomputes the countdown and the clock read-out for now.
func (p *Panel) Refresh(now time.Time) {
	p.remaining = Remaining(p.alarmTime, now)
	p.currentTime = now.Format(clockLayout)
}

func (p *Panel) Motor() bool { return p.motor }
func (p *Panel) SetMotor(on bool) { p.motor = on }
func (p *Panel) Alarm() bool { return p.alarm }
func (p *Panel) SetAlarm(on bool) { p.alarm = on }
func (p *Panel) AlarmTime() string { return p.alarmTime }
func (p *Panel) TimeInput() string { return p.timeInput }
func (p *Panel) SetTimeInput(v string) { p.timeInput = v }
func (p *Panel) RemainingTime() string { return p.remaining }
func (p *Panel) CurrentTime() string { return p.currentTime }
func (p *Panel) HasBellClass(c string) bool { return p.bell[c] }

// BellClasses returns the indicator's classes in sorted order.
func (p *Panel) BellClasses() []string {
	out := make([]string, 0, len(p.bell))
	for c := range p.bell {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// BellClass returns the single active indicator class, or "" before the
// first status arrives.
func (p *Panel) BellClass() string {
	for c := range p.bell {
		return c
	}
	return ""
}

func (p *Panel) OpenModal() { p.modalOpen = true }
func (p *Panel) CloseModal() { p.modalOpen = false }
func (p *Panel) ModalOpen() bool { return p.modalOpen }

// SetModalBounds records where the dialog content is drawn.
func (p *Panel) SetModalBounds(r Rect) { p.modalBounds = r }

// ClickAt closes the dialog when it is open and the click lands outside its
// bounds. It reports whether the dialog was closed.
func (p *Panel) ClickAt(x, y int) bool {
	if !p.modalOpen || p.modalBounds.Contains(x, y) {
		return false
	}
	p.modalOpen = false
	return true
}

// Element returns the rendered value of an element by id. Checkboxes yield
// "checked"/"", the bell yields its class, the dialog "block"/"none".
func (p *Panel) Element(id string) (string, bool) {
	switch id {
	case IDMotor:
		return checked(p.motor), true
	case IDAlarm:
		return checked(p.alarm), true
	case IDAlarmTime:
		return p.alarmTime, true
	case IDTime:
		return p.timeInput, true
	case IDRemainingTime:
		return p.remaining, true
	case IDCurrentTime:
		return p.currentTime, true
	case IDBell:
		return p.BellClass(), true
	case IDSetTimeModal:
		if p.modalOpen {
			return "block", true
		}
		return "none", true
	default:
		return "", false
	}
}

func checked(on bool) string {
	if on {
		return "checked"
	}
	return ""
}
