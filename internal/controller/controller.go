// Package controller turns device statuses, the refresh clock and user
// actions into panel updates and outgoing intents.
//
// A Controller is not safe for concurrent use. Every caller funnels its
// events through one loop: the terminal UI's update loop, or Run.
package controller

import (
	"context"
	"errors"
	"time"

	"bellalarm/internal/logger"
	"bellalarm/internal/models"
	"bellalarm/internal/panel"
)

// DefaultRefreshInterval is how often the countdown and clock are redrawn.
const DefaultRefreshInterval = 2 * time.Second

var ErrStreamClosed = errors.New("controller: status stream closed")

// Sender delivers intents to the device.
type Sender interface {
	Send(intent models.UserIntent) error
}

// Controller binds a panel to a device connection.
type Controller struct {
	panel  *panel.Panel
	sender Sender
	now    func() time.Time
	log    *logger.Logger
}

// New builds a controller over p. A nil log discards output.
func New(p *panel.Panel, sender Sender, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{panel: p, sender: sender, now: time.Now, log: log}
}

// Panel exposes the display state for rendering.
func (c *Controller) Panel() *panel.Panel { return c.panel }

// HandleStatus applies a device status to the panel.
func (c *Controller) HandleStatus(st models.DeviceStatus) {
	if err := c.panel.Apply(st); err != nil {
		c.log.Errorw("status_apply_failed", "err", err, "motor_status", int(st.MotorStatus))
	}
}

// ToggleMotor flips the motor checkbox and submits the whole form.
func (c *Controller) ToggleMotor() error {
	c.panel.SetMotor(!c.panel.Motor())
	return c.Submit()
}

// ToggleAlarm flips the alarm checkbox and submits the whole form.
func (c *Controller) ToggleAlarm() error {
	c.panel.SetAlarm(!c.panel.Alarm())
	return c.Submit()
}

func (c *Controller) OpenTimeDialog() { c.panel.OpenModal() }
func (c *Controller) CloseTimeDialog() { c.panel.CloseModal() }

// Click forwards a pointer click; it closes the dialog when outside its bounds.
func (c *Controller) Click(x, y int) {
	if c.panel.ClickAt(x, y) {
		c.log.Debugw("time_dialog_dismissed", "x", x, "y", y)
	}
}

// ConfirmTime stores value in the time input, submits, then closes the dialog.
func (c *Controller) ConfirmTime(value string) error {
	c.panel.SetTimeInput(value)
	err := c.Submit()
	c.panel.CloseModal()
	return err
}

// Submit sends the current values of all three controls. Nothing is queued
// or retried when the device is unreachable.
func (c *Controller) Submit() error {
	intent := c.panel.Intent()
	if err := c.sender.Send(intent); err != nil {
		c.log.Warnw("intent_send_failed", "err", err,
			"motor", intent.MotorButtonOn, "alarm", intent.AlarmButtonOn, "alarm_time", intent.AlarmTime)
		return err
	}
	c.log.Debugw("intent_sent",
		"motor", intent.MotorButtonOn, "alarm", intent.AlarmButtonOn, "alarm_time", intent.AlarmTime)
	return nil
}

// Refresh redraws the countdown and the clock for the current time.
func (c *Controller) Refresh() {
	c.panel.Refresh(c.now())
}

// Run is the headless event loop: it refreshes once, then serializes inbound
// statuses and the refresh ticker until ctx ends or statuses is closed.
// After every change it calls render, when non-nil.
func (c *Controller) Run(ctx context.Context, statuses <-chan models.DeviceStatus, interval time.Duration, render func(*panel.Panel)) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	draw := func() {
		if render != nil {
			render(c.panel)
		}
	}

	c.Refresh()
	draw()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-statuses:
			if !ok {
				return ErrStreamClosed
			}
			c.HandleStatus(st)
			draw()
		case <-t.C:
			c.Refresh()
			draw()
		}
	}
}
