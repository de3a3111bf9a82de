package models

import "time"

// DeviceState is the simulator's persisted view of the bell device.
type DeviceState struct {
	ID              int         `json:"id"`
	MotorButtonOn   bool        `json:"motor_button_on"`
	AlarmButtonOn   bool        `json:"alarm_button_on"`
	AlarmTime       string      `json:"alarm_time"`
	MotorStatus     MotorStatus `json:"motor_status"`
	StatusChangedAt time.Time   `json:"status_changed_at"`
	Ringing         bool        `json:"ringing"`                 // running because the alarm fired
	LastFiredOn     string      `json:"last_fired_on,omitempty"` // YYYY-MM-DD
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Status projects the state onto the gateway frame.
func (s DeviceState) Status() DeviceStatus {
	return DeviceStatus{
		MotorButtonOn: s.MotorButtonOn,
		AlarmButtonOn: s.AlarmButtonOn,
		AlarmTime:     s.AlarmTime,
		MotorStatus:   s.MotorStatus,
	}
}
