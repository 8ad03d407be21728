package weather

import (
	"fmt"
	"strings"
)

// AlertResponse is a button on the permission alert.
type AlertResponse int

const (
	AlertCancel AlertResponse = iota
	AlertOpenSettings
)

func (r AlertResponse) String() string {
	if r == AlertOpenSettings {
		return "open-settings"
	}
	return "cancel"
}

func (r AlertResponse) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseAlertResponse accepts "cancel" and "open-settings".
func ParseAlertResponse(s string) (AlertResponse, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cancel":
		return AlertCancel, nil
	case "open-settings", "opensettings":
		return AlertOpenSettings, nil
	}
	return AlertCancel, fmt.Errorf("unknown alert response %q", s)
}

// ButtonRole mirrors platform alert roles.
type ButtonRole string

const (
	RoleDefault ButtonRole = "default"
	RoleCancel  ButtonRole = "cancel"
)

// AlertButton is one choice offered by an alert.
type AlertButton struct {
	Title    string        `json:"title"`
	Role     ButtonRole    `json:"role"`
	Response AlertResponse `json:"response"`
}

// AlertRequest is a two-button prompt shown after permission is refused.
type AlertRequest struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Buttons []AlertButton `json:"buttons"`
}

const settingsHint = "Please enable location permissions in Settings to use weather features."

func newPermissionAlert(title string) *AlertRequest {
	return &AlertRequest{
		Title:   title,
		Message: settingsHint,
		Buttons: []AlertButton{
			{Title: "Cancel", Role: RoleCancel, Response: AlertCancel},
			{Title: "Open Settings", Role: RoleDefault, Response: AlertOpenSettings},
		},
	}
}
