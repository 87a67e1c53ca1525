package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// appliedDateLayouts are tried in order. Values without an offset are read
// as UTC.
var appliedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// appliedDate decodes the appliedDate field of application commands.
type appliedDate struct{ t *time.Time }

func (d *appliedDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("appliedDate: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.t = nil
		return nil
	}
	for _, layout := range appliedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.t = &t
			return nil
		}
	}
	return fmt.Errorf("appliedDate: %q is not a date or datetime", s)
}

// UnmarshalJSON accepts appliedDate with or without a UTC offset.
func (c *CreateJobApplicationCommand) UnmarshalJSON(b []byte) error {
	type plain CreateJobApplicationCommand
	aux := struct {
		*plain
		AppliedDate appliedDate `json:"appliedDate"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.AppliedDate = aux.AppliedDate.t
	return nil
}

// UnmarshalJSON accepts appliedDate with or without a UTC offset.
func (c *UpdateJobApplicationCommand) UnmarshalJSON(b []byte) error {
	type plain UpdateJobApplicationCommand
	aux := struct {
		*plain
		AppliedDate appliedDate `json:"appliedDate"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.AppliedDate = aux.AppliedDate.t
	return nil
}
