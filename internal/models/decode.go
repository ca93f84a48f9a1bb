package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Model replies are used as they come. Scalars decode loosely: ids and text accept
// strings or numbers, flags accept a bool or null. Collections and objects stay strict.

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = looseString(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*s = looseString(n.String())
	}
	return nil
}

// optionalString keeps null as nil
type optionalString struct {
	value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.value = nil
		return nil
	}
	var s looseString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v := string(s)
	o.value = &v
	return nil
}

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*b = true
	case "false", "null":
		*b = false
	default:
		return fmt.Errorf("expected bool, got %s", data)
	}
	return nil
}

func (t *Todo) UnmarshalJSON(data []byte) error {
	type plain Todo
	aux := struct {
		*plain
		ID        looseString    `json:"id"`
		Text      looseString    `json:"text"`
		Due       optionalString `json:"due"`
		Priority  looseString    `json:"priority"`
		Completed looseBool      `json:"completed"`
		Subject   optionalString `json:"subject"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID = string(aux.ID)
	t.Text = string(aux.Text)
	t.Due = aux.Due.value
	t.Priority = Priority(aux.Priority)
	t.Completed = bool(aux.Completed)
	t.Subject = aux.Subject.value
	return nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	aux := struct {
		*plain
		ID   looseString `json:"id"`
		Name looseString `json:"name"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = string(aux.ID)
	p.Name = string(aux.Name)
	return nil
}

func (s *ProjectStep) UnmarshalJSON(data []byte) error {
	type plain ProjectStep
	aux := struct {
		*plain
		ID        looseString `json:"id"`
		Text      looseString `json:"text"`
		Completed looseBool   `json:"completed"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.ID = string(aux.ID)
	s.Text = string(aux.Text)
	s.Completed = bool(aux.Completed)
	return nil
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		ID        looseString `json:"id"`
		Name      looseString `json:"name"`
		Time      looseString `json:"time"`
		Recurring looseBool   `json:"recurring"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ID = string(aux.ID)
	e.Name = string(aux.Name)
	e.Time = string(aux.Time)
	e.Recurring = bool(aux.Recurring)
	return nil
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	aux := struct {
		*plain
		ID      looseString    `json:"id"`
		Content looseString    `json:"content"`
		Subject optionalString `json:"subject"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ID = string(aux.ID)
	n.Content = string(aux.Content)
	n.Subject = aux.Subject.value
	return nil
}
