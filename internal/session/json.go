package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON writes the persisted session format: an object keyed by
// channel in registration order, each value an array of
// [timestamp, arg0, arg1, ...] rows.
func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ch)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		rows := make([][]string, len(s.events[ch]))
		for j, e := range s.events[ch] {
			row := make([]string, 0, len(e.Args)+1)
			row = append(row, FormatTime(e.CapturedAt))
			row = append(row, e.Args...)
			rows[j] = row
		}
		val, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the persisted session format. Channels are
// registered in document key order.
func (s *Session) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("session must be a JSON object, got %v", tok)
	}

	loaded := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading session channel: %w", err)
		}
		channel, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected session key %v", tok)
		}

		var rows [][]string
		if err := dec.Decode(&rows); err != nil {
			return fmt.Errorf("decoding events for %s: %w", channel, err)
		}

		loaded.Register(channel)
		for i, row := range rows {
			if len(row) == 0 {
				return fmt.Errorf("event %d on %s has no timestamp", i, channel)
			}
			at, err := ParseTime(row[0])
			if err != nil {
				return fmt.Errorf("event %d on %s: %w", i, channel, err)
			}
			loaded.Append(Event{CapturedAt: at, Channel: channel, Args: row[1:]})
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading session end: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = loaded.order
	s.events = loaded.events
	return nil
}

// WriteJSON writes s to w followed by a newline.
func (s *Session) WriteJSON(w io.Writer) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadJSON reads a session from r.
func ReadJSON(r io.Reader) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := New()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}
