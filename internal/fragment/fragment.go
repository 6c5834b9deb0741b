// Package fragment packs a player's whole progression into a "soul
// fragment": JSON, base64 encoded, meant to be copied by hand between
// devices.
package fragment

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iburimskiy/lifequest/internal/progress"
	"github.com/iburimskiy/lifequest/internal/quest"
)

// ErrInvalid is returned for any code that does not decode to a complete
// state.
var ErrInvalid = errors.New("fragment: invalid soul fragment")

// State is the portable part of a profile.
type State struct {
	Stats  progress.Stats `json:"stats"`
	Quests []quest.Quest  `json:"quests"`
}

// Encode serializes s into a soul fragment.
func Encode(s State) (string, error) {
	if s.Quests == nil {
		s.Quests = []quest.Quest{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode fragment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a soul fragment. It fails closed: anything short of a
// complete, well formed state yields ErrInvalid.
func Decode(code string) (State, error) {
	code = strings.Join(strings.Fields(code), "")
	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var shape struct {
		Stats  json.RawMessage `json:"stats"`
		Quests json.RawMessage `json:"quests"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if isAbsent(shape.Stats) || isAbsent(shape.Quests) {
		return State{}, fmt.Errorf("%w: stats and quests are required", ErrInvalid)
	}

	var s State
	if err := json.Unmarshal(shape.Stats, &s.Stats); err != nil {
		return State{}, fmt.Errorf("%w: stats: %v", ErrInvalid, err)
	}
	if err := json.Unmarshal(shape.Quests, &s.Quests); err != nil {
		return State{}, fmt.Errorf("%w: quests: %v", ErrInvalid, err)
	}
	if s.Stats.Level < 1 || s.Stats.MaxXP <= 0 || s.Stats.XP < 0 {
		return State{}, fmt.Errorf("%w: malformed stats", ErrInvalid)
	}
	if s.Stats.Title == "" {
		s.Stats.Title = progress.TitleFor(s.Stats.Level)
	}
	return s, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
