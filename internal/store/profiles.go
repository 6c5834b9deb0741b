package store

import (
	"encoding/json"
	"fmt"

	"github.com/iburimskiy/lifequest/internal/progress"
	"github.com/iburimskiy/lifequest/internal/quest"
)

// Key layout shared with earlier releases of the app.
const (
	activeUserKey = "lifequest_active_user"
	statsPrefix   = "lifequest_stats_"
	historyPrefix = "lifequest_history_"
)

// Profile is everything saved for one signature.
type Profile struct {
	Signature string
	Stats     progress.Stats
	Quests    []quest.Quest
}

// Profiles reads and writes player profiles over a KV.
type Profiles struct {
	kv KV
}

// NewProfiles wraps kv.
func NewProfiles(kv KV) *Profiles {
	return &Profiles{kv: kv}
}

// Load returns the saved profile for signature, or a fresh one when
// nothing has been saved yet.
func (p *Profiles) Load(signature string) (Profile, error) {
	prof := Profile{Signature: signature, Stats: progress.Initial(), Quests: []quest.Quest{}}

	raw, ok, err := p.kv.Get(statsPrefix + signature)
	if err != nil {
		return Profile{}, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &prof.Stats); err != nil {
			return Profile{}, fmt.Errorf("decode stats for %q: %w", signature, err)
		}
	}

	raw, ok, err = p.kv.Get(historyPrefix + signature)
	if err != nil {
		return Profile{}, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &prof.Quests); err != nil {
			return Profile{}, fmt.Errorf("decode history for %q: %w", signature, err)
		}
	}
	return prof, nil
}

// Save writes stats and history for prof.Signature.
func (p *Profiles) Save(prof Profile) error {
	if prof.Quests == nil {
		prof.Quests = []quest.Quest{}
	}
	stats, err := json.Marshal(prof.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	history, err := json.Marshal(prof.Quests)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := p.kv.Set(statsPrefix+prof.Signature, string(stats)); err != nil {
		return err
	}
	return p.kv.Set(historyPrefix+prof.Signature, string(history))
}

// ActiveUser returns the signature of the logged in user, if any.
func (p *Profiles) ActiveUser() (string, bool, error) {
	return p.kv.Get(activeUserKey)
}

// SetActiveUser marks signature as logged in.
func (p *Profiles) SetActiveUser(signature string) error {
	return p.kv.Set(activeUserKey, signature)
}

// ClearActiveUser logs out without touching saved profiles.
func (p *Profiles) ClearActiveUser() error {
	return p.kv.Delete(activeUserKey)
}

// Wipe erases every stored key.
func (p *Profiles) Wipe() error {
	return p.kv.Clear()
}
