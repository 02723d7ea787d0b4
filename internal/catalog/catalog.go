package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Teams a role can belong to. Blue is townsfolk+outsider, red is minion+demon.
const (
	TeamTownsfolk = "townsfolk"
	TeamOutsider  = "outsider"
	TeamMinion    = "minion"
	TeamDemon     = "demon"
)

// TeamDisplayOrder fixes the order teams appear in summaries.
var TeamDisplayOrder = []string{TeamTownsfolk, TeamOutsider, TeamMinion, TeamDemon}

// AttachmentSlot is a named sub-assignment a role requires, e.g. the role
// the Drunk believes they are, or a demon's bluff roles.
type AttachmentSlot struct {
	ID              string   `yaml:"id" json:"id"`
	Label           string   `yaml:"label,omitempty" json:"label,omitempty"`
	Count           int      `yaml:"count,omitempty" json:"count,omitempty"`
	TeamFilter      []string `yaml:"team_filter,omitempty" json:"team_filter,omitempty"`
	AllowDuplicates bool     `yaml:"allow_duplicates,omitempty" json:"allow_duplicates,omitempty"`
	OwnerView       string   `yaml:"owner_view,omitempty" json:"owner_view,omitempty"`
}

// OwnerViewReplacePrimary marks a slot whose first selection is shown to the
// seat's owner as their primary role (the owner must not learn the truth).
const OwnerViewReplacePrimary = "replace_primary"

// SlotCount returns the number of selections the slot requires (default 1).
func (s AttachmentSlot) SlotCount() int {
	if s.Count <= 0 {
		return 1
	}
	return s.Count
}

// AllowsTeam reports whether a role from the given team may fill the slot.
func (s AttachmentSlot) AllowsTeam(team string) bool {
	if len(s.TeamFilter) == 0 {
		return true
	}
	for _, t := range s.TeamFilter {
		if t == team {
			return true
		}
	}
	return false
}

// Role is one playable role in a script.
type Role struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Team        string            `yaml:"team" json:"team"`
	Tags        []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Localized   map[string]string `yaml:"name_localized,omitempty" json:"name_localized,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Slots       []AttachmentSlot  `yaml:"attachment_slots,omitempty" json:"attachment_slots,omitempty"`
}

// Slot looks up an attachment slot definition by id.
func (r *Role) Slot(slotID string) (AttachmentSlot, bool) {
	for _, s := range r.Slots {
		if s.ID == slotID {
			return s, true
		}
	}
	return AttachmentSlot{}, false
}

// Rules are script-level toggles that affect the engine.
type Rules struct {
	StorytellerWinAvailable bool `yaml:"storyteller_win_available" json:"storyteller_win_available"`
}

// Script is an immutable, ordered role list plus the team-count distribution
// table keyed by player count.
type Script struct {
	ID           string                 `yaml:"id" json:"id"`
	Name         string                 `yaml:"name" json:"name"`
	Version      string                 `yaml:"version" json:"version"`
	Roles        []Role                 `yaml:"roles" json:"roles"`
	Distribution map[int]map[string]int `yaml:"team_distribution,omitempty" json:"team_distribution,omitempty"`
	Rules        Rules                  `yaml:"rules" json:"rules"`

	byID map[string]*Role
}

func (s *Script) index() {
	s.byID = make(map[string]*Role, len(s.Roles))
	for i := range s.Roles {
		s.byID[s.Roles[i].ID] = &s.Roles[i]
	}
}

// Role looks up a role by id.
func (s *Script) Role(id string) (*Role, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// TeamCounts resolves the team-count distribution for a player count.
// Exact match wins; otherwise the largest table key not exceeding the count,
// falling back to the smallest key. With no table at all, the script's own
// role census is used.
func (s *Script) TeamCounts(playerCount int) map[string]int {
	if len(s.Distribution) == 0 {
		counts := make(map[string]int)
		for _, r := range s.Roles {
			counts[r.Team]++
		}
		return counts
	}
	if counts, ok := s.Distribution[playerCount]; ok {
		return cloneCounts(counts)
	}
	keys := make([]int, 0, len(s.Distribution))
	for k := range s.Distribution {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	chosen := keys[0]
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] <= playerCount {
			chosen = keys[i]
			break
		}
	}
	return cloneCounts(s.Distribution[chosen])
}

func cloneCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *Script) validate() error {
	if s.ID == "" {
		return fmt.Errorf("script is missing an id")
	}
	if len(s.Roles) == 0 {
		return fmt.Errorf("script %s has no roles", s.ID)
	}
	seen := make(map[string]bool, len(s.Roles))
	for _, r := range s.Roles {
		if r.ID == "" {
			return fmt.Errorf("script %s: role with empty id", s.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("script %s: duplicate role id %s", s.ID, r.ID)
		}
		seen[r.ID] = true
		for _, slot := range r.Slots {
			if slot.ID == "" {
				return fmt.Errorf("script %s: role %s has an attachment slot with empty id", s.ID, r.ID)
			}
		}
	}
	return nil
}

// NewScript indexes a script definition built in code. Scripts loaded from
// files or the builtin set are indexed by Load.
func NewScript(s Script) *Script {
	s.index()
	return &s
}

// Catalog holds every loaded script.
type Catalog struct {
	scripts   map[string]*Script
	defaultID string
}

// Load builds a catalog from the built-in script plus any *.yaml scripts
// found under dir. dir may be empty. A file script with the same id as the
// built-in one replaces it.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		scripts:   map[string]*Script{},
		defaultID: BuiltinScript.ID,
	}
	builtin := BuiltinScript
	builtin.index()
	c.scripts[builtin.ID] = &builtin

	if dir == "" {
		return c, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading script dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading script %s: %w", path, err)
		}
		var script Script
		if err := yaml.Unmarshal(data, &script); err != nil {
			return nil, fmt.Errorf("parsing script %s: %w", path, err)
		}
		if err := script.validate(); err != nil {
			return nil, fmt.Errorf("script %s: %w", path, err)
		}
		script.index()
		c.scripts[script.ID] = &script
	}
	return c, nil
}

// Script returns a script by id; empty id selects the default script.
func (c *Catalog) Script(id string) (*Script, bool) {
	if id == "" {
		id = c.defaultID
	}
	s, ok := c.scripts[id]
	return s, ok
}

// List returns all scripts ordered by id.
func (c *Catalog) List() []*Script {
	out := make([]*Script, 0, len(c.scripts))
	for _, s := range c.scripts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
