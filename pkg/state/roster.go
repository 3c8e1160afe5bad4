package state

import (
	"github.com/samber/lo"

	"github.com/sunmobiir/meetsync/pkg/wire"
)

// RosterView is the participant slice of the session state. The roster's
// order is deterministic (sorted by id); display orderings such as
// raised-hand-first are the UI's concern.
type RosterView struct {
	s *Store
}

// Roster returns the roster view.
func (s *Store) Roster() RosterView {
	return RosterView{s: s}
}

// Participants returns a copy of the roster.
func (v RosterView) Participants() []wire.Participant {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]wire.Participant, len(v.s.roster))
	copy(out, v.s.roster)
	return out
}

// ByID looks a participant up by id.
func (v RosterView) ByID(id string) (wire.Participant, bool) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for i := range v.s.roster {
		if v.s.roster[i].ID == id {
			return v.s.roster[i], true
		}
	}
	return wire.Participant{}, false
}

// ByRole returns participants with the given role.
func (v RosterView) ByRole(role wire.Role) []wire.Participant {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return lo.Filter(v.s.roster, func(p wire.Participant, _ int) bool {
		return p.Role == role
	})
}

// Visible returns participants not flagged hidden.
func (v RosterView) Visible() []wire.Participant {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return lo.Filter(v.s.roster, func(p wire.Participant, _ int) bool {
		return !p.Hidden
	})
}

// Current returns the participant this client is joined as, if known.
func (v RosterView) Current() (wire.Participant, bool) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if v.s.current == nil {
		return wire.Participant{}, false
	}
	return *v.s.current, true
}

// SetCurrent records the participant this client is joined as.
func (v RosterView) SetCurrent(p wire.Participant) {
	v.s.mu.Lock()
	cp := p
	v.s.current = &cp
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeRoster})
}

// Add appends a participant to the roster.
func (v RosterView) Add(p wire.Participant) {
	v.s.mu.Lock()
	v.s.roster = append(v.s.roster, p)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeRoster})
}

// Remove drops a participant from the roster.
func (v RosterView) Remove(id string) error {
	v.s.mu.Lock()
	idx := v.s.participantIndex(id)
	if idx < 0 {
		v.s.mu.Unlock()
		return ErrUnknownParticipant
	}
	v.s.roster = append(v.s.roster[:idx:idx], v.s.roster[idx+1:]...)
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeRoster})
	return nil
}

// ToggleRaiseHand flips a participant's raise-hand flag. The change is
// optimistic; the next authoritative snapshot confirms or reverts it.
func (v RosterView) ToggleRaiseHand(id string) error {
	return v.patch(id, func(p *wire.Participant) {
		p.RaiseHand = !p.RaiseHand
	})
}

// UpdatePermission replaces a participant's whole permission object.
// There is no granular patch on the wire; hosts always send the full set.
func (v RosterView) UpdatePermission(id string, perm wire.Permission) error {
	return v.patch(id, func(p *wire.Participant) {
		p.Permission = perm
	})
}

// SetRole changes a participant's role.
func (v RosterView) SetRole(id string, role wire.Role) error {
	return v.patch(id, func(p *wire.Participant) {
		p.Role = role
	})
}

// ToggleHidden flips a participant's visibility flag.
func (v RosterView) ToggleHidden(id string) error {
	return v.patch(id, func(p *wire.Participant) {
		p.Hidden = !p.Hidden
	})
}

// patch applies fn to a copy of the identified participant and writes the
// copy back, so no caller ever aliases a roster element.
func (v RosterView) patch(id string, fn func(*wire.Participant)) error {
	v.s.mu.Lock()
	idx := v.s.participantIndex(id)
	if idx < 0 {
		v.s.mu.Unlock()
		return ErrUnknownParticipant
	}
	p := v.s.roster[idx]
	fn(&p)
	v.s.roster[idx] = p
	if v.s.current != nil && v.s.current.ID == id {
		cp := p
		v.s.current = &cp
	}
	v.s.mu.Unlock()

	v.s.notify(Change{Kind: ChangeRoster})
	return nil
}

// participantIndex must be called with the store lock held.
func (s *Store) participantIndex(id string) int {
	for i := range s.roster {
		if s.roster[i].ID == id {
			return i
		}
	}
	return -1
}
