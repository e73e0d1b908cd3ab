package game

import (
	"fmt"
	"math"
)

// MaxProgress is the amount of raw progress that flips ownership.
const MaxProgress = 100.0

type ContestKind uint8

const (
	Neutral ContestKind = iota
	Capturing
	Contested
)

func (k ContestKind) String() string {
	switch k {
	case Neutral:
		return "neutral"
	case Capturing:
		return "capturing"
	case Contested:
		return "contested"
	default:
		return fmt.Sprintf("contest(%d)", uint8(k))
	}
}

// ContestState is Neutral, Capturing(Team) or Contested. Team is only
// meaningful while capturing.
type ContestState struct {
	Kind ContestKind
	Team TeamID
}

func (c ContestState) String() string {
	if c.Kind == Capturing {
		return fmt.Sprintf("capturing(%d)", c.Team)
	}
	return c.Kind.String()
}

// ObjectiveState tracks one contested zone.
type ObjectiveState struct {
	Index   int
	Owner   TeamID
	Contest ContestState
	// RawProgress is authoritative and always within [0, MaxProgress].
	RawProgress float64
	// SmoothedProgress trails RawProgress for display and is never read
	// by ownership logic.
	SmoothedProgress float64
	OccupantCount    int

	occupants map[Key]TeamID
}

func NewObjectiveState(index int) *ObjectiveState {
	return &ObjectiveState{
		Index:     index,
		Owner:     NoTeam,
		Contest:   ContestState{Kind: Neutral, Team: NoTeam},
		occupants: map[Key]TeamID{},
	}
}

// Reset clears ownership and progress. Occupancy reflects who is standing
// in the zone and survives.
func (o *ObjectiveState) Reset() {
	o.Owner = NoTeam
	o.RawProgress = 0
	o.SmoothedProgress = 0
	o.refresh()
}

// Clear forgets every occupant as well.
func (o *ObjectiveState) Clear() {
	o.occupants = map[Key]TeamID{}
	o.Reset()
}

// Enter records a participant inside the zone's trigger volume.
func (o *ObjectiveState) Enter(key Key, team TeamID) {
	if team == NoTeam {
		return
	}
	if o.occupants == nil {
		o.occupants = map[Key]TeamID{}
	}
	o.occupants[key] = team
	o.refresh()
}

// Leave removes a participant from the zone. Leaving a zone one is not in
// is a no-op.
func (o *ObjectiveState) Leave(key Key) {
	if _, ok := o.occupants[key]; !ok {
		return
	}
	delete(o.occupants, key)
	o.refresh()
}

// Occupying reports whether the participant is inside the zone.
func (o *ObjectiveState) Occupying(key Key) bool {
	_, ok := o.occupants[key]
	return ok
}

func (o *ObjectiveState) refresh() {
	teams := map[TeamID]struct{}{}
	var only TeamID = NoTeam
	for _, team := range o.occupants {
		teams[team] = struct{}{}
		only = team
	}

	next := ContestState{Kind: Neutral, Team: NoTeam}
	switch len(teams) {
	case 0:
	case 1:
		next = ContestState{Kind: Capturing, Team: only}
	default:
		next = ContestState{Kind: Contested, Team: NoTeam}
	}

	if next != o.Contest {
		o.RawProgress = 0
	}
	o.Contest = next
	o.OccupantCount = len(o.occupants)
}

// CaptureRate is the progress gained per second. Every occupant beyond the
// first compounds the multiplier once more.
func CaptureRate(baseSpeed, multiplier float64, occupants int) float64 {
	if occupants <= 0 {
		return 0
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	return baseSpeed * math.Pow(multiplier, float64(occupants-1))
}

// Advance accumulates capture progress for dt seconds and reports whether
// the zone changed hands.
func (o *ObjectiveState) Advance(dt, baseSpeed, multiplier float64) bool {
	if o.Contest.Kind != Capturing || o.Owner == o.Contest.Team {
		o.RawProgress = 0
		return false
	}

	o.RawProgress += dt * CaptureRate(baseSpeed, multiplier, o.OccupantCount)
	if o.RawProgress < MaxProgress {
		return false
	}

	o.Owner = o.Contest.Team
	o.RawProgress = 0
	return true
}

// Smooth moves SmoothedProgress towards RawProgress. It runs on every
// peer, authority or not.
func (o *ObjectiveState) Smooth(dt, rate float64) {
	if rate <= 0 {
		o.SmoothedProgress = o.RawProgress
		return
	}
	o.SmoothedProgress += (o.RawProgress - o.SmoothedProgress) * (1 - math.Exp(-rate*dt))
}
