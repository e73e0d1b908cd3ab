package game

import (
	"math"
	"math/rand"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

// Variant is one game mode policy. The Machine owns the lifecycle and asks
// the variant for every mode specific decision.
type Variant interface {
	TeamPolicy
	SpawnPolicy
	ID() gamemode.ID
	NewState() RuntimeState
	// Conforms reports whether a state has the shape this variant
	// expects. Anything else gets rebuilt.
	Conforms(RuntimeState) bool
	// Step runs the authority's per frame logic while the match is active
	// and returns true when the match was decided early.
	Step(*Frame) (Outcome, bool)
	// Decide names the result once the match timer runs out.
	Decide(views []PlayerView, state RuntimeState) Outcome
	OnStageChange(from, to stage.ID, state RuntimeState)
	HandleFrag(state RuntimeState, fragger, victim PlayerView)
}

type TeamPolicy interface {
	NumTeams() int
	CanJoinTeam(requester PlayerView, team TeamID, views []PlayerView) bool
	IsEnemy(a, b PlayerView) bool
}

type SpawnPolicy interface {
	// SpawnTiers lists spawn groups in the order they should be tried.
	SpawnTiers(st stage.ID, requester PlayerView, state RuntimeState, rng *rand.Rand) []string
}

// Frame carries everything a variant may touch during one authority step.
type Frame struct {
	// Now is the match clock in seconds, Delta the frame length.
	Now   float64
	Delta float64
	Stage stage.ID
	State RuntimeState
	Bots  BotNotifier

	roster Roster
	views  []PlayerView
}

// Views merges the rosters on first use and reuses the result for the rest
// of the frame.
func (f *Frame) Views() []PlayerView {
	if f.views == nil {
		f.views = MergeViews(f.roster)
		if f.views == nil {
			f.views = []PlayerView{}
		}
	}
	return f.views
}

// due reports whether the frame is the one closest to the next multiple of
// interval after the state's last tick. The recorded tick stays on that grid
// so late frames do not push later ticks back.
func due(f *Frame, interval float64) bool {
	elapsed := f.Now + f.Delta/2 - f.State.Tick()
	if elapsed < interval {
		return false
	}
	f.State.SetTick(f.State.Tick() + interval*math.Floor(elapsed/interval))
	return true
}

// teamless admission: only the room capacity matters
type teamless struct {
	capacity int
}

func (*teamless) NumTeams() int { return 0 }

func (m *teamless) CanJoinTeam(requester PlayerView, team TeamID, views []PlayerView) bool {
	if m.capacity <= 0 {
		return true
	}
	if _, present := FindView(views, requester.Key()); present {
		return true
	}
	return len(views) < m.capacity
}

func (*teamless) IsEnemy(a, b PlayerView) bool {
	return a.Key() != b.Key()
}

func (*teamless) HandleFrag(RuntimeState, PlayerView, PlayerView) {}

// spawns in the "initial" group until the match starts, then in "gameplay"
type freeForAllSpawns struct{}

func (*freeForAllSpawns) SpawnTiers(st stage.ID, _ PlayerView, _ RuntimeState, _ *rand.Rand) []string {
	if st < stage.Active {
		return []string{GroupInitial}
	}
	return []string{GroupGameplay}
}

// spawns at the team's start, falling back to shared points
type teamSpawns struct{}

func (*teamSpawns) SpawnTiers(_ stage.ID, requester PlayerView, _ RuntimeState, _ *rand.Rand) []string {
	return []string{TeamGroup(requester.Team), GroupFallback}
}

// zeroes the runtime state when the match goes live so warmup does not count
type resetOnStart struct{}

func (*resetOnStart) OnStageChange(from, to stage.ID, state RuntimeState) {
	if to == stage.Active {
		state.Reset()
	}
}
