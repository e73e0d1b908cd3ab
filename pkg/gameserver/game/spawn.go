package game

import (
	"errors"
	"fmt"
	"math/rand"

	fp "github.com/repeale/fp-go"
	"github.com/rs/zerolog/log"

	"github.com/arbiterfps/arbiter/pkg/gameserver/geom"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

// MaxSpawnAttempts bounds the random draws made from a single group.
const MaxSpawnAttempts = 10

// Well known spawn groups. Team starts are "team<N>" and objective areas
// "flag<N>".
const (
	GroupInitial  = "initial"
	GroupGameplay = "gameplay"
	GroupFallback = "fallback"
)

var ErrNoSpawnPoints = errors.New("no spawn points for mode")

func FlagGroup(index int) string {
	return fmt.Sprintf("flag%d", index)
}

// SpawnPoint is a level authored spawn candidate.
type SpawnPoint struct {
	Name     string
	Position *geom.Vector
	Group    string
	// Modes restricts the point to some modes; empty means every mode.
	Modes []gamemode.ID
}

func (p *SpawnPoint) AppliesTo(mode gamemode.ID) bool {
	if len(p.Modes) == 0 {
		return true
	}
	for _, m := range p.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// SpawnValidator decides whether a candidate is currently usable, e.g. not
// blocked and out of enemy sight.
type SpawnValidator interface {
	IsValid(candidate *SpawnPoint, requester PlayerView) bool
}

type SpawnValidatorFunc func(*SpawnPoint, PlayerView) bool

func (f SpawnValidatorFunc) IsValid(candidate *SpawnPoint, requester PlayerView) bool {
	return f(candidate, requester)
}

type spawnGroup struct {
	name   string
	points []*SpawnPoint
}

// SpawnPool partitions spawn candidates into named groups. It is built once
// per match and never changes afterwards.
type SpawnPool struct {
	groups []spawnGroup
	byName map[string]int
}

// BuildSpawnPool keeps the points applicable to the mode and groups them in
// order of first appearance.
func BuildSpawnPool(points []*SpawnPoint, mode gamemode.ID) (*SpawnPool, error) {
	applicable := fp.Filter(func(p *SpawnPoint) bool {
		return p != nil && p.AppliesTo(mode)
	})(points)

	if len(applicable) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoSpawnPoints, mode)
	}

	pool := &SpawnPool{
		byName: map[string]int{},
	}
	for _, point := range applicable {
		index, ok := pool.byName[point.Group]
		if !ok {
			index = len(pool.groups)
			pool.byName[point.Group] = index
			pool.groups = append(pool.groups, spawnGroup{name: point.Group})
		}
		pool.groups[index].points = append(pool.groups[index].points, point)
	}

	return pool, nil
}

func (s *SpawnPool) Groups() []string {
	return fp.Map[spawnGroup, string](func(g spawnGroup) string { return g.name })(s.groups)
}

func (s *SpawnPool) Group(name string) []*SpawnPoint {
	if s == nil {
		return nil
	}
	index, ok := s.byName[name]
	if !ok {
		return nil
	}
	return s.groups[index].points
}

func (s *SpawnPool) Size() (size int) {
	for _, group := range s.groups {
		size += len(group.points)
	}
	return
}

// Covers reports whether at least one of the tiers has points.
func (s *SpawnPool) Covers(tiers []string) bool {
	return fp.Some(func(tier string) bool { return len(s.Group(tier)) > 0 })(tiers)
}

// Allocate tries each group tier in turn, drawing up to MaxSpawnAttempts
// random candidates per tier. It returns nil when nothing validated; the
// caller is expected to try again later.
func (s *SpawnPool) Allocate(tiers []string, requester PlayerView, validator SpawnValidator, rng *rand.Rand) *SpawnPoint {
	for _, tier := range tiers {
		points := s.Group(tier)
		if len(points) == 0 {
			continue
		}

		for attempt := 0; attempt < MaxSpawnAttempts; attempt++ {
			candidate := points[rng.Intn(len(points))]
			if validator == nil || validator.IsValid(candidate, requester) {
				return candidate
			}
		}

		log.Debug().
			Str("group", tier).
			Str("requester", requester.String()).
			Msg("spawn group exhausted")
	}

	return nil
}
