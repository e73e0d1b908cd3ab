package replication

import (
	"errors"
	"fmt"
	"time"

	crunch "github.com/superwhiskers/crunch/v3"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

// Version is bumped whenever the field layout below changes.
const Version = 2

const (
	headerSize    = 1 + 1 + 1 + 4 + 4
	trailerSize   = 8 + 4
	objectiveSize = 4 + 1 + 4 + 8 + 4
)

var (
	ErrShortSnapshot     = errors.New("snapshot is truncated")
	ErrMalformedSnapshot = errors.New("snapshot is malformed")
)

type ObjectiveSnapshot struct {
	Owner         game.TeamID
	Contest       game.ContestState
	RawProgress   float64
	OccupantCount int32
}

// Snapshot is the decoded form of one replication frame.
type Snapshot struct {
	Version    uint8
	Mode       gamemode.ID
	Stage      stage.ID
	TimeLeft   float32
	TeamScores []int32
	LastTick   float64
	Objectives []ObjectiveSnapshot
}

func objectivesOf(state game.RuntimeState) []*game.ObjectiveState {
	if s, ok := state.(*game.DominationState); ok {
		return s.Objectives
	}
	return nil
}

// Encode serializes the replicated part of a match, little endian, in a
// fixed order.
func Encode(st stage.ID, timeLeft time.Duration, state game.RuntimeState) []byte {
	scores := state.Scores()
	objectives := objectivesOf(state)

	buf := crunch.NewBuffer()
	buf.Grow(int64(headerSize + 4*len(scores) + trailerSize + objectiveSize*len(objectives)))

	buf.WriteByteNext(Version)
	buf.WriteByteNext(byte(state.Mode()))
	buf.WriteByteNext(byte(st))
	buf.WriteF32LENext([]float32{float32(timeLeft.Seconds())})

	buf.WriteI32LENext([]int32{int32(len(scores))})
	for _, score := range scores {
		buf.WriteI32LENext([]int32{int32(score)})
	}

	buf.WriteF64LENext([]float64{state.Tick()})

	buf.WriteI32LENext([]int32{int32(len(objectives))})
	for _, objective := range objectives {
		buf.WriteI32LENext([]int32{int32(objective.Owner)})
		buf.WriteByteNext(byte(objective.Contest.Kind))
		buf.WriteI32LENext([]int32{int32(objective.Contest.Team)})
		buf.WriteF64LENext([]float64{objective.RawProgress})
		buf.WriteI32LENext([]int32{int32(objective.OccupantCount)})
	}

	return buf.Bytes()
}

// Decode reads a frame produced by Encode. Lengths are checked before
// every variable sized section.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortSnapshot, len(data))
	}

	buf := crunch.NewBuffer(data)
	snapshot := &Snapshot{}

	snapshot.Version = buf.ReadByteNext()
	if snapshot.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrMalformedSnapshot, snapshot.Version)
	}

	snapshot.Mode = gamemode.ID(buf.ReadByteNext())
	snapshot.Stage = stage.ID(buf.ReadByteNext())
	snapshot.TimeLeft = buf.ReadF32LENext(1)[0]

	teams := int(buf.ReadI32LENext(1)[0])
	if teams < 0 || teams > game.MaxTeams {
		return nil, fmt.Errorf("%w: %d teams", ErrMalformedSnapshot, teams)
	}

	offset := headerSize + 4*teams + trailerSize
	if len(data) < offset {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortSnapshot, len(data))
	}

	if teams > 0 {
		snapshot.TeamScores = buf.ReadI32LENext(int64(teams))
	}
	snapshot.LastTick = buf.ReadF64LENext(1)[0]

	count := int(buf.ReadI32LENext(1)[0])
	if count < 0 {
		return nil, fmt.Errorf("%w: %d objectives", ErrMalformedSnapshot, count)
	}
	if len(data) < offset+objectiveSize*count {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortSnapshot, len(data))
	}

	snapshot.Objectives = make([]ObjectiveSnapshot, count)
	for i := range snapshot.Objectives {
		objective := &snapshot.Objectives[i]
		objective.Owner = game.TeamID(buf.ReadI32LENext(1)[0])
		objective.Contest.Kind = game.ContestKind(buf.ReadByteNext())
		objective.Contest.Team = game.TeamID(buf.ReadI32LENext(1)[0])
		objective.RawProgress = buf.ReadF64LENext(1)[0]
		objective.OccupantCount = buf.ReadI32LENext(1)[0]
	}

	return snapshot, nil
}
