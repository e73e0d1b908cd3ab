package game

import (
	"fmt"

	fp "github.com/repeale/fp-go"
)

// Custom property keys carried by human participants.
const (
	PropertyKills = "kills"
	PropertyTeam  = "team"
)

// A Human is a connected player as described by the room: an identity plus
// whatever custom properties the client published.
type Human struct {
	ID         int
	Properties map[string]interface{}
}

type Bot struct {
	ID     int
	Team   TeamID
	Kills  int
	Deaths int
}

// Roster enumerates everyone taking part in the match.
type Roster interface {
	Humans() []Human
	Bots() []Bot
}

// Key identifies a participant. Human and bot IDs come from different
// sources and may collide, so the source is part of the identity.
type Key struct {
	ID    int
	IsBot bool
}

func (k Key) String() string {
	if k.IsBot {
		return fmt.Sprintf("bot:%d", k.ID)
	}
	return fmt.Sprintf("player:%d", k.ID)
}

// PlayerView is a read-only projection of a participant, human or bot.
type PlayerView struct {
	ID    int
	IsBot bool
	Kills int
	Team  TeamID
}

func (v PlayerView) Key() Key {
	return Key{ID: v.ID, IsBot: v.IsBot}
}

func (v PlayerView) String() string {
	return v.Key().String()
}

func intProperty(properties map[string]interface{}, key string) (int, bool) {
	value, ok := properties[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	}
	return 0, false
}

func viewOfHuman(h Human) PlayerView {
	kills, _ := intProperty(h.Properties, PropertyKills)
	team := NoTeam
	if value, ok := intProperty(h.Properties, PropertyTeam); ok {
		team = TeamID(value)
	}
	return PlayerView{
		ID:    h.ID,
		Kills: kills,
		Team:  team,
	}
}

func viewOfBot(b Bot) PlayerView {
	return PlayerView{
		ID:    b.ID,
		IsBot: true,
		Kills: b.Kills,
		Team:  b.Team,
	}
}

// MergeViews projects both rosters into a single list, humans first.
func MergeViews(r Roster) []PlayerView {
	if r == nil {
		return nil
	}

	humans := fp.Map[Human, PlayerView](viewOfHuman)(r.Humans())
	bots := fp.Map[Bot, PlayerView](viewOfBot)(r.Bots())
	return append(humans, bots...)
}

// FindView looks a participant up in an already merged list.
func FindView(views []PlayerView, key Key) (PlayerView, bool) {
	for _, view := range views {
		if view.Key() == key {
			return view, true
		}
	}
	return PlayerView{}, false
}
