package gamemode

import (
	"strings"
)

type ID int32

const Unknown ID = -1

const (
	KillRace ID = iota
	TeamScore
	Progression
	Domination
)

func (gm ID) String() string {
	switch gm {
	case KillRace:
		return "kill race"
	case TeamScore:
		return "team score"
	case Progression:
		return "progression"
	case Domination:
		return "domination"
	default:
		return "unknown"
	}
}

func Parse(s string) ID {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ffa", "dm", "deathmatch", "kill race", "killrace", "kill-race":
		return KillRace
	case "tdm", "team deathmatch", "team score", "teamscore", "team-score":
		return TeamScore
	case "gg", "gun game", "gungame", "progression", "progression race":
		return Progression
	case "dom", "domination", "flags":
		return Domination
	default:
		return Unknown
	}
}

func Valid(gm ID) bool {
	switch gm {
	case KillRace, TeamScore, Progression, Domination:
		return true
	default:
		return false
	}
}

// IsTeamMode reports whether participants of the mode are split into teams.
func IsTeamMode(gm ID) bool {
	switch gm {
	case TeamScore, Domination:
		return true
	default:
		return false
	}
}

func HasObjectives(gm ID) bool {
	return gm == Domination
}
