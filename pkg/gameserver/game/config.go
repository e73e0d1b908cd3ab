package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/timer"
)

// MaxTeams caps the length of every team score vector.
const MaxTeams = 4

const (
	DefaultPollSeconds  = 1.0
	DefaultScoreSeconds = 5.0
	DefaultPostGame     = 10.0
)

var ErrInvalidConfig = errors.New("invalid match config")

type KillRaceConfig struct {
	KillLimit   int     `yaml:"killLimit"`
	PollSeconds float64 `yaml:"pollSeconds"`
}

type TeamScoreConfig struct {
	Teams      int `yaml:"teams"`
	PointLimit int `yaml:"pointLimit"`
}

type ProgressionConfig struct {
	// Order lists the ladder rungs, e.g. weapons, from first to last.
	Order       []string `yaml:"order"`
	PollSeconds float64  `yaml:"pollSeconds"`
}

type DominationConfig struct {
	Teams              int     `yaml:"teams"`
	Flags              int     `yaml:"flags"`
	BaseCaptureSpeed   float64 `yaml:"baseCaptureSpeed"`
	OccupantMultiplier float64 `yaml:"occupantMultiplier"`
	ScoreSeconds       float64 `yaml:"scoreSeconds"`
	PointsPerFlag      int     `yaml:"pointsPerFlag"`
	PointLimit         int     `yaml:"pointLimit"`
	// Smoothing is the rate of the presentation filter, per second.
	Smoothing float64 `yaml:"smoothing"`
}

type Config struct {
	Mode              string  `yaml:"mode"`
	Capacity          int     `yaml:"capacity"`
	MaxTeamDifference int     `yaml:"maxTeamDifference"`
	PreGameSeconds    float64 `yaml:"preGameSeconds"`
	MatchSeconds      float64 `yaml:"matchSeconds"`
	PostGameSeconds   float64 `yaml:"postGameSeconds"`
	VotingSeconds     float64 `yaml:"votingSeconds"`
	// Lobby matches skip voting and return to Hub after the post game.
	Lobby bool   `yaml:"lobby"`
	Hub   string `yaml:"hub"`
	// Rotation lists the levels offered in the vote.
	Rotation []string `yaml:"rotation"`

	KillRace    KillRaceConfig    `yaml:"killRace"`
	TeamScore   TeamScoreConfig   `yaml:"teamScore"`
	Progression ProgressionConfig `yaml:"progression"`
	Domination  DominationConfig  `yaml:"domination"`
}

func (c *Config) ModeID() gamemode.ID {
	return gamemode.Parse(c.Mode)
}

func (c *Config) PreGame() time.Duration { return timer.Seconds(c.PreGameSeconds) }
func (c *Config) Match() time.Duration   { return timer.Seconds(c.MatchSeconds) }
func (c *Config) Voting() time.Duration  { return timer.Seconds(c.VotingSeconds) }
func (c *Config) PostGame() time.Duration {
	if c.PostGameSeconds <= 0 {
		return timer.Seconds(DefaultPostGame)
	}
	return timer.Seconds(c.PostGameSeconds)
}

func clampTeams(n int) int {
	if n < 2 {
		return 2
	}
	if n > MaxTeams {
		return MaxTeams
	}
	return n
}

func orDefault(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}

// Validate checks the parts of the config the selected mode depends on.
func (c *Config) Validate() error {
	mode := c.ModeID()
	if !gamemode.Valid(mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}

	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	}

	if c.MatchSeconds <= 0 {
		return fmt.Errorf("%w: matchSeconds must be positive", ErrInvalidConfig)
	}

	switch mode {
	case gamemode.KillRace:
		if c.KillRace.KillLimit <= 0 {
			return fmt.Errorf("%w: killRace.killLimit must be positive", ErrInvalidConfig)
		}
	case gamemode.Progression:
		if len(c.Progression.Order) == 0 {
			return fmt.Errorf("%w: progression.order is empty", ErrInvalidConfig)
		}
	case gamemode.Domination:
		if c.Domination.Flags <= 0 {
			return fmt.Errorf("%w: domination.flags must be positive", ErrInvalidConfig)
		}
		if c.Domination.PointLimit <= 0 {
			return fmt.Errorf("%w: domination.pointLimit must be positive", ErrInvalidConfig)
		}
	}

	return nil
}

// NewVariant builds the policy for the configured mode.
func NewVariant(c *Config) (Variant, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.ModeID() {
	case gamemode.KillRace:
		return NewKillRace(c), nil
	case gamemode.TeamScore:
		return NewTeamScore(c), nil
	case gamemode.Progression:
		return NewProgressionRace(c), nil
	case gamemode.Domination:
		return NewDomination(c), nil
	}

	return nil, fmt.Errorf("%w: unsupported mode %q", ErrInvalidConfig, c.Mode)
}
