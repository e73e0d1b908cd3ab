package gameserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/geom"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

const DefaultTickRate = 30

var ErrUnknownLevel = errors.New("unknown level")

type SpawnConfig struct {
	Name     string     `yaml:"name"`
	Group    string     `yaml:"group"`
	Position [3]float64 `yaml:"position"`
	Modes    []string   `yaml:"modes"`
}

type LevelConfig struct {
	Name   string        `yaml:"name"`
	Spawns []SpawnConfig `yaml:"spawns"`
}

type Config struct {
	// TickRate is the number of simulation frames per second.
	TickRate int `yaml:"tickRate"`
	// MinSpawnDistance keeps spawns away from living enemies. Zero accepts
	// every candidate.
	MinSpawnDistance float64       `yaml:"minSpawnDistance"`
	Level            string        `yaml:"level"`
	Levels           []LevelConfig `yaml:"levels"`
	Match            game.Config   `yaml:"match"`
}

func (c *Config) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// SpawnPoints returns freshly built spawn candidates for a level.
func (c *Config) SpawnPoints(level string) ([]*game.SpawnPoint, error) {
	for _, l := range c.Levels {
		if l.Name != level {
			continue
		}

		points := make([]*game.SpawnPoint, 0, len(l.Spawns))
		for _, spawn := range l.Spawns {
			point := &game.SpawnPoint{
				Name:     spawn.Name,
				Group:    spawn.Group,
				Position: geom.NewVector(spawn.Position[0], spawn.Position[1], spawn.Position[2]),
			}
			for _, mode := range spawn.Modes {
				id := gamemode.Parse(mode)
				if !gamemode.Valid(id) {
					return nil, fmt.Errorf("spawn %s on level %s: unknown mode %q", spawn.Name, level, mode)
				}
				point.Modes = append(point.Modes, id)
			}
			points = append(points, point)
		}
		return points, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, level)
}
