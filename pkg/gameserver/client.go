package gameserver

import (
	"fmt"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/geom"
)

// Describes a participant, human or bot.
type Client struct {
	game.Key

	Name     string
	Team     game.TeamID
	Kills    int
	Deaths   int
	Alive    bool
	Position *geom.Vector
	// custom properties published by human clients
	Properties map[string]interface{}
}

func NewClient(key game.Key, name string) *Client {
	return &Client{
		Key:        key,
		Name:       name,
		Team:       game.NoTeam,
		Properties: map[string]interface{}{},
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Key)
}

func (c *Client) View() game.PlayerView {
	return game.PlayerView{
		ID:    c.ID,
		IsBot: c.IsBot,
		Kills: c.Kills,
		Team:  c.Team,
	}
}

func (c *Client) Human() game.Human {
	properties := make(map[string]interface{}, len(c.Properties)+2)
	for key, value := range c.Properties {
		properties[key] = value
	}
	properties[game.PropertyKills] = c.Kills
	properties[game.PropertyTeam] = int(c.Team)

	return game.Human{
		ID:         c.ID,
		Properties: properties,
	}
}

func (c *Client) Bot() game.Bot {
	return game.Bot{
		ID:     c.ID,
		Team:   c.Team,
		Kills:  c.Kills,
		Deaths: c.Deaths,
	}
}

// Die marks the client dead.
func (c *Client) Die() {
	c.Alive = false
	c.Deaths++
}

func (c *Client) Spawn(at *game.SpawnPoint) {
	c.Alive = true
	c.Position = at.Position
}
