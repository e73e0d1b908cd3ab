package gameserver

import (
	"sort"

	"github.com/sasha-s/go-deadlock"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
)

// Roster is the in-memory list of everyone in the match.
type Roster struct {
	mutex   deadlock.RWMutex
	clients map[game.Key]*Client
}

var _ game.Roster = &Roster{}

func NewRoster() *Roster {
	return &Roster{
		clients: map[game.Key]*Client{},
	}
}

func (r *Roster) Add(client *Client) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.clients[client.Key]; ok {
		return false
	}
	r.clients[client.Key] = client
	return true
}

func (r *Roster) Remove(key game.Key) *Client {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	client := r.clients[key]
	delete(r.clients, key)
	return client
}

func (r *Roster) Get(key game.Key) *Client {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.clients[key]
}

func (r *Roster) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.clients)
}

// ForEach visits clients in a stable order: humans first, then by ID.
func (r *Roster) ForEach(do func(c *Client)) {
	r.mutex.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	r.mutex.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		a, b := clients[i], clients[j]
		if a.IsBot != b.IsBot {
			return !a.IsBot
		}
		return a.ID < b.ID
	})

	for _, client := range clients {
		do(client)
	}
}

func (r *Roster) Humans() []game.Human {
	humans := []game.Human{}
	r.ForEach(func(c *Client) {
		if !c.IsBot {
			humans = append(humans, c.Human())
		}
	})
	return humans
}

func (r *Roster) Bots() []game.Bot {
	bots := []game.Bot{}
	r.ForEach(func(c *Client) {
		if c.IsBot {
			bots = append(bots, c.Bot())
		}
	})
	return bots
}

// ResetScores zeroes kills and deaths, e.g. when a match goes live.
func (r *Roster) ResetScores() {
	r.ForEach(func(c *Client) {
		c.Kills = 0
		c.Deaths = 0
	})
}
