package game

// SceneControl loads levels and drives the between-match UI. Calls are fire
// and forget.
type SceneControl interface {
	ReloadLevel(name string)
	OpenVotingUI(candidates []string)
	DespawnAll()
}

type Announcer interface {
	AnnounceWinner(outcome Outcome, scores []int)
}

// BotNotifier lets bot controllers react to objective changes.
type BotNotifier interface {
	OnObjectiveCaptured(index int, owner TeamID)
}

// Collaborators groups everything the Machine calls out to. Nil members are
// replaced with no-ops.
type Collaborators struct {
	Validator SpawnValidator
	Roster    Roster
	Scene     SceneControl
	Announcer Announcer
	Bots      BotNotifier
}

type nopScene struct{}

func (nopScene) ReloadLevel(string)    {}
func (nopScene) OpenVotingUI([]string) {}
func (nopScene) DespawnAll()           {}

type nopAnnouncer struct{}

func (nopAnnouncer) AnnounceWinner(Outcome, []int) {}

type nopBots struct{}

func (nopBots) OnObjectiveCaptured(int, TeamID) {}

type emptyRoster struct{}

func (emptyRoster) Humans() []Human { return nil }
func (emptyRoster) Bots() []Bot     { return nil }

func (c Collaborators) withDefaults() Collaborators {
	if c.Validator == nil {
		c.Validator = SpawnValidatorFunc(func(*SpawnPoint, PlayerView) bool { return true })
	}
	if c.Roster == nil {
		c.Roster = emptyRoster{}
	}
	if c.Scene == nil {
		c.Scene = nopScene{}
	}
	if c.Announcer == nil {
		c.Announcer = nopAnnouncer{}
	}
	if c.Bots == nil {
		c.Bots = nopBots{}
	}
	return c
}
