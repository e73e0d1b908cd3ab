package game

import (
	"errors"
	"fmt"

	"github.com/sasha-s/go-deadlock"
)

var ErrInvalidVote = errors.New("invalid vote")

// Ballot collects level votes while the match is in the voting stage. Each
// participant holds one vote; voting again replaces it.
type Ballot struct {
	mutex      deadlock.Mutex
	candidates []string
	votes      map[Key]int
}

func NewBallot(candidates []string) *Ballot {
	return &Ballot{
		candidates: append([]string{}, candidates...),
		votes:      map[Key]int{},
	}
}

func (b *Ballot) Candidates() []string {
	return b.candidates
}

func (b *Ballot) Cast(voter Key, choice int) error {
	if choice < 0 || choice >= len(b.candidates) {
		return fmt.Errorf("%w: choice %d out of range", ErrInvalidVote, choice)
	}

	b.mutex.Lock()
	b.votes[voter] = choice
	b.mutex.Unlock()
	return nil
}

// Counts returns the number of votes per candidate.
func (b *Ballot) Counts() []int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	counts := make([]int, len(b.candidates))
	for _, choice := range b.votes {
		counts[choice]++
	}
	return counts
}

// Tally returns the winning candidate. Ties go to the candidate listed
// first; an empty ballot has no result.
func (b *Ballot) Tally() (string, bool) {
	counts := b.Counts()
	best := -1
	for i, count := range counts {
		if count == 0 {
			continue
		}
		if best == -1 || count > counts[best] {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	return b.candidates[best], true
}
