// https://github.com/kortemy/elo-go
//MIT License

//Copyright (c) 2017 Dusan Lilic

//Permission is hereby granted, free of charge, to any person obtaining a copy
//of this software and associated documentation files (the "Software"), to deal
//in the Software without restriction, including without limitation the rights
//to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
//copies of the Software, and to permit persons to whom the Software is
//furnished to do so, subject to the following conditions:

//The above copyright notice and this permission notice shall be included in all
//copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
package mmr

import (
	"fmt"
	"math"
)

const (
	// K is the default K-Factor
	K = 32
	// D is the default deviation
	D = 400
	// Initial is the rating of a participant without history.
	Initial = 1500
)

// Elo rates participants of a finished match. K bounds how far one match
// can move a rating.
type Elo struct {
	K int
	D int
}

// Outcome is the rating change of one participant.
type Outcome struct {
	Delta  int
	Rating int
}

func (o Outcome) String() string {
	return fmt.Sprintf("%d (%+d)", o.Rating, o.Delta)
}

// New uses the default deviation and k, or K when k is not positive.
func New(k int) *Elo {
	if k <= 0 {
		k = K
	}
	return &Elo{K: k, D: D}
}

// expected is the chance that a rating of a beats a rating of b.
func (e *Elo) expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/float64(e.D)))
}

func (e *Elo) delta(a, b int, score float64) float64 {
	return float64(e.K) * (score - e.expected(a, b))
}

// Versus rates a against a single opponent. score is 1 for a win, 0.5 for
// a draw and 0 for a loss.
func (e *Elo) Versus(a, b int, score float64) Outcome {
	delta := int(e.delta(a, b, score))
	return Outcome{Delta: delta, Rating: a + delta}
}
