// Package handrank picks the best five-card poker hand from two hole cards
// and up to five community cards, and scores it with a total ordering.
package handrank

import (
	"math"
	"sort"

	"pokerroom-server/pkg/deck"
)

// Result is the outcome of evaluating a hand.
// For any two results, a greater Score is a better hand; equal Scores tie.
type Result struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// Beats returns true if r outranks other
func (r Result) Beats(other Result) bool {
	return r.Score > other.Score
}

// Evaluate returns the best five-card hand from the hole and board cards.
// If fewer than five cards are available, the result is Incomplete with a
// zero score.
func Evaluate(hole []*deck.Card, board []*deck.Card) Result {
	cards := make([]*deck.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)

	if len(cards) < 5 {
		return Result{Category: Incomplete, Score: 0}
	}

	var best Result
	combo := make([]*deck.Card, 5)
	pickFive(cards, combo, 0, 0, func() {
		if r := rankFive(combo); r.Score > best.Score {
			best = r
		}
	})

	return best
}

// pickFive visits every 5-card combination of cards
func pickFive(cards, combo []*deck.Card, start, depth int, visit func()) {
	if depth == 5 {
		visit()
		return
	}

	for i := start; i <= len(cards)-(5-depth); i++ {
		combo[depth] = cards[i]
		pickFive(cards, combo, i+1, depth+1, visit)
	}
}

// rankFive scores exactly five cards
func rankFive(cards []*deck.Card) Result {
	ranks := make([]int, 5)
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	isFlush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			isFlush = false
			break
		}
	}

	straightHigh := straightHighCard(ranks)

	if isFlush && straightHigh > 0 {
		if straightHigh == deck.Ace {
			return Result{Category: RoyalFlush, Score: score(RoyalFlush, nil)}
		}

		return Result{Category: StraightFlush, Score: score(StraightFlush, []int{straightHigh})}
	}

	// group ranks by count, the groups sorted by count then rank
	groups := groupRanks(ranks)

	switch {
	case groups[0].count == 4:
		return Result{Category: Quads, Score: score(Quads, []int{groups[0].rank, groups[1].rank})}
	case groups[0].count == 3 && groups[1].count == 2:
		return Result{Category: FullHouse, Score: score(FullHouse, []int{groups[0].rank, groups[1].rank})}
	case isFlush:
		return Result{Category: Flush, Score: score(Flush, ranks)}
	case straightHigh > 0:
		return Result{Category: Straight, Score: score(Straight, []int{straightHigh})}
	case groups[0].count == 3:
		return Result{Category: Trips, Score: score(Trips, []int{groups[0].rank, groups[1].rank, groups[2].rank})}
	case groups[0].count == 2 && groups[1].count == 2:
		return Result{Category: TwoPair, Score: score(TwoPair, []int{groups[0].rank, groups[1].rank, groups[2].rank})}
	case groups[0].count == 2:
		return Result{Category: Pair, Score: score(Pair, []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank})}
	}

	return Result{Category: HighCard, Score: score(HighCard, ranks)}
}

// straightHighCard returns the high card of a straight formed by the five
// descending ranks, or 0 if they do not form one. The wheel A-2-3-4-5 is a
// 5-high straight.
func straightHighCard(ranks []int) int {
	run := true
	for i := 1; i < 5; i++ {
		if ranks[i] != ranks[i-1]-1 {
			run = false
			break
		}
	}

	if run {
		return ranks[0]
	}

	// the wheel: A,5,4,3,2 once sorted descending
	if ranks[0] == deck.Ace && ranks[1] == 5 && ranks[2] == 4 && ranks[3] == 3 && ranks[4] == 2 {
		return 5
	}

	return 0
}

type rankGroup struct {
	rank  int
	count int
}

// groupRanks buckets the descending ranks by count.
// Groups are ordered by count descending, then rank descending, so the
// deciding group always comes first and kickers follow in order.
func groupRanks(ranks []int) []rankGroup {
	groups := make([]rankGroup, 0, 5)
	for _, r := range ranks {
		if n := len(groups); n > 0 && groups[n-1].rank == r {
			groups[n-1].count++
			continue
		}

		groups = append(groups, rankGroup{rank: r, count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}

		return groups[i].rank > groups[j].rank
	})

	return groups
}

// score encodes a category and up to five tie-breaker ranks into a single
// integer. Base 15 keeps each rank in its own digit so the natural integer
// order matches hand order.
func score(category Category, tiebreaks []int) int {
	fiveCards := make([]int, 5)
	copy(fiveCards, tiebreaks)

	strength := math.Pow(15, 5) * float64(category)
	for i := 0; i < 5; i++ {
		val := fiveCards[4-i]
		strength += math.Pow(15, float64(i)) * float64(val)
	}

	return int(strength)
}
