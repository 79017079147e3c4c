package scheduling

import (
	"fmt"
	"sort"

	"github.com/courtline/club-scheduler/models"
)

// sortKey selects how a pairing rule orders the roster before drawing.
type sortKey int

const (
	sortNone sortKey = iota
	sortWins
	sortWinsAndDiff
)

// pairingRule is the single configurable strategy behind all round formats.
// The formats differ only in team size, sort key, whether teams are balanced
// by drawing from both ends of the sorted roster, whether teams are built
// from one male/female pair each, and whether the last partial court may
// fall back to a two-player match.
type pairingRule struct {
	teamSize        int
	sortBy          sortKey
	genderBalanced  bool
	balancedDraw    bool
	singlesFallback bool
}

func ruleFor(format models.RoundFormat) (pairingRule, error) {
	switch format {
	case models.RoundDoubles, models.RoundKingOfCourt, models.RoundRoundRobin:
		// King of the court and round robin pair exactly like doubles; their
		// rotation semantics live in how the caller orders the roster.
		return pairingRule{teamSize: 2, sortBy: sortWinsAndDiff, balancedDraw: true}, nil
	case models.RoundSingles:
		return pairingRule{teamSize: 1, sortBy: sortWins}, nil
	case models.RoundMixedDoubles:
		return pairingRule{teamSize: 2, genderBalanced: true}, nil
	case models.RoundMaximizeCourts:
		return pairingRule{teamSize: 2, singlesFallback: true}, nil
	default:
		return pairingRule{}, fmt.Errorf("%w: unknown round format %q", ErrInvalidRoster, format)
	}
}

// GenerateRound produces one mixer round's worth of court assignments from
// the current roster standings. Courts are numbered sequentially from 1 and
// filling stops as soon as numCourts is exhausted or too few players remain
// for one more match of the format's required size. A roster too small for a
// single match yields an empty result, not an error.
//
// previous and roundNumber are accepted so callers can thread round history
// through; the current pairing rules do not yet consult history to avoid
// repeat partners or opponents.
func GenerateRound(format models.RoundFormat, roster []models.RosterEntry, numCourts int, previous []models.RoundMatch, roundNumber int) ([]models.RoundMatch, error) {
	rule, err := ruleFor(format)
	if err != nil {
		return nil, err
	}
	_ = previous
	_ = roundNumber

	if rule.genderBalanced {
		return mixedDoublesRound(roster, numCourts), nil
	}

	pool := make([]models.RosterEntry, len(roster))
	copy(pool, roster)
	switch rule.sortBy {
	case sortWins:
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Wins > pool[j].Wins
		})
	case sortWinsAndDiff:
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].Wins != pool[j].Wins {
				return pool[i].Wins > pool[j].Wins
			}
			return pool[i].GameDiff() > pool[j].GameDiff()
		})
	}

	front, back := 0, len(pool)-1
	takeFront := func() *int {
		id := pool[front].Player.ID
		front++
		return &id
	}
	takeBack := func() *int {
		id := pool[back].Player.ID
		back--
		return &id
	}
	remaining := func() int { return back - front + 1 }

	matches := make([]models.RoundMatch, 0, numCourts)
	for court := 1; court <= numCourts; court++ {
		if remaining() < rule.teamSize*2 {
			if rule.singlesFallback && remaining() >= 2 {
				matches = append(matches, models.RoundMatch{
					Court:   court,
					Player1: takeFront(),
					Player2: takeFront(),
				})
			}
			break
		}
		m := models.RoundMatch{Court: court}
		switch {
		case rule.teamSize == 1:
			m.Player1 = takeFront()
			m.Player2 = takeFront()
		case rule.balancedDraw:
			// Strongest pairs with weakest: each team is one front draw plus
			// one back draw, which evens out aggregate team strength.
			m.Player1 = takeFront()
			m.Player2 = takeBack()
			m.Player3 = takeFront()
			m.Player4 = takeBack()
		default:
			m.Player1 = takeFront()
			m.Player2 = takeFront()
			m.Player3 = takeFront()
			m.Player4 = takeFront()
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// mixedDoublesRound seats one male/female pair per team, consumed in roster
// order without any strength sort. A court needs two of each gender; filling
// stops at the first court that cannot be fully seated.
func mixedDoublesRound(roster []models.RosterEntry, numCourts int) []models.RoundMatch {
	var males, females []models.RosterEntry
	for _, e := range roster {
		if e.Player.Gender == nil {
			continue
		}
		switch *e.Player.Gender {
		case models.GenderMale:
			males = append(males, e)
		case models.GenderFemale:
			females = append(females, e)
		}
	}

	matches := make([]models.RoundMatch, 0, numCourts)
	mi, fi := 0, 0
	for court := 1; court <= numCourts; court++ {
		if len(males)-mi < 2 || len(females)-fi < 2 {
			break
		}
		m1 := males[mi].Player.ID
		f1 := females[fi].Player.ID
		m2 := males[mi+1].Player.ID
		f2 := females[fi+1].Player.ID
		mi += 2
		fi += 2
		matches = append(matches, models.RoundMatch{
			Court:   court,
			Player1: &m1,
			Player2: &f1,
			Player3: &m2,
			Player4: &f2,
		})
	}
	return matches
}
