/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"math/rand"
	"strings"
)

// distance assigned to every candidate while nothing is revealed yet, so the
// first pick is uniform among all letters
const emptyRevealDistance = 100

// RevealHint computes the masked projection of the secret word with
// targetRevealed letters visible, keeping every previously revealed index.
//
// Spaces are always shown and never count toward the letter budget. Each new
// letter is chosen greedily to maximize its minimum distance to any index
// that is already visible (revealed letters and spaces alike), spreading the
// reveals across the word instead of clustering them. Ties are broken
// uniformly at random.
//
// Returns the masked string (positions joined by single spaces, hidden
// letters rendered as underscores) and the revealed letter indices.
func RevealHint(word string, targetRevealed int, prevRevealed []int) (string, []int) {
	letters := []rune(word)

	visible := make(map[int]bool)
	for _, i := range prevRevealed {
		if i >= 0 && i < len(letters) {
			visible[i] = true
		}
	}
	for i, c := range letters {
		if c == ' ' {
			visible[i] = true
		}
	}

	var available []int
	for i, c := range letters {
		if c != ' ' && !visible[i] {
			available = append(available, i)
		}
	}

	newToReveal := targetRevealed - len(prevRevealed)

	for n := 0; n < newToReveal && len(available) > 0; n++ {
		// score every candidate by its distance to the closest visible index
		bestScore := -1
		var best []int
		for _, candidate := range available {
			score := minRevealDistance(candidate, visible)
			if score > bestScore {
				bestScore = score
				best = best[:0]
			}
			if score == bestScore {
				best = append(best, candidate)
			}
		}

		winner := best[rand.Intn(len(best))]
		visible[winner] = true

		kept := available[:0]
		for _, i := range available {
			if i != winner {
				kept = append(kept, i)
			}
		}
		available = kept
	}

	var revealed []int
	for i, c := range letters {
		if c != ' ' && visible[i] {
			revealed = append(revealed, i)
		}
	}

	var sb strings.Builder
	for i, c := range letters {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if visible[i] {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String(), revealed
}

func minRevealDistance(candidate int, visible map[int]bool) int {
	if len(visible) == 0 {
		return emptyRevealDistance
	}
	min := int(^uint(0) >> 1)
	for i := range visible {
		dist := candidate - i
		if dist < 0 {
			dist = -dist
		}
		if dist < min {
			min = dist
		}
	}
	return min
}
