package domain

import (
	"slices"
	"strings"
)

type TagCount struct {
	Tag   string
	Count int
}

// TagHistogram counts case-folded tags over every card, sorted by count
// descending and then by tag.
func TagHistogram(boards []Board) []TagCount {
	counts := map[string]int{}
	for _, board := range boards {
		for _, card := range board.Cards {
			for _, tag := range card.Tags {
				key := NormalizeTag(tag)
				if key == "" {
					continue
				}
				counts[key]++
			}
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

// FilterByTags keeps cards carrying at least one of tags and drops boards left
// empty. The input is never modified; an empty filter returns boards as given.
func FilterByTags(boards []Board, tags []string) []Board {
	wanted := map[string]struct{}{}
	for _, tag := range tags {
		if key := NormalizeTag(tag); key != "" {
			wanted[key] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return boards
	}
	out := make([]Board, 0, len(boards))
	for _, board := range boards {
		kept := make([]Card, 0, len(board.Cards))
		for _, card := range board.Cards {
			if cardMatchesAny(card, wanted) {
				kept = append(kept, card.Clone())
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered := board
		filtered.Cards = kept
		out = append(out, filtered)
	}
	return out
}

func cardMatchesAny(card Card, wanted map[string]struct{}) bool {
	for _, tag := range card.Tags {
		if _, ok := wanted[NormalizeTag(tag)]; ok {
			return true
		}
	}
	return false
}
