package check

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"github.com/kxue43/tech-blog/models"
)

// fingerprint computes a 64-bit SimHash of the given text: FNV-64a over
// word tokens accumulated into a bit vector. Near-identical texts produce
// fingerprints within a small Hamming distance of each other.
func fingerprint(text string) uint64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// hammingDistance returns the number of differing bits between two
// fingerprints.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// findDuplicates compares every pair of posts by body fingerprint and
// reports pairs within maxDistance. Catches a draft that was copied,
// renamed, and accidentally committed alongside the original.
func findDuplicates(posts []*models.Post, maxDistance int) []models.DuplicateResult {
	type fingered struct {
		permalink string
		fp        uint64
	}

	prints := make([]fingered, 0, len(posts))
	for _, p := range posts {
		prints = append(prints, fingered{
			permalink: p.Permalink(),
			fp:        fingerprint(p.Markdown),
		})
	}

	var dups []models.DuplicateResult
	for i := 0; i < len(prints); i++ {
		for j := i + 1; j < len(prints); j++ {
			d := hammingDistance(prints[i].fp, prints[j].fp)
			if d <= maxDistance {
				dups = append(dups, models.DuplicateResult{
					PageA:    prints[i].permalink,
					PageB:    prints[j].permalink,
					Distance: d,
				})
			}
		}
	}
	return dups
}
