package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"A": 1}
	b := map[string]int{"B": 2, "C": 3}

	merged := maps.Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"A": 1, "B": 2, "C": 3}, merged)

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)

	assert.Empty(maps.Collect(IterSeq2Concat[string, int]()))
}
