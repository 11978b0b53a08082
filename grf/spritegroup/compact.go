package spritegroup

import (
	"math"
	"sort"
)

// Compact turns a list of possibly overlapping ranges into an ascending
// partition of the whole 32 bit value space. A value belongs to the last
// listed range covering it, or to def. Neighbouring pieces with the same
// group are merged. Ranges with Low above High are ignored.
func Compact(ranges []Range, def Handle) []Range {
	bounds := []uint64{0}
	for _, r := range ranges {
		if r.Low > r.High {
			continue
		}
		bounds = append(bounds, uint64(r.Low), uint64(r.High)+1)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	var result []Range
	for i, start := range bounds {
		if start > math.MaxUint32 || (i > 0 && start == bounds[i-1]) {
			continue
		}
		end := uint64(math.MaxUint32)
		for _, next := range bounds[i+1:] {
			if next > start {
				end = next - 1
				break
			}
		}

		group := def
		for _, r := range ranges {
			if r.Low <= r.High && uint64(r.Low) <= start && start <= uint64(r.High) {
				group = r.Group
			}
		}

		if n := len(result); n != 0 && result[n-1].Group == group {
			result[n-1].High = uint32(end)
		} else {
			result = append(result, Range{Group: group, Low: uint32(start), High: uint32(end)})
		}
	}
	return result
}

// Lookup returns the group of a value in a compacted partition.
func Lookup(ranges []Range, value uint32) (Handle, bool) {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].High >= value })
	if i < len(ranges) && ranges[i].Low <= value {
		return ranges[i].Group, true
	}
	return 0, false
}
