package search

// dedupe keeps the first occurrence of every id.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// keepOrder returns the members of ordered that are also in matching, in ordered's order.
func keepOrder(ordered, matching []int64) []int64 {
	keep := make(map[int64]struct{}, len(matching))
	for _, id := range matching {
		keep[id] = struct{}{}
	}
	out := make([]int64, 0, len(matching))
	for _, id := range ordered {
		if _, ok := keep[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Paginate returns the ids on 1-based page and the total. Pages outside the
// range are empty rather than an error.
func Paginate(ids []int64, page, size int) ([]int64, int) {
	total := len(ids)
	// (page-1)*size overflows for huge pages, so compare page counts first
	if page < 1 || size < 1 || page-1 >= (total+size-1)/size {
		return []int64{}, total
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return ids[start:end], total
}
