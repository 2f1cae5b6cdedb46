package frontier

// UrlItem is a single frontier entry: a URL discovered at a given crawl
// depth, carrying the priority the Prioritizer assigned it at enqueue
// time. Priority is computed once, at push, not recomputed on pop.
type UrlItem struct {
	URL      string
	Depth    int
	Priority float64
}

// SeedPriority is the fixed priority assigned to every URL taken directly
// from the seed list, ahead of anything the Prioritizer would compute for
// a discovered link at depth 0.
const SeedPriority = 10.0
