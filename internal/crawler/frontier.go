package crawler

// Frontier is the pending-URL queue and visited set of a single crawl.
// It is not safe for concurrent use; a crawl owns its frontier exclusively.
type Frontier struct {
	queue   []string
	visited map[string]struct{}
}

// NewFrontier returns a frontier seeded with the given URLs.
func NewFrontier(seeds ...string) *Frontier {
	f := &Frontier{visited: map[string]struct{}{}}
	for _, s := range seeds {
		f.Push(s)
	}
	return f
}

// Push appends a URL to the back of the queue.
func (f *Frontier) Push(u string) {
	f.queue = append(f.queue, u)
}

// Pop removes and returns the URL at the front of the queue.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return next, true
}

// Visit marks u as visited and reports whether it was new.
func (f *Frontier) Visit(u string) bool {
	if _, ok := f.visited[u]; ok {
		return false
	}
	f.visited[u] = struct{}{}
	return true
}

// Visited reports whether u has already been dequeued.
func (f *Frontier) Visited(u string) bool {
	_, ok := f.visited[u]
	return ok
}

// Len is the number of queued URLs, duplicates included.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedCount is the number of distinct URLs dequeued so far.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}
