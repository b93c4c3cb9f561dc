package cache

// OpenedContainers remembers which container owners were already counted in
// the current session. Not safe for concurrent use; it lives on the tracker
// goroutine.
type OpenedContainers struct {
	owners map[string]struct{}
}

// NewOpenedContainers creates an empty set
func NewOpenedContainers() *OpenedContainers {
	return &OpenedContainers{owners: make(map[string]struct{})}
}

// MarkOpened records ownerID and reports whether it was seen for the first time.
func (c *OpenedContainers) MarkOpened(ownerID string) bool {
	if _, ok := c.owners[ownerID]; ok {
		return false
	}
	c.owners[ownerID] = struct{}{}
	return true
}

// Seen reports whether ownerID was already counted.
func (c *OpenedContainers) Seen(ownerID string) bool {
	_, ok := c.owners[ownerID]
	return ok
}

func (c *OpenedContainers) Len() int {
	return len(c.owners)
}

// Reset clears all owners from the set
func (c *OpenedContainers) Reset() {
	c.owners = make(map[string]struct{})
}

// TemplateSet is a read-only lookup of container template ids.
type TemplateSet map[string]struct{}

// NewTemplateSet builds a set from ids, skipping empty strings.
func NewTemplateSet(ids ...string) TemplateSet {
	s := make(TemplateSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s TemplateSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
