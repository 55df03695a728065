package config

import (
	"sort"
	"sync"
)

// TagRef is a tag together with its group.
type TagRef struct {
	Group TagGroup
	Tag   Tag
}

// TagGroupCache indexes tag groups by tag id. The index is built on first
// lookup and dropped by Reset.
type TagGroupCache struct {
	mu     sync.Mutex
	groups []TagGroup
	index  map[string]map[string]TagRef
	byTag  map[string]TagRef
}

// NewTagGroupCache returns a cache over groups.
func NewTagGroupCache(groups []TagGroup) *TagGroupCache {
	return &TagGroupCache{groups: groups}
}

// Reset replaces the groups and invalidates the index.
func (c *TagGroupCache) Reset(groups []TagGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = groups
	c.index = nil
	c.byTag = nil
}

// Lookup returns the tag with id in the group with groupID.
func (c *TagGroupCache) Lookup(groupID, tagID string) (TagRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.build()
	}
	ref, ok := c.index[groupID][tagID]
	return ref, ok
}

// Tag finds a tag by its id alone. Tag ids are unique across groups.
func (c *TagGroupCache) Tag(tagID string) (TagRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.build()
	}
	ref, ok := c.byTag[tagID]
	return ref, ok
}

// Group returns the group with id.
func (c *TagGroupCache) Group(id string) (TagGroup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.groups {
		if g.ID == id {
			return g, true
		}
	}
	return TagGroup{}, false
}

// Label renders a group's tag as "Group: Tag", falling back to ids for
// unknown groups or tags.
func (c *TagGroupCache) Label(groupID, tagID string) string {
	ref, ok := c.Lookup(groupID, tagID)
	if !ok {
		return groupID + ": " + tagID
	}
	group, tag := ref.Group.Title, ref.Tag.Title
	if group == "" {
		group = groupID
	}
	if tag == "" {
		tag = tagID
	}
	return group + ": " + tag
}

func (c *TagGroupCache) build() {
	c.index = make(map[string]map[string]TagRef, len(c.groups))
	c.byTag = map[string]TagRef{}
	for _, g := range c.groups {
		tags := make(map[string]TagRef, len(g.Tags))
		for _, t := range g.Tags {
			ref := TagRef{Group: g, Tag: t}
			tags[t.ID] = ref
			if _, dup := c.byTag[t.ID]; !dup {
				c.byTag[t.ID] = ref
			}
		}
		c.index[g.ID] = tags
	}
}

func sortedSiteIDs(sites map[string]Site) []string {
	ids := make([]string, 0, len(sites))
	for id := range sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
