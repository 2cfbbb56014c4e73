package npc

// Catalog indexes templates by ID.
type Catalog map[string]*Template

// NewCatalog indexes templates; later duplicates replace earlier ones.
func NewCatalog(templates []*Template) Catalog {
	c := make(Catalog, len(templates))
	for _, t := range templates {
		c[t.ID] = t
	}
	return c
}

// LootFor returns the bonus loot table of the template, or nil.
func (c Catalog) LootFor(templateID string) *LootTable {
	if t, ok := c[templateID]; ok {
		return t.Loot
	}
	return nil
}
