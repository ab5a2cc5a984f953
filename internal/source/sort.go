package source

// SortByDependencies orders extracted tables so that every table comes after
// the tables it references. The catalog can contain cycles (self-references
// are already dropped during extraction, mutual references are not); when no
// table's dependencies are fully satisfied, the remaining table with the
// fewest unmet dependencies is emitted next, lowest name breaking ties, so
// the order is always total and deterministic.
func SortByDependencies(tables []*ExtractedTable) []*ExtractedTable {
	sorted := make([]*ExtractedTable, 0, len(tables))
	processed := make(map[string]bool)

	for len(sorted) < len(tables) {
		added := false
		for _, t := range tables {
			if processed[t.Data.Name] {
				continue
			}
			ready := true
			for _, dep := range t.Dependencies {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, t)
				processed[t.Data.Name] = true
				added = true
			}
		}

		if !added {
			var best *ExtractedTable
			bestUnmet := 0
			for _, t := range tables {
				if processed[t.Data.Name] {
					continue
				}
				unmet := 0
				for _, dep := range t.Dependencies {
					if !processed[dep] {
						unmet++
					}
				}
				if best == nil || unmet < bestUnmet ||
					(unmet == bestUnmet && t.Data.Name < best.Data.Name) {
					best = t
					bestUnmet = unmet
				}
			}
			sorted = append(sorted, best)
			processed[best.Data.Name] = true
		}
	}
	return sorted
}

// UnmetForeignKeys returns the declarations of a table that cannot be
// honored against the already-registered parents: the parent does not
// precede the table in registration order, the parent has no usable
// single-column primary key (composite keys collapse to unkeyed during
// extraction), or the declaration references a column other than that key.
// Callers registering tables sequentially must drop these to keep
// registration valid and the emitted document truthful.
func UnmetForeignKeys(t *ExtractedTable, registered map[string]*ExtractedTable) []ForeignKey {
	var unmet []ForeignKey
	for _, fk := range t.ForeignKeys {
		parent, ok := registered[fk.RefTable]
		if !ok || parent.PrimaryKey == "" || fk.RefColumn != parent.PrimaryKey {
			unmet = append(unmet, fk)
		}
	}
	return unmet
}
