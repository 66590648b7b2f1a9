package layout

// =============================================================================
// Vertical Packer
// =============================================================================

// packer assigns non-overlapping vertical offsets within the group and
// country columns. Each column keeps an independent running cursor; the two
// are synchronized only at reconciliation points between groups, not
// continuously, so whichever column is taller for a given group pushes the
// next group below it.
type packer struct {
	groupY   float64 // next free Y in the group column
	countryY float64 // next free Y in the country column
}

// groupPlacement is the packer's output for one group.
type groupPlacement struct {
	GroupY        float64 // top of the group header node
	GroupHeight   float64 // header only, or header + member rows when expanded
	CountryStartY float64 // top of the first member row (expanded only)
}

// placeGroup reserves vertical space for one group and advances the cursors.
//
// Collapsed groups consume a fixed header row. Expanded groups grow to
// headerHeight + n×countryRowHeight, and their members occupy the adjacent
// country column starting just below the header — or below the previous
// group's member block if the country column has already grown past it.
// After placement the group cursor advances past the greater of the group
// node and the member block, which prevents overlap whichever column is
// taller.
func (p *packer) placeGroup(memberCount int, expanded bool) groupPlacement {
	pl := groupPlacement{GroupY: p.groupY, GroupHeight: HeaderHeight}

	if !expanded || memberCount == 0 {
		if expanded {
			// Expanded zero-country group: nothing to route, header row only.
			pl.CountryStartY = p.groupY + HeaderHeight
		}
		p.groupY += pl.GroupHeight + RowGap
		return pl
	}

	block := float64(memberCount) * CountryRowHeight
	pl.GroupHeight = HeaderHeight + block
	pl.CountryStartY = max(p.groupY+HeaderHeight, p.countryY)

	groupBottom := pl.GroupY + pl.GroupHeight
	blockBottom := pl.CountryStartY + block

	p.groupY = max(groupBottom, blockBottom) + RowGap
	p.countryY = blockBottom + RowGap
	return pl
}

// occupiedHeight returns the total vertical extent consumed so far,
// excluding the trailing gap after the last placement.
func (p *packer) occupiedHeight() float64 {
	h := max(p.groupY, p.countryY)
	if h > 0 {
		h -= RowGap
	}
	return h
}

// packRules centers a block of rule nodes against the occupied height of
// the asymmetric group/country columns and returns the Y offset of each
// rule, spaced by a fixed row height.
func packRules(ruleCount int, occupiedHeight float64) []float64 {
	if ruleCount == 0 {
		return nil
	}
	total := float64(ruleCount) * RuleRowHeight
	start := (occupiedHeight - total) / 2
	if start < 0 {
		start = 0
	}
	ys := make([]float64, ruleCount)
	for i := range ys {
		ys[i] = start + float64(i)*RuleRowHeight
	}
	return ys
}
