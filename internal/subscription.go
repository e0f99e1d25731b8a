package internal

// diffReads computes the subscription edits implied by two read sets:
// cells read in the new render but not the old one gain a subscription,
// cells read in the old render but not the new one lose theirs. Pure
// function so the invariant "subscriptions reflect only the last committed
// render" is testable without rendering.
func diffReads(old, new map[*Cell]struct{}) (added, removed []*Cell) {
	for cell := range new {
		if _, ok := old[cell]; !ok {
			added = append(added, cell)
		}
	}
	for cell := range old {
		if _, ok := new[cell]; !ok {
			removed = append(removed, cell)
		}
	}
	return added, removed
}

// finalizeSubscriptions applies the read-set diff after a render is
// accepted. Every cell read in the new render gets its token refreshed to
// the committed render's token, so later writes can tell stale
// subscriptions from live ones.
func (inst *Instance) finalizeSubscriptions(token int) {
	_, removed := diffReads(inst.lastReads, inst.pendingReads)

	for _, cell := range removed {
		delete(cell.readers, inst)
	}
	for cell := range inst.pendingReads {
		cell.readers[inst] = token
	}

	inst.lastReads = inst.pendingReads
	inst.pendingReads = make(map[*Cell]struct{})
	inst.lastRenderToken = token
}
