package room

// patch collects the entity ids touched since the last tick
type patch struct {
	players        map[string]struct{}
	crops          map[string]struct{}
	removedPlayers map[string]struct{}
	removedCrops   map[string]struct{}
}

func newPatch() patch {
	p := patch{}
	p.reset()
	return p
}

func (p *patch) reset() {
	p.players = make(map[string]struct{})
	p.crops = make(map[string]struct{})
	p.removedPlayers = make(map[string]struct{})
	p.removedCrops = make(map[string]struct{})
}

func (p *patch) empty() bool {
	return len(p.players) == 0 && len(p.crops) == 0 && len(p.removedPlayers) == 0 && len(p.removedCrops) == 0
}

func (p *patch) markPlayer(sessionID string) {
	p.players[sessionID] = struct{}{}
	delete(p.removedPlayers, sessionID)
}

func (p *patch) removePlayer(sessionID string) {
	delete(p.players, sessionID)
	p.removedPlayers[sessionID] = struct{}{}
}

func (p *patch) markCrop(id string) {
	p.crops[id] = struct{}{}
	delete(p.removedCrops, id)
}

func (p *patch) removeCrop(id string) {
	delete(p.crops, id)
	p.removedCrops[id] = struct{}{}
}
