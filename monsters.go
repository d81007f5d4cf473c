package main

// The monster catalog is a flat identifier range; the frontend maps ids
// to image assets. Difficulty bands are fixed sub-ranges of that catalog.
const (
	difficultyEasy   = "easy"
	difficultyMedium = "medium"
	difficultyHard   = "hard"
	difficultyAll    = "all"
)

type monsterBand struct {
	min int
	max int
}

var monsterBands = map[string]monsterBand{
	difficultyEasy:   {min: 1, max: 20},
	difficultyMedium: {min: 21, max: 40},
	difficultyHard:   {min: 41, max: 60},
	difficultyAll:    {min: 1, max: 60},
}

func bandFor(difficulty string) monsterBand {
	if band, ok := monsterBands[difficulty]; ok {
		return band
	}
	return monsterBands[difficultyAll]
}

func (b monsterBand) size() int {
	return b.max - b.min + 1
}

func (b monsterBand) contains(id int) bool {
	return id >= b.min && id <= b.max
}

// pickMonster draws uniformly from the band, redrawing on ids already in
// used until the band is exhausted. Once every id in the band has been
// used, repeats are allowed; the used list is intentionally never reset.
func pickMonster(difficulty string, used []int) int {
	band := bandFor(difficulty)

	usedInBand := 0
	usedSet := make(map[int]bool, len(used))
	for _, id := range used {
		if !usedSet[id] && band.contains(id) {
			usedInBand++
		}
		usedSet[id] = true
	}

	exhausted := usedInBand >= band.size()

	for {
		id := band.min + randomInt(band.size())
		if exhausted || !usedSet[id] {
			return id
		}
	}
}

// pickDrawer selects the roster entry at index, wrapping to 0 when the
// roster shrank since the index was last used. Deterministic given its
// inputs; rotation order comes solely from join order.
func pickDrawer(players []*Player, index int) (*Player, int) {
	if len(players) == 0 {
		return nil, 0
	}
	if index < 0 || index >= len(players) {
		index = 0
	}
	return players[index], index
}
