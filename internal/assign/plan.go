package assign

import "github.com/fyrsmithlabs/roleshuffle/internal/roster"

// Plan is a computed assignment that has not necessarily been shown yet.
type Plan struct {
	participants []roster.Participant
	pool         []string
}

// Len returns the number of participants in the plan.
func (p *Plan) Len() int {
	return len(p.participants)
}

// Pool returns a copy of the shuffled target pool.
func (p *Plan) Pool() []string {
	return append([]string(nil), p.pool...)
}

// Final returns the committed assignment.
func (p *Plan) Final() []roster.Participant {
	return Label(p.participants, p.pool)
}

// Decoy returns a cosmetic assignment: a fresh permutation of the target
// pool labeled onto the same participants. It is never the committed result.
func (p *Plan) Decoy(e *Engine) []roster.Participant {
	return Label(p.participants, e.Shuffle(p.pool))
}
