package cycle

// Finisher is a Periodic that eventually completes, such as an autonomous routine.
type Finisher interface {
	Periodic
	Done() bool
}

// Handoff runs First until it reports Done, then runs Then from the same cycle on.
type Handoff struct {
	First Finisher
	Then  Periodic
}

func (h *Handoff) Periodic() {
	if h.First != nil && !h.First.Done() {
		h.First.Periodic()
		return
	}
	h.Then.Periodic()
}
