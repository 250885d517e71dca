package ant

// Learner is the policy and value oracle driving one ant.
type Learner interface {
	SelectAction(s State) Action
	Learn(s State, a Action, reward float64, next State)
}

// Step is one (state, action, reward, next state) transition handed to a Learner.
type Step struct {
	State  State
	Action Action
	Reward float64
	Next   State
}
