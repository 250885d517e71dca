package colony

import (
	"math/rand"

	"antcolony/internal/ant"
	"antcolony/internal/qlearn"
)

// Brain adapts a tabular Q-learning agent to the ant.Learner contract.
type Brain struct {
	agent *qlearn.Agent
}

func NewBrain(cfg qlearn.Config, rng *rand.Rand) (*Brain, error) {
	table, err := qlearn.NewTable(ant.NumStates, ant.NumActions)
	if err != nil {
		return nil, err
	}
	agent, err := qlearn.NewAgent(cfg, table, rng)
	if err != nil {
		return nil, err
	}
	return &Brain{agent: agent}, nil
}

func (b *Brain) SelectAction(s ant.State) ant.Action {
	return ant.Action(b.agent.SelectAction(int(s)))
}

func (b *Brain) Learn(s ant.State, a ant.Action, reward float64, next ant.State) {
	b.agent.Update(int(s), int(a), reward, int(next))
}

func (b *Brain) Agent() *qlearn.Agent {
	return b.agent
}

func (b *Brain) Table() *qlearn.Table {
	return b.agent.Table()
}
