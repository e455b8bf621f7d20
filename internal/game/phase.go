package game

import (
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

const (
	phaseEvent__WAIT      = "wait"
	phaseEvent__PASS      = "pass"
	phaseEvent__PLAY      = "play"
	phaseEvent__END_ROUND = "end_round"
	phaseEvent__FINISH    = "finish"
)

var phaseEvents = map[Phase]string{
	PhaseWaiting:  phaseEvent__WAIT,
	PhasePassing:  phaseEvent__PASS,
	PhasePlaying:  phaseEvent__PLAY,
	PhaseRoundEnd: phaseEvent__END_ROUND,
	PhaseFinished: phaseEvent__FINISH,
}

// phaseMachine checks phase changes against the normal lifecycle
// connecting -> waiting -> passing -> playing -> round_end -> ... -> finished.
// The server is authoritative, so an unexpected change is logged and then
// followed anyway.
type phaseMachine struct {
	sm            *fsm.FSM
	logger        *zerolog.Logger
	printStateMsg bool
}

func newPhaseMachine(logger *zerolog.Logger, printStateMsg bool) *phaseMachine {
	pm := &phaseMachine{logger: logger, printStateMsg: printStateMsg}
	pm.sm = fsm.NewFSM(
		string(PhaseConnecting),
		fsm.Events{
			{
				Name: phaseEvent__WAIT,
				Src:  []string{string(PhaseConnecting)},
				Dst:  string(PhaseWaiting),
			},
			{
				Name: phaseEvent__PASS,
				Src:  []string{string(PhaseConnecting), string(PhaseWaiting), string(PhaseRoundEnd)},
				Dst:  string(PhasePassing),
			},
			{
				Name: phaseEvent__PLAY,
				Src: []string{
					string(PhaseConnecting),
					string(PhaseWaiting),
					string(PhasePassing),
					string(PhaseRoundEnd),
				},
				Dst: string(PhasePlaying),
			},
			{
				Name: phaseEvent__END_ROUND,
				Src:  []string{string(PhasePlaying)},
				Dst:  string(PhaseRoundEnd),
			},
			{
				Name: phaseEvent__FINISH,
				Src: []string{
					string(PhaseConnecting),
					string(PhaseWaiting),
					string(PhasePassing),
					string(PhasePlaying),
					string(PhaseRoundEnd),
				},
				Dst: string(PhaseFinished),
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { pm.enterState(e) },
		},
	)
	return pm
}

func (pm *phaseMachine) enterState(e *fsm.Event) {
	if pm.printStateMsg {
		pm.logger.Info().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
	}
}

func (pm *phaseMachine) current() Phase {
	return Phase(pm.sm.Current())
}

// moveTo transitions to p and returns the resulting phase.
func (pm *phaseMachine) moveTo(p Phase) Phase {
	from := pm.current()
	if from == p {
		return p
	}
	name, ok := phaseEvents[p]
	if !ok {
		pm.logger.Warn().Msgf("Ignoring change to unsupported phase [%s]", p)
		return from
	}
	err := pm.sm.Event(name)
	if err != nil {
		pm.logger.Warn().Msgf("Unexpected phase change [%s] ===> [%s] (%s). Following server.", from, p, err.Error())
		pm.sm.SetState(string(p))
	}
	return pm.current()
}
