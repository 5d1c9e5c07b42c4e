package protocol

// Action names accepted by self.zeri.action.
const (
	ActionWalk      = "walk"
	ActionTurn      = "turn"
	ActionSit       = "sit"
	ActionSwing     = "swing"
	ActionShakeTail = "shake_tail"
	ActionHome      = "home"
)

// Argument names
const (
	ArgAction    = "action"
	ArgSteps     = "steps"
	ArgSpeed     = "speed"
	ArgDirection = "direction"
	ArgAmount    = "amount"
)

// ActionSpec lists the integer arguments an action requires, in display order.
type ActionSpec struct {
	Name   string
	Fields []string
}

var actions = map[string]ActionSpec{
	ActionWalk:      {Name: ActionWalk, Fields: []string{ArgSteps, ArgSpeed, ArgDirection}},
	ActionTurn:      {Name: ActionTurn, Fields: []string{ArgSteps, ArgSpeed, ArgDirection}},
	ActionSwing:     {Name: ActionSwing, Fields: []string{ArgSteps, ArgSpeed, ArgAmount}},
	ActionShakeTail: {Name: ActionShakeTail, Fields: []string{ArgSteps, ArgSpeed, ArgAmount}},
	ActionSit:       {Name: ActionSit},
	ActionHome:      {Name: ActionHome},
}

// Accepts reports whether field is one of the action's arguments.
func (a ActionSpec) Accepts(field string) bool {
	for _, f := range a.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// LookupAction returns the argument layout of a known action.
func LookupAction(name string) (ActionSpec, bool) {
	spec, ok := actions[name]
	return spec, ok
}

// ActionNames returns all known actions in a stable order.
func ActionNames() []string {
	return []string{ActionWalk, ActionTurn, ActionSwing, ActionShakeTail, ActionSit, ActionHome}
}
