// Package selection resolves the key object document a view records
// references into and keeps the view's series filter in step with it.
package selection

// Action is what resolution does once every decision point is answered
type Action int

const (
	// ActionReuseSelected keeps the selected document, which is already a
	// valid target.
	ActionReuseSelected Action = iota
	// ActionUseSelected keeps the selected document although it does not
	// reference the current study.
	ActionUseSelected
	// ActionUseFound switches to the valid document found in the registry.
	ActionUseFound
	// ActionCreateFromImage builds a new document in the current image's study.
	ActionCreateFromImage
	// ActionCreateFromCopy builds a new document from the selected read-only one.
	ActionCreateFromCopy
)

func (a Action) String() string {
	switch a {
	case ActionReuseSelected:
		return "reuse-selected"
	case ActionUseSelected:
		return "use-selected"
	case ActionUseFound:
		return "use-found"
	case ActionCreateFromImage:
		return "create-from-image"
	case ActionCreateFromCopy:
		return "create-from-copy"
	default:
		return "unknown"
	}
}

// DecisionPoint identifies a question put to the user during resolution
type DecisionPoint int

const (
	NoDecision DecisionPoint = iota
	// DecisionSwitchOrCreate: nothing is selected but a valid document exists.
	DecisionSwitchOrCreate
	// DecisionUseAnywayOrCreate: the selected document does not reference the
	// current study.
	DecisionUseAnywayOrCreate
	// DecisionCopyOrCreate: the selected document is read-only.
	DecisionCopyOrCreate
)

func (d DecisionPoint) String() string {
	switch d {
	case NoDecision:
		return "none"
	case DecisionSwitchOrCreate:
		return "switch-or-create"
	case DecisionUseAnywayOrCreate:
		return "use-anyway-or-create"
	case DecisionCopyOrCreate:
		return "copy-or-create"
	default:
		return "unknown"
	}
}

// Inputs are the facts resolution branches on.
type Inputs struct {
	Selected bool // a document is selected in the view
	Editable bool // the selected document is editable
	Valid    bool // the selected document is a valid target for the image
	Found    bool // the registry holds a valid document (only when nothing is selected)
}

// Outcome is either a direct action or a decision point to ask.
type Outcome struct {
	Action   Action
	Decision DecisionPoint
}

type choice struct {
	label  string
	action Action
}

type prompt struct {
	message string
	choices []choice
}

var prompts = map[DecisionPoint]prompt{
	DecisionSwitchOrCreate: {
		message: "No Key Object Selection is selected but at least one is available.",
		choices: []choice{
			{"Switch to a valid Key Object Selection", ActionUseFound},
			{"Create a new one", ActionCreateFromImage},
		},
	},
	DecisionUseAnywayOrCreate: {
		message: "The selected Key Object Selection has no reference to the current study.",
		choices: []choice{
			{"Use it anyway", ActionUseSelected},
			{"Create a new Key Object Selection", ActionCreateFromImage},
		},
	},
	DecisionCopyOrCreate: {
		message: "The selected Key Object Selection is read-only.",
		choices: []choice{
			{"Create a new Key Object Selection from a copy", ActionCreateFromCopy},
			{"Create a new Key Object Selection", ActionCreateFromImage},
		},
	},
}

// Labels returns the option labels presented at d, in order.
func (d DecisionPoint) Labels() []string {
	p := prompts[d]
	labels := make([]string, len(p.choices))
	for i, c := range p.choices {
		labels[i] = c.label
	}
	return labels
}

type rule struct {
	match func(Inputs) bool
	out   Outcome
}

var decisionTable = []rule{
	{func(in Inputs) bool { return !in.Selected && in.Found }, Outcome{Decision: DecisionSwitchOrCreate}},
	{func(in Inputs) bool { return !in.Selected && !in.Found }, Outcome{Action: ActionCreateFromImage}},
	{func(in Inputs) bool { return in.Selected && in.Editable && in.Valid }, Outcome{Action: ActionReuseSelected}},
	{func(in Inputs) bool { return in.Selected && in.Editable && !in.Valid }, Outcome{Decision: DecisionUseAnywayOrCreate}},
	{func(in Inputs) bool { return in.Selected && !in.Editable }, Outcome{Decision: DecisionCopyOrCreate}},
}

// Decide returns the outcome for in. Exactly one rule matches any input.
func Decide(in Inputs) Outcome {
	for _, r := range decisionTable {
		if r.match(in) {
			return r.out
		}
	}
	// unreachable: the rules cover every input
	return Outcome{Action: ActionCreateFromImage}
}
