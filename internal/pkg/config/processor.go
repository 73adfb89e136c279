package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
)

// Config is the processed rule set the engine runs on.
type Config struct {
	Macros     []macro.Macro
	MidiDevice *match.String
}

// Load reads and processes the macro configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file failed: %w", err)
	}
	return ParseData(data)
}

// ParseData runs both loader stages: text to intermediate tree, tree to
// rule model through the processor selected by the document's version.
func ParseData(data []byte) (Config, error) {
	root, err := ParseTree(data)
	if err != nil {
		return Config{}, err
	}
	return Process(root)
}

// Process dispatches the intermediate tree to a versioned processor.
func Process(root Node) (Config, error) {
	if root.Kind != HashNode {
		return Config{}, invalidf("top level must be a hash, got %s", root.Kind)
	}

	version, ok := root.Get("version")
	if !ok {
		return Config{}, invalidf("missing version field")
	}
	if version.Kind != IntNode {
		return Config{}, invalidf("version must be an integer, got %s", version.Kind)
	}

	switch version.Int {
	case 1:
		return processV1(root)
	default:
		return Config{}, &Error{
			Kind: UnsupportedVersion,
			Msg:  fmt.Sprintf("config version %d is not supported", version.Int),
		}
	}
}

func processV1(root Node) (Config, error) {
	var cfg Config

	if node, ok := root.Get("midi_device"); ok {
		m, err := buildStringMatcher(node)
		if err != nil {
			return Config{}, fmt.Errorf("midi_device: %w", err)
		}
		cfg.MidiDevice = m
	}

	if node, ok := root.Get("scopes"); ok {
		if node.Kind != ArrayNode {
			return Config{}, invalidf("scopes must be an array, got %s", node.Kind)
		}
		for i, entry := range node.Array {
			macros, err := buildScopeEntry(entry)
			if err != nil {
				return Config{}, fmt.Errorf("scopes[%d]: %w", i, err)
			}
			cfg.Macros = append(cfg.Macros, macros...)
		}
	}

	if node, ok := root.Get("global_macros"); ok {
		if node.Kind != ArrayNode {
			return Config{}, invalidf("global_macros must be an array, got %s", node.Kind)
		}
		for i, entry := range node.Array {
			m, err := buildMacro(entry, nil)
			if err != nil {
				return Config{}, fmt.Errorf("global_macros[%d]: %w", i, err)
			}
			cfg.Macros = append(cfg.Macros, m)
		}
	}

	return cfg, nil
}

// buildScopeEntry reads one scopes[] element: the four optional window
// matchers plus the macros that acquire them.
func buildScopeEntry(node Node) ([]macro.Macro, error) {
	if node.Kind != HashNode {
		return nil, invalidf("scope must be a hash, got %s", node.Kind)
	}

	var scope macro.Scope
	for field, target := range map[string]**match.String{
		"window_class":        &scope.WindowClass,
		"window_name":         &scope.WindowName,
		"executable_path":     &scope.ExecutablePath,
		"executable_basename": &scope.ExecutableBasename,
	} {
		sub, ok := node.Get(field)
		if !ok {
			continue
		}
		m, err := buildStringMatcher(sub)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		*target = m
	}

	macrosNode, ok := node.Get("macros")
	if !ok {
		return nil, nil
	}
	if macrosNode.Kind != ArrayNode {
		return nil, invalidf("macros must be an array, got %s", macrosNode.Kind)
	}

	var macros []macro.Macro
	for i, entry := range macrosNode.Array {
		m, err := buildMacro(entry, &scope)
		if err != nil {
			return nil, fmt.Errorf("macros[%d]: %w", i, err)
		}
		macros = append(macros, m)
	}
	return macros, nil
}

func buildMacro(node Node, scope *macro.Scope) (macro.Macro, error) {
	if node.Kind != HashNode {
		return macro.Macro{}, invalidf("macro must be a hash, got %s", node.Kind)
	}

	builder := macro.NewBuilder().Scope(scope)

	if name, ok := node.Get("name"); ok {
		if name.Kind != StringNode {
			return macro.Macro{}, invalidf("name must be a string, got %s", name.Kind)
		}
		builder.Name(name.Str)
	}

	events, ok := node.Get("matching_events")
	if !ok {
		return macro.Macro{}, invalidf("missing matching_events field")
	}
	if events.Kind != ArrayNode {
		return macro.Macro{}, invalidf("matching_events must be an array, got %s", events.Kind)
	}
	for i, entry := range events.Array {
		e, err := buildEventMatcher(entry)
		if err != nil {
			return macro.Macro{}, fmt.Errorf("matching_events[%d]: %w", i, err)
		}
		builder.MatchEvent(e)
	}

	if pre, ok := node.Get("required_preconditions"); ok {
		ps, err := buildPreconditions(pre)
		if err != nil {
			return macro.Macro{}, err
		}
		for _, p := range ps {
			builder.Precondition(p)
		}
	}

	actions, ok := node.Get("actions")
	if !ok {
		return macro.Macro{}, invalidf("missing actions field")
	}
	if actions.Kind != ArrayNode {
		return macro.Macro{}, invalidf("actions must be an array, got %s", actions.Kind)
	}
	for i, entry := range actions.Array {
		a, err := buildAction(entry)
		if err != nil {
			return macro.Macro{}, fmt.Errorf("actions[%d]: %w", i, err)
		}
		builder.Action(a)
	}

	return builder.Build()
}

func buildEventMatcher(node Node) (macro.EventMatcher, error) {
	if node.Kind != HashNode {
		return macro.EventMatcher{}, invalidf("event matcher must be a hash, got %s", node.Kind)
	}

	typ, ok := node.Get("type")
	if !ok {
		return macro.EventMatcher{}, invalidf("missing type field")
	}
	if typ.Kind != StringNode || typ.Str != "midi" {
		return macro.EventMatcher{}, invalidf("unsupported event matcher type: %q", typ.Str)
	}

	data, ok := node.Get("data")
	if !ok {
		return macro.EventMatcher{}, invalidf("midi event matcher needs a data hash with message_type")
	}
	m, err := buildMidiEventMatcher(data)
	if err != nil {
		return macro.EventMatcher{}, err
	}

	matcher := macro.EventMatcher{Midi: m}

	if pre, ok := node.Get("required_preconditions"); ok {
		ps, err := buildPreconditions(pre)
		if err != nil {
			return macro.EventMatcher{}, err
		}
		matcher.Preconditions = ps
	}

	return matcher, nil
}

// per-variant field sets of the midi event matcher data hash
var midiMatcherFields = map[string][]string{
	"note_on":            {"channel", "key", "velocity"},
	"note_off":           {"channel", "key", "velocity"},
	"poly_aftertouch":    {"channel", "key", "value"},
	"control_change":     {"channel", "control", "value"},
	"program_change":     {"channel", "program"},
	"channel_aftertouch": {"channel", "value"},
	"pitch_bend_change":  {"channel", "value"},
}

var midiMatcherTypes = map[string]midi.MessageType{
	"note_on":            midi.MessageNoteOn,
	"note_off":           midi.MessageNoteOff,
	"poly_aftertouch":    midi.MessagePolyAftertouch,
	"control_change":     midi.MessageControlChange,
	"program_change":     midi.MessageProgramChange,
	"channel_aftertouch": midi.MessageChannelAftertouch,
	"pitch_bend_change":  midi.MessagePitchBendChange,
}

func buildMidiEventMatcher(node Node) (macro.MidiEventMatcher, error) {
	if node.Kind != HashNode {
		return macro.MidiEventMatcher{}, invalidf("data must be a hash, got %s", node.Kind)
	}

	typ, ok := node.Get("message_type")
	if !ok {
		return macro.MidiEventMatcher{}, invalidf("missing message_type field")
	}
	if typ.Kind != StringNode {
		return macro.MidiEventMatcher{}, invalidf("message_type must be a string, got %s", typ.Kind)
	}

	messageType, ok := midiMatcherTypes[typ.Str]
	if !ok {
		return macro.MidiEventMatcher{}, invalidf("unsupported message_type: %q", typ.Str)
	}

	matcher := macro.MidiEventMatcher{Type: messageType}
	for _, field := range midiMatcherFields[typ.Str] {
		sub, ok := node.Get(field)
		if !ok {
			continue
		}

		var m match.Number
		var err error
		if field == "key" && sub.Kind == StringNode {
			m, err = match.CompileNote(sub.Str)
			if err != nil {
				return macro.MidiEventMatcher{}, invalidf("key: %v", err)
			}
		} else {
			m, err = buildNumberMatcher(sub)
			if err != nil {
				return macro.MidiEventMatcher{}, fmt.Errorf("%s: %w", field, err)
			}
		}

		p := new(match.Number)
		*p = m
		switch field {
		case "channel":
			matcher.Channel = p
		case "key":
			matcher.Key = p
		case "velocity":
			matcher.Velocity = p
		case "control":
			matcher.Control = p
		case "program":
			matcher.Program = p
		case "value":
			matcher.Value = p
		}
	}

	return matcher, nil
}

var preconditionKinds = map[string]macro.PreconditionKind{
	"note_on":    macro.PreconditionNoteOn,
	"control":    macro.PreconditionControl,
	"program":    macro.PreconditionProgram,
	"pitch_bend": macro.PreconditionPitchBend,
}

var preconditionFields = map[string][]string{
	"note_on":    {"channel", "key"},
	"control":    {"channel", "control", "value"},
	"program":    {"channel", "program"},
	"pitch_bend": {"channel", "value"},
}

func buildPreconditions(node Node) ([]macro.Precondition, error) {
	if node.Kind != ArrayNode {
		return nil, invalidf("required_preconditions must be an array, got %s", node.Kind)
	}
	var out []macro.Precondition
	for i, entry := range node.Array {
		p, err := buildPrecondition(entry)
		if err != nil {
			return nil, fmt.Errorf("required_preconditions[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func buildPrecondition(node Node) (macro.Precondition, error) {
	if node.Kind != HashNode {
		return macro.Precondition{}, invalidf("precondition must be a hash, got %s", node.Kind)
	}

	var p macro.Precondition

	if invert, ok := node.Get("invert"); ok {
		if invert.Kind != BoolNode {
			return macro.Precondition{}, invalidf("invert must be a bool, got %s", invert.Kind)
		}
		p.Invert = invert.Bool
	}

	typ, ok := node.Get("type")
	if !ok {
		return macro.Precondition{}, invalidf("missing type field")
	}
	if typ.Kind != StringNode || typ.Str != "midi" {
		return macro.Precondition{}, invalidf("unsupported precondition type: %q", typ.Str)
	}

	data, ok := node.Get("data")
	if !ok {
		return macro.Precondition{}, invalidf("midi precondition needs a data hash with condition_type")
	}
	if data.Kind != HashNode {
		return macro.Precondition{}, invalidf("data must be a hash, got %s", data.Kind)
	}

	condType, ok := data.Get("condition_type")
	if !ok {
		return macro.Precondition{}, invalidf("missing condition_type field")
	}
	if condType.Kind != StringNode {
		return macro.Precondition{}, invalidf("condition_type must be a string, got %s", condType.Kind)
	}
	kind, ok := preconditionKinds[condType.Str]
	if !ok {
		return macro.Precondition{}, invalidf("unsupported condition_type: %q", condType.Str)
	}

	p.Midi = macro.MidiPrecondition{Kind: kind}
	for _, field := range preconditionFields[condType.Str] {
		sub, ok := data.Get(field)
		if !ok {
			continue
		}

		var m match.Number
		var err error
		if field == "key" && sub.Kind == StringNode {
			m, err = match.CompileNote(sub.Str)
			if err != nil {
				return macro.Precondition{}, invalidf("key: %v", err)
			}
		} else {
			m, err = buildNumberMatcher(sub)
			if err != nil {
				return macro.Precondition{}, fmt.Errorf("%s: %w", field, err)
			}
		}

		ptr := new(match.Number)
		*ptr = m
		switch field {
		case "channel":
			p.Midi.Channel = ptr
		case "key":
			p.Midi.Key = ptr
		case "control":
			p.Midi.Control = ptr
		case "program":
			p.Midi.Program = ptr
		case "value":
			p.Midi.Value = ptr
		}
	}

	return p, nil
}

func buildNumberMatcher(node Node) (match.Number, error) {
	switch node.Kind {
	case IntNode:
		if node.Int < 0 {
			return match.Number{}, invalidf("number matcher value must not be negative: %d", node.Int)
		}
		return match.Val(uint32(node.Int)), nil

	case ArrayNode:
		var subs []match.Number
		for i, entry := range node.Array {
			m, err := buildNumberMatcher(entry)
			if err != nil {
				return match.Number{}, fmt.Errorf("[%d]: %w", i, err)
			}
			subs = append(subs, m)
		}
		return match.List(subs...), nil

	case HashNode:
		var min, max *uint32
		for _, bound := range []struct {
			key    string
			target **uint32
		}{
			{"min", &min},
			{"max", &max},
		} {
			sub, ok := node.Get(bound.key)
			if !ok {
				continue
			}
			if sub.Kind != IntNode {
				return match.Number{}, invalidf("%s must be an integer, got %s", bound.key, sub.Kind)
			}
			if sub.Int < 0 {
				return match.Number{}, invalidf("%s must not be negative: %d", bound.key, sub.Int)
			}
			v := uint32(sub.Int)
			*bound.target = &v
		}
		if min != nil && max != nil && *min > *max {
			return match.Number{}, invalidf("min %d is greater than max %d", *min, *max)
		}
		return match.Range(min, max), nil

	default:
		return match.Number{}, invalidf("number matcher must be an integer, array or hash, got %s", node.Kind)
	}
}

var stringMatcherKeys = map[string]match.StringKind{
	"is":          match.StringIs,
	"contains":    match.StringContains,
	"starts_with": match.StringStartsWith,
	"ends_with":   match.StringEndsWith,
	"regex":       match.StringRegex,
}

// buildStringMatcher reads a string matcher hash. Keys are matched
// case-insensitively; when several matcher keys are present, the last one
// in document order wins.
func buildStringMatcher(node Node) (*match.String, error) {
	if node.Kind != HashNode {
		return nil, invalidf("string matcher must be a hash, got %s", node.Kind)
	}

	var found bool
	var kind match.StringKind
	var value string
	for _, entry := range node.Hash {
		k, ok := stringMatcherKeys[strings.ToLower(entry.Key)]
		if !ok {
			continue
		}
		if entry.Value.Kind != StringNode {
			return nil, invalidf("%s must be a string, got %s", entry.Key, entry.Value.Kind)
		}
		found = true
		kind = k
		value = entry.Value.Str
	}
	if !found {
		return nil, invalidf("string matcher needs one of is, contains, starts_with, ends_with, regex")
	}

	if kind == match.StringRegex {
		m, err := match.Regex(value)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		return &m, nil
	}
	m := match.String{Kind: kind, Value: value}
	return &m, nil
}

var actionBuilders = map[string]func(data Node, hasData bool) (macro.Action, error){
	"key_sequence": buildKeySequenceAction,
	"enter_text":   buildEnterTextAction,
	"shell":        buildShellAction,
	"wait":         buildWaitAction,
	"control":      buildControlAction,
}

func buildAction(node Node) (macro.Action, error) {
	if node.Kind != HashNode {
		return macro.Action{}, invalidf("action must be a hash, got %s", node.Kind)
	}

	typ, ok := node.Get("type")
	if !ok {
		return macro.Action{}, invalidf("missing type field")
	}
	if typ.Kind != StringNode {
		return macro.Action{}, invalidf("type must be a string, got %s", typ.Kind)
	}

	build, ok := actionBuilders[typ.Str]
	if !ok {
		return macro.Action{}, invalidf("unsupported action type: %q", typ.Str)
	}

	data, hasData := node.Get("data")
	action, err := build(data, hasData)
	if err != nil {
		return macro.Action{}, fmt.Errorf("%s: %w", typ.Str, err)
	}
	return action, nil
}

func buildKeySequenceAction(data Node, hasData bool) (macro.Action, error) {
	action := macro.Action{Type: macro.ActionKeySequence, Count: 1}
	if !hasData {
		return macro.Action{}, invalidf("missing data field")
	}

	// short form: a bare string is the sequence, run once
	if data.Kind == StringNode {
		action.Sequence = data.Str
		return action, nil
	}
	if data.Kind != HashNode {
		return macro.Action{}, invalidf("data must be a string or hash, got %s", data.Kind)
	}

	seq, ok := data.Get("sequence")
	if !ok || seq.Kind != StringNode {
		return macro.Action{}, invalidf("missing sequence string")
	}
	action.Sequence = seq.Str

	count, err := resolveCount(data)
	if err != nil {
		return macro.Action{}, err
	}
	action.Count = count

	delay, err := resolveDelay(data)
	if err != nil {
		return macro.Action{}, err
	}
	action.Delay = delay

	return action, nil
}

func buildEnterTextAction(data Node, hasData bool) (macro.Action, error) {
	action := macro.Action{Type: macro.ActionEnterText, Count: 1}
	if !hasData {
		return macro.Action{}, invalidf("missing data field")
	}

	if data.Kind == StringNode {
		action.Text = data.Str
		return action, nil
	}
	if data.Kind != HashNode {
		return macro.Action{}, invalidf("data must be a string or hash, got %s", data.Kind)
	}

	text, ok := data.Get("text")
	if !ok || text.Kind != StringNode {
		return macro.Action{}, invalidf("missing text string")
	}
	action.Text = text.Str

	count, err := resolveCount(data)
	if err != nil {
		return macro.Action{}, err
	}
	action.Count = count

	delay, err := resolveDelay(data)
	if err != nil {
		return macro.Action{}, err
	}
	action.Delay = delay

	return action, nil
}

func buildShellAction(data Node, hasData bool) (macro.Action, error) {
	action := macro.Action{Type: macro.ActionShell}
	if !hasData {
		return macro.Action{}, invalidf("missing data field")
	}

	if data.Kind == StringNode {
		action.Command = data.Str
		return action, nil
	}
	if data.Kind != HashNode {
		return macro.Action{}, invalidf("data must be a string or hash, got %s", data.Kind)
	}

	command, ok := data.Get("command")
	if !ok || command.Kind != StringNode {
		return macro.Action{}, invalidf("missing command string")
	}
	action.Command = command.Str

	if args, ok := data.Get("args"); ok {
		if args.Kind != ArrayNode {
			return macro.Action{}, invalidf("args must be an array, got %s", args.Kind)
		}
		for i, arg := range args.Array {
			s, err := scalarToString(arg)
			if err != nil {
				return macro.Action{}, fmt.Errorf("args[%d]: %w", i, err)
			}
			action.Args = append(action.Args, s)
		}
	}

	if env, ok := data.Get("env_vars"); ok {
		if env.Kind != HashNode {
			return macro.Action{}, invalidf("env_vars must be a hash, got %s", env.Kind)
		}
		for _, entry := range env.Hash {
			s, err := scalarToString(entry.Value)
			if err != nil {
				return macro.Action{}, fmt.Errorf("env_vars[%s]: %w", entry.Key, err)
			}
			action.EnvVars = append(action.EnvVars, [2]string{entry.Key, s})
		}
	}

	return action, nil
}

func buildWaitAction(data Node, hasData bool) (macro.Action, error) {
	action := macro.Action{Type: macro.ActionWait}
	if !hasData {
		return macro.Action{}, invalidf("missing data field")
	}

	// short form: a bare integer is the duration in microseconds
	if data.Kind == IntNode {
		if data.Int < 0 {
			return macro.Action{}, invalidf("duration must not be negative: %d", data.Int)
		}
		action.Duration = uint64(data.Int)
		return action, nil
	}
	if data.Kind != HashNode {
		return macro.Action{}, invalidf("data must be an integer or hash, got %s", data.Kind)
	}

	duration, hasMicros := data.Get("duration")
	if hasMicros {
		if duration.Kind != IntNode {
			return macro.Action{}, invalidf("duration must be an integer, got %s", duration.Kind)
		}
		if duration.Int >= 0 {
			action.Duration = uint64(duration.Int)
			return action, nil
		}
	}

	durationMs, hasMillis := data.Get("duration_ms")
	if hasMillis {
		if durationMs.Kind != IntNode {
			return macro.Action{}, invalidf("duration_ms must be an integer, got %s", durationMs.Kind)
		}
		if durationMs.Int >= 0 {
			action.Duration = uint64(durationMs.Int) * 1000
			return action, nil
		}
	}

	if !hasMicros && !hasMillis {
		return macro.Action{}, invalidf("missing duration field")
	}
	return macro.Action{}, invalidf("duration must not be negative")
}

func buildControlAction(data Node, hasData bool) (macro.Action, error) {
	if !hasData {
		return macro.Action{}, invalidf("missing data field")
	}

	var name string
	switch data.Kind {
	case StringNode:
		name = data.Str
	case HashNode:
		sub, ok := data.Get("action")
		if !ok || sub.Kind != StringNode {
			return macro.Action{}, invalidf("missing action string")
		}
		name = sub.Str
	default:
		return macro.Action{}, invalidf("data must be a string or hash, got %s", data.Kind)
	}

	control := macro.ControlAction(name)
	if !macro.SupportedControlActions[control] {
		return macro.Action{}, invalidf("unsupported control action: %q", name)
	}
	return macro.Action{Type: macro.ActionControl, Control: control}, nil
}

func resolveCount(data Node) (int, error) {
	count, ok := data.Get("count")
	if !ok {
		return 1, nil
	}
	if count.Kind != IntNode {
		return 0, invalidf("count must be an integer, got %s", count.Kind)
	}
	if count.Int < 0 {
		return 0, invalidf("count must not be negative: %d", count.Int)
	}
	return int(count.Int), nil
}

// resolveDelay reads the optional inter-key delay. delay is microseconds,
// delay_ms milliseconds; a valid delay wins over delay_ms, negative values
// are discarded as if absent.
func resolveDelay(data Node) (*uint32, error) {
	read := func(key string) (int64, bool, error) {
		node, ok := data.Get(key)
		if !ok {
			return 0, false, nil
		}
		if node.Kind != IntNode {
			return 0, false, invalidf("%s must be an integer, got %s", key, node.Kind)
		}
		if node.Int < 0 {
			return 0, false, nil
		}
		return node.Int, true, nil
	}

	micros, ok, err := read("delay")
	if err != nil {
		return nil, err
	}
	if !ok {
		millis, msOK, err := read("delay_ms")
		if err != nil {
			return nil, err
		}
		if !msOK {
			return nil, nil
		}
		// the multiplication below must not wrap int64
		if millis > math.MaxUint32/1000 {
			return nil, invalidf("delay does not fit in 32 bits: %d ms", millis)
		}
		micros = millis * 1000
	}

	if micros > math.MaxUint32 {
		return nil, invalidf("delay does not fit in 32 bits: %d", micros)
	}
	v := uint32(micros)
	return &v, nil
}

func scalarToString(node Node) (string, error) {
	switch node.Kind {
	case StringNode:
		return node.Str, nil
	case IntNode:
		return fmt.Sprintf("%d", node.Int), nil
	case BoolNode:
		return fmt.Sprintf("%t", node.Bool), nil
	default:
		return "", invalidf("expected a scalar, got %s", node.Kind)
	}
}
