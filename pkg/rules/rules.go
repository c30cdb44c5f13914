// Package rules turns declarative per-field rules into a merge callback.
package rules

import (
	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smykla-skalski/objmerge/internal/configtypes"
	"github.com/smykla-skalski/objmerge/pkg/merge"
	"github.com/smykla-skalski/objmerge/pkg/value"
)

var (
	// ErrInvalidRule indicates a rule that cannot be compiled
	ErrInvalidRule = errors.New("invalid rule")
	// ErrRuleEval indicates a rule expression that failed at merge time
	ErrRuleEval = errors.New("rule evaluation failed")
)

// Env is the environment rule expressions are evaluated against.
type Env struct {
	Path         string `expr:"path"`
	Key          string `expr:"key"`
	Depth        int    `expr:"depth"`
	Left         any    `expr:"left"`
	Right        any    `expr:"right"`
	LeftKind     string `expr:"leftKind"`
	RightKind    string `expr:"rightKind"`
	LeftDefined  bool   `expr:"leftDefined"`
	RightDefined bool   `expr:"rightDefined"`
	Recursive    bool   `expr:"recursive"`
}

// NewEnv builds the environment for one field.
func NewEnv(state merge.State) Env {
	nullAsUndefined := state.Options.Has(merge.NullAsUndefined)

	return Env{
		Path:         state.Path.String(),
		Key:          state.Key.String(),
		Depth:        state.Depth,
		Left:         state.Left.Interface(),
		Right:        state.Right.Interface(),
		LeftKind:     state.Left.Kind().String(),
		RightKind:    state.Right.Kind().String(),
		LeftDefined:  !value.IsUndefined(state.Left, nullAsUndefined),
		RightDefined: !value.IsUndefined(state.Right, nullAsUndefined),
		Recursive:    state.Recursive,
	}
}

type rule struct {
	action configtypes.RuleAction
	when   *vm.Program
	value  *vm.Program
	source configtypes.RuleConfig
}

// RuleSet is an ordered list of compiled rules. It is safe for concurrent use.
type RuleSet struct {
	rules []rule
}

// Compile validates and compiles rules in order.
func Compile(configs []configtypes.RuleConfig) (*RuleSet, error) {
	set := &RuleSet{rules: make([]rule, 0, len(configs))}

	for i, cfg := range configs {
		r, err := compileRule(cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d", i)
		}

		set.rules = append(set.rules, r)
	}

	return set, nil
}

func compileRule(cfg configtypes.RuleConfig) (rule, error) {
	r := rule{action: cfg.Action, source: cfg}

	switch cfg.Action {
	case configtypes.RuleActionValue:
		if cfg.Value == "" {
			return rule{}, errors.Wrap(ErrInvalidRule, "action value requires a value expression")
		}
	case configtypes.RuleActionLeft,
		configtypes.RuleActionRight,
		configtypes.RuleActionDropLeft,
		configtypes.RuleActionDropRight,
		configtypes.RuleActionContinue:
		if cfg.Value != "" {
			return rule{}, errors.Wrapf(ErrInvalidRule, "action %s does not take a value expression", cfg.Action)
		}
	default:
		return rule{}, errors.Wrapf(ErrInvalidRule, "unknown action %q", cfg.Action)
	}

	if cfg.When != "" {
		prg, err := expr.Compile(cfg.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return rule{}, errors.Wrapf(errors.Mark(err, ErrInvalidRule), "compiling when %q", cfg.When)
		}

		r.when = prg
	}

	if cfg.Value != "" {
		prg, err := expr.Compile(cfg.Value, expr.Env(Env{}))
		if err != nil {
			return rule{}, errors.Wrapf(errors.Mark(err, ErrInvalidRule), "compiling value %q", cfg.Value)
		}

		r.value = prg
	}

	return r, nil
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.rules)
}

// Callback returns a merge callback applying the first matching rule. A field
// no rule matches is merged normally.
func (s *RuleSet) Callback() merge.Callback {
	return func(state merge.State) (merge.Result, error) {
		return s.Apply(state)
	}
}

// Apply evaluates the rules against one field.
func (s *RuleSet) Apply(state merge.State) (merge.Result, error) {
	if s.Len() == 0 {
		return merge.Continue(), nil
	}

	env := NewEnv(state)

	for i, r := range s.rules {
		matched, err := r.matches(env)
		if err != nil {
			return merge.Result{}, errors.Wrapf(err, "rule %d", i)
		}

		if !matched {
			continue
		}

		res, err := r.apply(state, env)
		if err != nil {
			return merge.Result{}, errors.Wrapf(err, "rule %d", i)
		}

		return res, nil
	}

	return merge.Continue(), nil
}

func (r rule) matches(env Env) (bool, error) {
	if r.when == nil {
		return true, nil
	}

	out, err := expr.Run(r.when, env)
	if err != nil {
		return false, errors.Wrapf(errors.Mark(err, ErrRuleEval), "evaluating when %q", r.source.When)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, errors.Wrapf(ErrRuleEval, "when %q returned %T", r.source.When, out)
	}

	return matched, nil
}

func (r rule) apply(state merge.State, env Env) (merge.Result, error) {
	switch r.action {
	case configtypes.RuleActionLeft:
		return merge.Final(state.Left), nil
	case configtypes.RuleActionRight:
		return merge.Final(state.Right), nil
	case configtypes.RuleActionDropLeft:
		return merge.Substitute(value.Undefined(), state.Right), nil
	case configtypes.RuleActionDropRight:
		return merge.Substitute(state.Left, value.Undefined()), nil
	case configtypes.RuleActionValue:
		out, err := expr.Run(r.value, env)
		if err != nil {
			return merge.Result{}, errors.Wrapf(errors.Mark(err, ErrRuleEval), "evaluating value %q", r.source.Value)
		}

		v, err := value.FromAny(out)
		if err != nil {
			return merge.Result{}, errors.Wrapf(errors.Mark(err, ErrRuleEval), "value %q", r.source.Value)
		}

		return merge.Final(v), nil
	default:
		return merge.Continue(), nil
	}
}
