package supernode

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition file names inside each supernode directory.
const (
	SupernodeFile = "supernode.yaml"
	NLGFile       = "nlg.yaml"
)

// Load reads every supernode directory under root. A directory without
// supernode.yaml is skipped; nlg.yaml is optional.
func Load(fsys fs.FS, root string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read supernode root %s: %w", root, err)
	}
	var nodes []*Supernode
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := path.Join(root, e.Name())
		sn, err := loadSupernode(fsys, dir, e.Name())
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sn)
	}
	return NewLibrary(nodes...), nil
}

func loadSupernode(fsys fs.FS, dir, name string) (*Supernode, error) {
	spec, err := readYAML(fsys, path.Join(dir, SupernodeFile))
	if err != nil {
		return nil, err
	}
	sn := &Supernode{Name: name}
	if err := sn.decodeSpec(spec); err != nil {
		return nil, fmt.Errorf("%s/%s: %w", dir, SupernodeFile, err)
	}
	nlg, err := readYAML(fsys, path.Join(dir, NLGFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := sn.decodeNLG(nlg); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", dir, NLGFile, err)
		}
	}
	return sn, nil
}

// Parse decodes a supernode from its two documents. nlg may be nil.
func Parse(name string, spec, nlg []byte) (*Supernode, error) {
	sn := &Supernode{Name: name}
	node, err := decodeDocument(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := sn.decodeSpec(node); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if nlg != nil {
		node, err := decodeDocument(nlg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := sn.decodeNLG(node); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return sn, nil
}

func readYAML(fsys fs.FS, name string) (*yaml.Node, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	node, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return node, nil
}

func decodeDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	return doc.Content[0], nil
}

func (sn *Supernode) decodeSpec(n *yaml.Node) error {
	if err := expectMapping(n, "supernode"); err != nil {
		return err
	}
	return eachPair(n, func(key string, v *yaml.Node) error {
		switch key {
		case "name":
		case "requirements":
			reqs, err := decodeRequirements(v)
			sn.Requirements = reqs
			return err
		case "prompt":
			return sn.decodePrompt(v)
		case "global_post_supernode_state_updates":
			updates, err := decodeUpdates(v)
			sn.GlobalUpdates = updates
			return err
		case "unconditional_prompt_updates":
			sn.UnconditionalPromptUpdates = map[string][]KV{}
			if isNone(v) {
				return nil
			}
			return eachPair(v, func(caseName string, body *yaml.Node) error {
				kvs, err := decodeKVs(body)
				sn.UnconditionalPromptUpdates[caseName] = kvs
				return err
			})
		case "prompt_ranking":
			return v.Decode(&sn.PromptRanking)
		case "nlu":
			sn.NLU = v.Value
		case "prompt_nlu":
			sn.PromptNLU = v.Value
		default:
			return fmt.Errorf("%w: unknown key %q", ErrBadDefinition, key)
		}
		return nil
	})
}

func (sn *Supernode) decodePrompt(n *yaml.Node) error {
	switch {
	case isNone(n):
		return nil
	case n.Kind == yaml.MappingNode:
		return eachPair(n, func(key string, v *yaml.Node) error {
			if key != "call_method" {
				return fmt.Errorf("%w: prompt key %q", ErrBadDefinition, key)
			}
			sn.Prompt.CallMethod = v.Value
			return nil
		})
	case n.Kind == yaml.SequenceNode:
		for _, item := range n.Content {
			var gp GuardedPrompt
			err := eachPair(item, func(key string, v *yaml.Node) error {
				switch key {
				case "required":
					kvs, err := decodeKVs(v)
					gp.Required = kvs
					return err
				case "prompt":
					gp.Prompt = v.Value
					return nil
				}
				return fmt.Errorf("%w: prompt case key %q", ErrBadDefinition, key)
			})
			if err != nil {
				return err
			}
			sn.Prompt.Cases = append(sn.Prompt.Cases, gp)
		}
		return nil
	}
	return fmt.Errorf("%w: prompt must be None, a list or call_method", ErrBadDefinition)
}

func (sn *Supernode) decodeNLG(n *yaml.Node) error {
	if err := expectMapping(n, "nlg"); err != nil {
		return err
	}
	return eachPair(n, func(key string, v *yaml.Node) error {
		switch key {
		case "locals":
			if isNone(v) {
				return nil
			}
			return eachPair(v, func(name string, body *yaml.Node) error {
				in, err := parseInstrs(body)
				sn.Locals = append(sn.Locals, Local{Name: name, Value: in})
				return err
			})
		case "subnodes":
			if isNone(v) {
				return nil
			}
			if v.Kind != yaml.SequenceNode {
				return fmt.Errorf("%w: subnodes must be a list", ErrBadDefinition)
			}
			for _, item := range v.Content {
				sub, err := decodeSubnode(item)
				if err != nil {
					return err
				}
				sn.Subnodes = append(sn.Subnodes, sub)
			}
		case "unconditional_prompt":
			if isNone(v) {
				return nil
			}
			for _, item := range v.Content {
				var up UnconditionalPrompt
				err := eachPair(item, func(key string, v *yaml.Node) error {
					switch key {
					case "case_name":
						up.CaseName = v.Value
					case "entry_conditions":
						kvs, err := decodeKVs(v)
						up.Conditions = kvs
						return err
					case "prompt":
						up.Prompt = v.Value
					default:
						return fmt.Errorf("%w: unconditional prompt key %q", ErrBadDefinition, key)
					}
					return nil
				})
				if err != nil {
					return err
				}
				sn.UnconditionalPrompts = append(sn.UnconditionalPrompts, up)
			}
		default:
			return fmt.Errorf("%w: unknown nlg key %q", ErrBadDefinition, key)
		}
		return nil
	})
}

func decodeSubnode(n *yaml.Node) (Subnode, error) {
	var sub Subnode
	err := eachPair(n, func(key string, v *yaml.Node) error {
		switch key {
		case "node_name", "name":
			sub.Name = v.Value
		case "entry_conditions":
			if isNone(v) {
				return nil
			}
			return eachPair(v, func(p string, target *yaml.Node) error {
				c := Condition{Path: p}
				switch {
				case isNone(target):
					c.Kind = CondNone
				case target.Value == "True" || (target.Tag == "!!bool" && scalar(target) == true):
					c.Kind = CondTrue
				case target.Value == "False" || (target.Tag == "!!bool" && scalar(target) == false):
					c.Kind = CondFalse
				default:
					c.Kind, c.Target = CondValue, scalar(target)
				}
				sub.Conditions = append(sub.Conditions, c)
				return nil
			})
		case "response":
			in, err := parseInstrs(v)
			sub.Response = in
			return err
		case "updates", "state_updates":
			updates, err := decodeUpdates(v)
			sub.Updates = updates
			return err
		case "expose_vars":
			if isNone(v) {
				return nil
			}
			return v.Decode(&sub.ExposeVars)
		default:
			return fmt.Errorf("%w: unknown subnode key %q", ErrBadDefinition, key)
		}
		return nil
	})
	if err != nil {
		return sub, fmt.Errorf("subnode %q: %w", sub.Name, err)
	}
	return sub, nil
}

func decodeRequirements(n *yaml.Node) ([][]KV, error) {
	if isNone(n) {
		return nil, nil
	}
	if n.Kind == yaml.MappingNode {
		kvs, err := decodeKVs(n)
		return [][]KV{kvs}, err
	}
	var out [][]KV
	for _, item := range n.Content {
		kvs, err := decodeKVs(item)
		if err != nil {
			return nil, err
		}
		out = append(out, kvs)
	}
	return out, nil
}

func decodeUpdates(n *yaml.Node) ([]Update, error) {
	if isNone(n) {
		return nil, nil
	}
	var out []Update
	err := eachPair(n, func(key string, v *yaml.Node) error {
		if !strings.HasPrefix(key, "state.") && !resultKeys[key] {
			return fmt.Errorf("%w: unknown update %q", ErrBadDefinition, key)
		}
		in, err := parseInstrs(v)
		out = append(out, Update{Key: key, Value: in})
		return err
	})
	return out, err
}

// decodeKVs reads a mapping of plain values, preserving order.
func decodeKVs(n *yaml.Node) ([]KV, error) {
	if isNone(n) {
		return nil, nil
	}
	var out []KV
	err := eachPair(n, func(key string, v *yaml.Node) error {
		out = append(out, KV{Key: key, Value: scalar(v)})
		return nil
	})
	return out, err
}

// parseInstrs reads a list of instructions, or a single one.
func parseInstrs(n *yaml.Node) (Instrs, error) {
	if n.Kind == yaml.SequenceNode {
		out := make(Instrs, 0, len(n.Content))
		for _, item := range n.Content {
			in, err := parseInstr(item)
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		}
		return out, nil
	}
	in, err := parseInstr(n)
	if err != nil {
		return nil, err
	}
	return Instrs{in}, nil
}

func parseInstr(n *yaml.Node) (Instr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!str" && n.Value != "None" {
			return Instr{Kind: KindText, Text: n.Value}, nil
		}
		return Instr{Kind: KindLiteral, Value: scalar(n)}, nil
	case yaml.SequenceNode:
		return Instr{}, fmt.Errorf("%w: nested list outside an instruction", ErrBadDefinition)
	case yaml.MappingNode:
	default:
		return Instr{}, fmt.Errorf("%w: unsupported YAML node", ErrBadDefinition)
	}
	if len(n.Content) != 2 {
		return Instr{}, fmt.Errorf("%w: an instruction has exactly one operation", ErrBadDefinition)
	}
	op, arg := n.Content[0].Value, n.Content[1]
	switch op {
	case OpOneOf:
		in := Instr{Kind: KindOneOf}
		for _, opt := range arg.Content {
			body := opt
			if opt.Kind == yaml.MappingNode && len(opt.Content) == 2 && opt.Content[0].Value == "option" {
				body = opt.Content[1]
			}
			choice, err := parseInstrs(body)
			if err != nil {
				return Instr{}, err
			}
			in.Options = append(in.Options, choice)
		}
		return in, nil
	case OpEval:
		return Instr{Kind: KindEval, Text: arg.Value}, nil
	case OpVal:
		return Instr{Kind: KindVal, Text: arg.Value}, nil
	case OpEntityName:
		return Instr{Kind: KindEntityName}, nil
	case OpConstant:
		return Instr{Kind: KindConstant, Text: arg.Value}, nil
	case OpHelper:
		in := Instr{Kind: KindHelper}
		err := eachPair(arg, func(key string, v *yaml.Node) error {
			switch key {
			case "name":
				in.Helper = v.Value
			case "args":
				for _, a := range v.Content {
					if a.Kind == yaml.ScalarNode && a.Tag == "!!str" {
						in.Args = append(in.Args, Instr{Kind: KindVal, Text: a.Value})
						continue
					}
					ai, err := parseInstr(a)
					if err != nil {
						return err
					}
					in.Args = append(in.Args, ai)
				}
			default:
				return fmt.Errorf("%w: nlg_helper key %q", ErrBadDefinition, key)
			}
			return nil
		})
		return in, err
	case OpInflect:
		in := Instr{Kind: KindInflect}
		err := eachPair(arg, func(key string, v *yaml.Node) error {
			switch key {
			case "inflect_token":
				in.Token = v.Value
			case "inflect_entity":
				in.Entity = v.Value
			case "inflect_form":
				in.Form = v.Value
			default:
				return fmt.Errorf("%w: inflect key %q", ErrBadDefinition, key)
			}
			return nil
		})
		return in, err
	case OpInflectHelper:
		in := Instr{Kind: KindInflectHelper}
		err := eachPair(arg, func(key string, v *yaml.Node) error {
			switch key {
			case "type":
				in.InflectType = v.Value
			case "str":
				inner, err := parseInstrs(v)
				in.Inner = inner
				return err
			default:
				return fmt.Errorf("%w: inflect_helper key %q", ErrBadDefinition, key)
			}
			return nil
		})
		return in, err
	case OpNeural:
		in := Instr{Kind: KindNeural}
		err := eachPair(arg, func(key string, v *yaml.Node) error {
			var err error
			switch key {
			case "prefix":
				in.Prefix, err = parseOptional(v)
			case "condition":
				in.Condition = v.Value
			case "fallback":
				in.Fallback, err = parseOptional(v)
			case "suffix":
				in.Suffix, err = parseOptional(v)
			default:
				err = fmt.Errorf("%w: neural_generation key %q", ErrBadDefinition, key)
			}
			return err
		})
		return in, err
	}
	return Instr{}, fmt.Errorf("%w: unknown operation %q", ErrBadDefinition, op)
}

func parseOptional(n *yaml.Node) (Instrs, error) {
	if isNone(n) {
		return nil, nil
	}
	return parseInstrs(n)
}

func expectMapping(n *yaml.Node, what string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s must be a mapping", ErrBadDefinition, what)
	}
	return nil
}

func eachPair(n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if isNone(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: expected a mapping at line %d", ErrBadDefinition, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func isNone(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "None"))
}

// scalar decodes a plain value; None, True and False are read as their
// literal meaning even when quoted.
func scalar(n *yaml.Node) any {
	if isNone(n) {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "True":
			return true
		case "False":
			return false
		}
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return n.Value
	}
	return v
}
