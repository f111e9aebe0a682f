// Command pklcore is a thin CLI wrapping internal/evaluator: a cobra root
// command with one subcommand per surface operation, delegating all real
// work to a tested internal package (spec §6's
// evaluate/read_property/render/mirror_of).
//
// The core never parses Pkl source (spec §1 Non-goals), so this CLI has no
// file-based module loader to wire up; it demonstrates the surface against
// a small built-in demo module instead of a real resolve(uri) backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pklcore/typedcore/internal/config"
	"github.com/pklcore/typedcore/internal/evaluator"
	"github.com/pklcore/typedcore/internal/ident"
	"github.com/pklcore/typedcore/internal/vm"
)

// demoResolver serves a single fixed module value per uri, standing in for
// a real module loader (spec §6's Resolver collaborator).
type demoResolver struct {
	modules map[string]vm.Value
}

func (r demoResolver) Resolve(uri string) (vm.Value, error) {
	v, ok := r.modules[uri]
	if !ok {
		return nil, fmt.Errorf("no demo module registered for %q", uri)
	}
	return v, nil
}

// buildDemoModule constructs a small Typed object by hand — the shape a
// parser front-end would otherwise produce — so the CLI has something to
// evaluate, read properties from, render, and mirror.
func buildDemoModule(reg *vm.Registry) vm.Value {
	class := vm.NewClass("demo.Example", "demo", nil, vm.OpenOpen)
	_ = class.DeclareProperty(&vm.Property{Name: ident.Regular("name"), Declared: vm.StringLiteralType{Value: "pklcore"}})
	_ = class.DeclareProperty(&vm.Property{Name: ident.Regular("version"), Declared: vm.NonFinalClassType{Class: reg.Builtins().Int}})
	reg.RegisterClass(class)

	proto := reg.PrototypeOf(class)
	mod := vm.NewObject(vm.ObjectTyped, class, proto)
	mod.SetProperty(&vm.Member{
		Kind:     vm.MemberProperty,
		Key:      vm.MemberKey{Ident: ident.Regular("name")},
		Declared: vm.StringLiteralType{Value: "pklcore"},
		BodyKind: vm.BodyConstant,
		Constant: vm.String("pklcore"),
	})
	mod.SetProperty(&vm.Member{
		Kind:     vm.MemberProperty,
		Key:      vm.MemberKey{Ident: ident.Regular("version")},
		Declared: vm.NonFinalClassType{Class: reg.Builtins().Int},
		BodyKind: vm.BodyConstant,
		Constant: vm.Int(1),
	})
	return mod
}

func newEvaluator() *evaluator.Evaluator {
	cfg := config.DefaultConfig()
	reg := vm.NewRegistry()
	mod := buildDemoModule(reg)
	e := evaluator.New(demoResolver{modules: map[string]vm.Value{"demo:Example": mod}}, evaluator.AllowAll{}, &cfg)
	e.Registry = reg
	return e
}

func main() {
	root := &cobra.Command{
		Use:   "pklcore",
		Short: "Typed Object Core CLI",
		Long:  "Exercises the Typed Object Core's evaluate/read_property/render/mirror_of surface (spec §6).",
	}

	var kind string

	evalCmd := &cobra.Command{
		Use:   "eval [module-uri]",
		Short: "Evaluate a module to a fully materialized top-level value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEvaluator()
			v, err := e.Evaluate(args[0])
			if err != nil {
				return err
			}
			out, err := e.Render(v, "json")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	readCmd := &cobra.Command{
		Use:   "read [module-uri] [property]",
		Short: "Materialize a single property on demand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEvaluator()
			v, err := e.Evaluate(args[0])
			if err != nil {
				return err
			}
			prop, err := e.ReadProperty(v, args[1])
			if err != nil {
				return err
			}
			fmt.Println(vm.Render(prop))
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render [module-uri]",
		Short: "Render a module with an external renderer plug-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEvaluator()
			v, err := e.Evaluate(args[0])
			if err != nil {
				return err
			}
			out, err := e.Render(v, kind)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	renderCmd.Flags().StringVar(&kind, "kind", "json", "renderer kind (json, yaml)")

	mirrorCmd := &cobra.Command{
		Use:   "mirror [module-uri]",
		Short: "Print a reflective descriptor of a module's runtime shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEvaluator()
			v, err := e.Evaluate(args[0])
			if err != nil {
				return err
			}
			mirror := e.MirrorOf(v)
			out, err := e.Render(mirror, "json")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	root.AddCommand(evalCmd, readCmd, renderCmd, mirrorCmd)
	_ = context.Background()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
