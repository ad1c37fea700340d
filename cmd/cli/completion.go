package main

import (
	"flag"
	"io"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors names completions for flag values; other value flags
// complete to nothing.
var flagPredictors = map[string]complete.Predictor{
	"file":       predict.Files("*.csv"),
	"categories": predict.Files("*.yaml"),
	"config":     predict.Files("*.yaml"),
	"kind":       predict.Set{"statement", "historical"},
}

// completion builds the shell completion tree from the registered commands
// and their flag sets.
func completion(regs []registration) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagsOf(flag.CommandLine),
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	for _, r := range regs {
		fs := flag.NewFlagSet(r.cmd.Name(), flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		r.cmd.SetFlags(fs)
		root.Sub[r.cmd.Name()] = &complete.Command{Flags: flagsOf(fs)}
	}
	return root
}

type boolFlag interface {
	IsBoolFlag() bool
}

func flagsOf(fs *flag.FlagSet) map[string]complete.Predictor {
	out := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			out[f.Name] = p
			return
		}
		if b, ok := f.Value.(boolFlag); ok && b.IsBoolFlag() {
			out[f.Name] = predict.Nothing
			return
		}
		out[f.Name] = predict.Set{}
	})
	return out
}
