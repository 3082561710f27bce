package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/neurlang/perceptron/compile"
	"github.com/neurlang/perceptron/net/mlp"
)

var modelFile = flag.String("model", "", "trained model file")
var outFile = flag.String("o", "", "output file (default stdout)")

func main() {
	flag.Parse()
	if *modelFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	net, err := mlp.ReadModelFile(*modelFile)
	if err != nil {
		log.Fatal(err)
	}

	var out io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	if err := compile.Emit(out, net); err != nil {
		log.Fatal(err)
	}
}
