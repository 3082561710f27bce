package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/neurlang/perceptron/arff"
	"github.com/neurlang/perceptron/dataset"
	"github.com/neurlang/perceptron/net/mlp"
)

var dataFile = flag.String("data", "", "ARFF dataset to classify (.arff or .arff.xz)")
var modelFile = flag.String("model", "", "trained model file")

func main() {
	flag.Parse()
	if *dataFile == "" || *modelFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := arff.Load(*dataFile)
	if err != nil {
		log.Fatal(err)
	}
	if data.Schema().ClassIndex() == dataset.NoClass {
		if err := data.SetClassIndex(data.Schema().NumAttributes() - 1); err != nil {
			log.Fatal(err)
		}
	}

	net, err := mlp.ReadModelFile(*modelFile)
	if err != nil {
		log.Fatal(err)
	}
	if !net.Schema().EqualHeaders(data.Schema()) {
		log.Fatal("model was trained against a different schema")
	}

	class := data.Schema().ClassAttribute()
	var hits, total int
	for i := 0; i < data.NumRows(); i++ {
		row := data.Row(i)
		c, err := net.Classify(row)
		if err != nil {
			log.Fatalf("row %d: %v", i, err)
		}
		fmt.Println(class.Value(c))
		if !row.IsMissing(data.Schema().ClassIndex()) {
			total++
			if c == int(row.ClassValue()) {
				hits++
			}
		}
	}
	if total > 0 {
		fmt.Fprintf(os.Stderr, "accuracy: %d/%d (%.4f)\n", hits, total, float64(hits)/float64(total))
	}
}
