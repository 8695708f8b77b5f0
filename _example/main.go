package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/htmgo"
	"github.com/hupe1980/htmgo/testutil"
)

func main() {
	seed := int64(4711)
	columns := 2048
	active := 40
	steps := 5000

	var params htmgo.Params
	params.Defaults()
	params.ColumnCount = columns
	params.Seed = seed

	tm, err := htmgo.New(params)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	rng := testutil.NewRNG(seed)
	patterns := testutil.DisjointPatterns(columns, 10, active)
	stream := rng.WithNoise(testutil.RepeatSequence(patterns, steps/len(patterns)), columns, 0.02)

	fmt.Println("--- Learn ---")
	fmt.Println("Columns:", columns)
	fmt.Println("Steps:", len(stream))

	start := time.Now()

	for _, cols := range stream {
		if err := tm.Compute(ctx, cols, true); err != nil {
			log.Fatal(err)
		}
	}

	end := time.Since(start)

	fmt.Printf("Seconds: %.2f\n", end.Seconds())
	fmt.Printf("Steps/s: %.0f\n\n", float64(len(stream))/end.Seconds())

	fmt.Println("--- State ---")
	fmt.Println("Segments:", tm.Connections().NumSegments())
	fmt.Println("Synapses:", tm.Connections().NumSynapses())
	fmt.Println()

	fmt.Println("--- Predict ---")

	tm.Reset()

	start = time.Now()

	for _, cols := range patterns {
		if err := tm.Compute(ctx, cols, false); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("predicted columns: %d\n", len(tm.PredictedColumns()))
	}

	end = time.Since(start)

	fmt.Printf("Seconds: %.8f\n", end.Seconds())
}
