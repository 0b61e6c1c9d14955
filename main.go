package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/exp/rand"

	"github.com/drillan/quantforge/batch"
	"github.com/drillan/quantforge/batchio"
	"github.com/drillan/quantforge/config"
)

const demoBatchSize = 250000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var req *batchio.Request
	if len(os.Args) > 1 {
		req, err = batchio.LoadRequest(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
	} else {
		fmt.Printf("No request file given, pricing a random batch of %d options\n", demoBatchSize)
		req = demoRequest()
	}

	st, err := batch.SelectStrategy(req.Length())
	if err != nil {
		log.Fatal(err)
	}
	if st.Parallel {
		fmt.Printf("Using %d workers, chunk size %d (max workers %d)\n", st.Workers, st.ChunkSize, cfg.MaxWorkers)
	} else {
		fmt.Println("Running sequentially")
	}

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(req.Length()),
		mpb.PrependDecorators(
			decor.Name("Progress"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	start := time.Now()
	res, err := req.Run(func(done int) { bar.IncrBy(done) })
	if err != nil {
		log.Fatal(err)
	}
	p.Wait()
	fmt.Printf("Ran %s over %d elements in %s\n", res.Operation, res.Length, time.Since(start))

	f := fmt.Sprintf("results_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	if err := batchio.WriteResult(f, res); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Results written to %s\n", f)
}

// demoRequest builds a random call batch around spot 100.
func demoRequest() *batchio.Request {
	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	req := &batchio.Request{
		Model:     os.Getenv("QF_MODEL"),
		Operation: batchio.OpPrice,
		IsCall:    true,
		Spot:      []float64{100},
		Rate:      []float64{0.05},
		Strike:    make([]float64, demoBatchSize),
		Time:      make([]float64, demoBatchSize),
		Vol:       make([]float64, demoBatchSize),
	}
	for i := 0; i < demoBatchSize; i++ {
		req.Strike[i] = 60 + 80*rng.Float64()
		req.Time[i] = 0.05 + 1.95*rng.Float64()
		req.Vol[i] = 0.08 + 0.5*rng.Float64()
	}
	return req
}
