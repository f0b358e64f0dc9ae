package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/session"
)

// demoSizes maps the size variation values to element counts.
var demoSizes = map[string]int{
	"1k":  1_000,
	"10k": 10_000,
}

// registerDemoCases adds the built-in benchmark cases to the session.
// Input data is pre-generated with a fixed seed so runs are comparable.
func registerDemoCases(s *session.Session) error {
	rng := rand.New(rand.NewSource(42))

	ints := make(map[string][]int, len(demoSizes))
	payloads := make(map[string][]byte, len(demoSizes))
	for label, n := range demoSizes {
		xs := make([]int, n)
		for i := range xs {
			xs[i] = rng.Int()
		}
		ints[label] = xs

		p := make([]byte, n)
		rng.Read(p)
		payloads[label] = p
	}

	type record struct {
		ID    int      `json:"id"`
		Name  string   `json:"name"`
		Score float64  `json:"score"`
		Tags  []string `json:"tags"`
	}
	records := make([]record, 500)
	for i := range records {
		records[i] = record{
			ID:    i,
			Name:  fmt.Sprintf("record-%04d", i),
			Score: rng.Float64() * 100,
			Tags:  []string{"alpha", "beta"},
		}
	}

	cases := []*model.Case{
		{
			Group:       "sorting",
			Title:       "sort ints",
			Description: "copies and sorts a pseudo-random int slice",
			N:           1,
			Variations:  map[string][]string{"size": {"1k", "10k"}},
			VariationCols: map[string]string{
				"size": "slice size",
			},
			Action: func(kwargs map[string]string) error {
				src, ok := ints[kwargs["size"]]
				if !ok {
					return fmt.Errorf("unknown size %q", kwargs["size"])
				}
				data := make([]int, len(src))
				copy(data, src)
				sort.Ints(data)
				return nil
			},
		},
		{
			Group:       "hashing",
			Title:       "sha256 sum",
			Description: "hashes a pseudo-random payload",
			N:           1,
			Variations:  map[string][]string{"size": {"1k", "10k"}},
			VariationCols: map[string]string{
				"size": "payload bytes",
			},
			Action: func(kwargs map[string]string) error {
				p, ok := payloads[kwargs["size"]]
				if !ok {
					return fmt.Errorf("unknown size %q", kwargs["size"])
				}
				sum := sha256.Sum256(p)
				_ = sum
				return nil
			},
		},
		{
			Group:       "encoding",
			Title:       "json marshal",
			Description: "marshals a fixed record slice",
			N:           1,
			Action: func(map[string]string) error {
				_, err := json.Marshal(records)
				return err
			},
		},
	}

	for _, c := range cases {
		// Keep the demo quick; the library defaults suit real suites.
		c.Iterations = 10
		c.WarmupIterations = 3
		c.MinTime = time.Second
		c.MaxTime = 3 * time.Second
		if err := s.Register(c); err != nil {
			return err
		}
	}
	return nil
}
