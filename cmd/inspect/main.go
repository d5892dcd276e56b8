// Command inspect classifies sensor payloads offline, one per line, and
// prints the observation, its token and the decoded phrase as JSON lines.
// Rejected payloads are reported with their reject reason.
//
// Usage:
//
//	go run ./cmd/inspect -in payloads.txt
//	echo 'rain-12' | go run ./cmd/inspect
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/meteo-relay/internal/domain"
)

type result struct {
	Line        int                 `json:"line"`
	Payload     string              `json:"payload"`
	Observation *domain.Observation `json:"observation,omitempty"`
	Token       string              `json:"token,omitempty"`
	Meaning     string              `json:"meaning,omitempty"`
	Reject      string              `json:"reject,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func main() {
	in := flag.String("in", "", "file with one payload per line (default stdin)")
	strict := flag.Bool("strict", false, "exit non-zero if any payload is rejected")
	shapes := flag.Bool("shapes", false, "list the recognized payload shapes in evaluation order and exit")
	flag.Parse()

	if *shapes {
		listShapes(domain.NewClassifier(), os.Stdout)
		return
	}

	src := io.Reader(os.Stdin)
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		src = f
	}

	rejected, err := run(src, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	if *strict && rejected > 0 {
		fmt.Fprintf(os.Stderr, "%d payload(s) rejected\n", rejected)
		os.Exit(1)
	}
}

// run classifies each line of src and writes one JSON result per line to out.
// It returns the number of rejected payloads.
func run(src io.Reader, out io.Writer) (int, error) {
	classifier := domain.NewClassifier()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	scanner := bufio.NewScanner(src)
	rejected := 0
	for n := 1; scanner.Scan(); n++ {
		res := inspect(classifier, n, scanner.Text())
		if res.Reject != "" {
			rejected++
		}
		if err := enc.Encode(res); err != nil {
			return rejected, fmt.Errorf("write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return rejected, fmt.Errorf("read payloads: %w", err)
	}
	return rejected, nil
}

func listShapes(c *domain.Classifier, out io.Writer) {
	for i, shape := range c.Shapes() {
		fmt.Fprintf(out, "%d. %s\n", i+1, shape)
	}
}

func inspect(c *domain.Classifier, line int, payload string) result {
	res := result{Line: line, Payload: payload}
	obs, err := c.Classify(payload)
	if err != nil {
		res.Reject = domain.RejectReason(err)
		res.Error = err.Error()
		return res
	}
	res.Observation = &obs
	res.Token = domain.Encode(obs)
	res.Meaning, _ = domain.Decode(res.Token)
	return res
}
