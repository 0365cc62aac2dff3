// seed_candidates.go: standalone script to read a list of candidate URLs and
// record their scores via the isbaseurl API.
//
// Usage:
//
//	go run scripts/seed_candidates.go -file urls.md -api http://localhost:8610 -token secret
//
// The file holds one URL per line; markdown bullets ("- ", "* ") and blank
// lines are ignored, and lines starting with "#" are treated as headings.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
)

type batchRequest struct {
	URLs   []string `json:"urls"`
	Record bool     `json:"record"`
}

type batchResponse struct {
	Results []*struct {
		ID           string  `json:"id"`
		CandidateURL string  `json:"candidateUrl"`
		Score        float64 `json:"score"`
	} `json:"results"`
}

func main() {
	path := flag.String("file", "urls.md", "path to the URL list")
	apiURL := flag.String("api", "http://localhost:8610", "isbaseurl API base URL")
	token := flag.String("token", "", "admin token, sent as a bearer token")
	batchSize := flag.Int("batch", 100, "URLs per request")
	dryRun := flag.Bool("dry-run", false, "print URLs without posting")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		urls = append(urls, strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("scan %s: %v", *path, err)
	}

	log.Printf("parsed %d urls from %s", len(urls), *path)

	if *dryRun {
		for i, u := range urls {
			fmt.Printf("[%d] %s\n", i+1, u)
		}
		return
	}

	client := &http.Client{}
	recorded, skipped := 0, 0
	for start := 0; start < len(urls); start += *batchSize {
		chunk := urls[start:min(start+*batchSize, len(urls))]
		body, _ := json.Marshal(batchRequest{URLs: chunk, Record: true})
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/score/batch", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip batch at %d: %v", start, err)
			skipped += len(chunk)
			continue
		}
		var out batchResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || err != nil {
			log.Printf("skip batch at %d: status %d", start, resp.StatusCode)
			skipped += len(chunk)
			continue
		}

		for i, r := range out.Results {
			if r == nil {
				log.Printf("not applicable: %s", chunk[i])
				skipped++
				continue
			}
			fmt.Printf("%.4f\t%s\t%s\n", r.Score, r.ID, r.CandidateURL)
			recorded++
		}
	}

	log.Printf("done: %d recorded, %d skipped", recorded, skipped)
}
