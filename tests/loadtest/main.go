package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL         = "http://127.0.0.1:8090"
	numWorkers      = 50
	testDuration    = 10 * time.Second
	numParticipants = 2000
	numQuestions    = 8
	tenantID        = "loadtest"
)

var departments = []string{"physics", "chemistry", "biology", "history", "economics"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	campaignID := fmt.Sprintf("load-%d", time.Now().Unix())

	fmt.Println("=== SurveyCore Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Campaign: %s | Participants: %d | Questions: %d\n\n", campaignID, numParticipants, numQuestions)

	secret := os.Getenv("SURVEY_JWT_SECRET")
	if secret == "" {
		secret = "change-me-jwt-secret"
	}
	admin, err := providers.NewAuthProvider(&structures.Config{Auth: structures.AuthConfig{JWTSecret: secret}}).Sign("loadtest", tenantID, "admin", time.Hour)
	if err != nil {
		fmt.Println("FAILED: sign admin token:", err)
		return
	}

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Print("Launching campaign... ")
	secrets, err := launch(admin, campaignID)
	if err != nil {
		fmt.Println("FAILED:", err)
		return
	}
	fmt.Printf("OK (%d links)\n", len(secrets))

	queue := make(chan string, len(secrets))
	for _, s := range secrets {
		queue <- s
	}
	close(queue)

	// Phase 1: respondents walk start, save, demographics and submit
	fmt.Println("\n--- Phase 1: Respondents (start/save/demographics/submit) ---")
	runPhase(testDuration, func(rng *rand.Rand) []result {
		s, ok := <-queue
		if !ok {
			return []result{doCampaignReport(admin, campaignID)}
		}
		return respond(rng, s)
	})

	// Phase 2: replays of used links and forged tokens next to report reads
	fmt.Println("\n--- Phase 2: Mixed load (20% replay, 10% forged, 70% reports) ---")
	runPhase(testDuration, func(rng *rand.Rand) []result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return []result{doStart("POST /survey/start (replay)", secrets[rng.Intn(len(secrets))], http.StatusConflict)}
		case r < 0.30:
			return []result{doStart("POST /survey/start (forged)", fmt.Sprintf("forged-%d", rng.Int63()), http.StatusUnauthorized)}
		case r < 0.60:
			return []result{doCampaignReport(admin, campaignID)}
		case r < 0.90:
			return []result{doDepartmentReport(rng, admin, campaignID)}
		default:
			return []result{doStatus(admin, campaignID)}
		}
	})

	// Phase 3: read-heavy reporting
	fmt.Println("\n--- Phase 3: Read-heavy load (reports and status) ---")
	runPhase(testDuration, func(rng *rand.Rand) []result {
		r := rng.Float64()
		switch {
		case r < 0.45:
			return []result{doCampaignReport(admin, campaignID)}
		case r < 0.90:
			return []result{doDepartmentReport(rng, admin, campaignID)}
		default:
			return []result{doStatus(admin, campaignID)}
		}
	})
}

func launch(admin, campaignID string) ([]string, error) {
	status, _, err := call(http.MethodPost, "/campaigns", admin, map[string]any{
		"id": campaignID, "name": "Load test", "modules": []string{"M2_QCI"},
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("register: status %d", status)
	}

	participants := make([]map[string]string, numParticipants)
	for i := range participants {
		participants[i] = map[string]string{"participantId": fmt.Sprintf("p%05d", i)}
	}
	status, body, err := call(http.MethodPost, "/campaigns/launch", admin, map[string]any{
		"campaignId": campaignID, "participants": participants,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("launch: status %d", status)
	}

	var res struct {
		Invitations []struct {
			Link string `json:"link"`
		} `json:"invitations"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	secrets := make([]string, 0, len(res.Invitations))
	for _, inv := range res.Invitations {
		u, err := url.Parse(inv.Link)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, u.Query().Get("token"))
	}
	return secrets, nil
}

func respond(rng *rand.Rand, secret string) []result {
	start := time.Now()
	status, body, err := call(http.MethodPost, "/survey/start", "", map[string]string{
		"token": secret, "deviceFingerprint": fmt.Sprintf("fp_%d", rng.Intn(1000)),
	})
	out := []result{{"POST /survey/start", status, time.Since(start), err != nil || status != http.StatusOK}}
	if out[0].err {
		return out
	}
	var admitted struct {
		ResponseID string `json:"responseId"`
	}
	if json.Unmarshal(body, &admitted) != nil {
		return out
	}

	answers := make(map[string]any, numQuestions)
	for q := 0; q < numQuestions; q++ {
		answers[fmt.Sprintf("q%d", q)] = map[string]any{
			"kind": "likert", "dimension": fmt.Sprintf("dim%d", q%3), "value": rng.Intn(5) + 1,
		}
	}
	out = append(out, timed("POST /survey/save", http.StatusOK, "", "/survey/save", map[string]any{
		"responseId": admitted.ResponseID, "moduleCode": "M2_QCI", "answers": answers,
	}))
	out = append(out, timed("POST /survey/demographics", http.StatusNoContent, "", "/survey/demographics", map[string]string{
		"responseId": admitted.ResponseID, "department": departments[rng.Intn(len(departments))],
	}))
	out = append(out, timed("POST /survey/submit", http.StatusOK, "", "/survey/submit", map[string]string{
		"responseId": admitted.ResponseID,
	}))
	return out
}

func doStart(endpoint, secret string, want int) result {
	return timed(endpoint, want, "", "/survey/start", map[string]string{"token": secret})
}

func doCampaignReport(admin, campaignID string) result {
	return timedGet("GET /reports/campaign", admin, "/reports/campaign?id="+url.QueryEscape(campaignID))
}

func doDepartmentReport(rng *rand.Rand, admin, campaignID string) result {
	q := url.Values{"id": {campaignID}, "department": {departments[rng.Intn(len(departments))]}}
	return timedGet("GET /reports/department", admin, "/reports/department?"+q.Encode())
}

func doStatus(admin, campaignID string) result {
	return timedGet("GET /campaigns/status", admin, "/campaigns/status?id="+url.QueryEscape(campaignID))
}

func timed(endpoint string, want int, bearer, path string, body any) result {
	start := time.Now()
	status, _, err := call(http.MethodPost, path, bearer, body)
	return result{endpoint, status, time.Since(start), err != nil || status != want}
}

func timedGet(endpoint, bearer, path string) result {
	start := time.Now()
	status, _, err := call(http.MethodGet, path, bearer, nil)
	return result{endpoint, status, time.Since(start), err != nil || status != http.StatusOK}
}

func call(method, path, bearer string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) []result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					for _, r := range workFn(rng) {
						totalOps.Add(1)
						results <- r
					}
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-30s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 96))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-30s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 96))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
