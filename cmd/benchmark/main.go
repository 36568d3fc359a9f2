// Benchmark tool for testing Heron against labeled claims data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/claims.csv -url http://localhost:8080
//
// This tool:
//   1. Reads labeled claim data (with fraud labels) from CSV
//   2. Sends each claim to Heron for adjudication
//   3. Compares Heron's verdict (DENIED/UNDER_REVIEW vs APPROVED) with actual fraud labels
//   4. Calculates precision, recall, F1-score, and confusion matrix
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledClaim represents a row from a labeled claims dataset.
type LabeledClaim struct {
	PolicyNumber      string
	PatientName       string
	HospitalName      string
	Diagnosis         string
	TreatmentDuration int
	RoomType          string
	RoomRent          float64
	TotalClaimAmount  float64
	BilledAmount      float64
	AdmissionDate     string
	DischargeDate     string
	PolicyPeriod      string
	PlanTier          string
	IsFraud           bool
}

// AdjudicateRequest is the Heron API request format.
type AdjudicateRequest struct {
	PolicyNumber      string  `json:"policy_number"`
	PatientName       string  `json:"patient_name"`
	HospitalName      string  `json:"hospital_name,omitempty"`
	Diagnosis         string  `json:"diagnosis"`
	TreatmentDuration int     `json:"treatment_duration"`
	RoomType          string  `json:"room_type,omitempty"`
	RoomRent          float64 `json:"room_rent,omitempty"`
	TotalClaimAmount  float64 `json:"total_claim_amount"`
	BilledAmount      float64 `json:"billed_amount,omitempty"`
	AdmissionDate     string  `json:"admission_date,omitempty"`
	DischargeDate     string  `json:"discharge_date,omitempty"`
	PolicyPeriod      string  `json:"policy_period,omitempty"`
	PlanTier          string  `json:"plan_tier,omitempty"`
}

// AdjudicateResponse is the Heron API response format.
type AdjudicateResponse struct {
	AdjudicationID string   `json:"adjudication_id"`
	ClaimID        string   `json:"claim_id"`
	Status         string   `json:"status"` // APPROVED / DENIED / UNDER_REVIEW
	FraudScore     float64  `json:"fraud_score"`
	Reasons        []string `json:"reasons"`
}

// Metrics tracks benchmark results
type Metrics struct {
	TruePositives  int64 // Fraud flagged (DENIED or UNDER_REVIEW)
	FalsePositives int64 // Non-fraud flagged
	TrueNegatives  int64 // Non-fraud approved
	FalseNegatives int64 // Fraud approved (missed fraud!)

	TotalProcessed int64
	TotalFraud     int64
	TotalNonFraud  int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to labeled claims CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Heron base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum claims to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	fraudOnly := flag.Bool("fraud-only", false, "Only test fraudulent claims")
	sampleRate := flag.Float64("sample", 1.0, "Sample rate for non-fraud (0.0-1.0)")
	strict := flag.Bool("strict", false, "Count only DENIED as a fraud verdict (exclude UNDER_REVIEW)")
	verbose := flag.Bool("verbose", false, "Print each claim result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/claims.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("=================================================================")
	fmt.Println("          HERON BENCHMARK - Claims Fraud Detection")
	fmt.Println("=================================================================")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Heron URL:   %s\n", *baseURL)
	fmt.Printf("Tenant ID:   %s\n", *tenantID)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Fraud Only:  %v\n", *fraudOnly)
	fmt.Printf("Sample Rate: %.2f\n", *sampleRate)
	fmt.Printf("Strict:      %v\n", *strict)
	fmt.Println()

	// Check Heron is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Heron not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Heron is running:")
		fmt.Println("  go run cmd/heron/main.go")
		os.Exit(1)
	}
	fmt.Println("Heron is healthy")

	// Read claims data
	fmt.Printf("\nReading claims data from %s...\n", *csvPath)
	claims, err := readClaimsCSV(*csvPath, *limit, *fraudOnly, *sampleRate)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d claims\n", len(claims))

	// Count fraud vs non-fraud
	fraudCount := 0
	for _, c := range claims {
		if c.IsFraud {
			fraudCount++
		}
	}
	fmt.Printf("  - Fraud:     %d (%.2f%%)\n", fraudCount, 100*float64(fraudCount)/float64(len(claims)))
	fmt.Printf("  - Non-fraud: %d (%.2f%%)\n", len(claims)-fraudCount, 100*float64(len(claims)-fraudCount)/float64(len(claims)))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(claims, *baseURL, *tenantID, *workers, *strict, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readClaimsCSV(path string, limit int, fraudOnly bool, sampleRate float64) ([]LabeledClaim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column indices
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	col := func(record []string, name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var claims []LabeledClaim
	sampleCounter := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		isFraud := col(record, "is_fraud") == "1" || strings.EqualFold(col(record, "is_fraud"), "true")

		// Apply filters
		if fraudOnly && !isFraud {
			continue
		}

		// Sample non-fraud claims
		if !isFraud && sampleRate < 1.0 {
			sampleCounter++
			if float64(sampleCounter%100)/100.0 >= sampleRate {
				continue
			}
		}

		duration, _ := strconv.Atoi(col(record, "treatment_duration"))
		roomRent, _ := strconv.ParseFloat(col(record, "room_rent"), 64)
		totalAmount, _ := strconv.ParseFloat(col(record, "total_claim_amount"), 64)
		billedAmount, _ := strconv.ParseFloat(col(record, "billed_amount"), 64)

		claim := LabeledClaim{
			PolicyNumber:      col(record, "policy_number"),
			PatientName:       col(record, "patient_name"),
			HospitalName:      col(record, "hospital_name"),
			Diagnosis:         col(record, "diagnosis"),
			TreatmentDuration: duration,
			RoomType:          col(record, "room_type"),
			RoomRent:          roomRent,
			TotalClaimAmount:  totalAmount,
			BilledAmount:      billedAmount,
			AdmissionDate:     col(record, "admission_date"),
			DischargeDate:     col(record, "discharge_date"),
			PolicyPeriod:      col(record, "policy_period"),
			PlanTier:          col(record, "plan_tier"),
			IsFraud:           isFraud,
		}

		claims = append(claims, claim)

		if limit > 0 && len(claims) >= limit {
			break
		}
	}

	return claims, nil
}

func runBenchmark(claims []LabeledClaim, baseURL, tenantID string, numWorkers int, strict, verbose bool) *Metrics {
	metrics := &Metrics{}

	// Create work channel
	work := make(chan LabeledClaim, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for claim := range work {
				start := time.Now()
				result, err := adjudicateClaim(client, baseURL, tenantID, claim)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", claim.PolicyNumber, err)
					}
					continue
				}

				// Track actual labels
				if claim.IsFraud {
					atomic.AddInt64(&metrics.TotalFraud, 1)
				} else {
					atomic.AddInt64(&metrics.TotalNonFraud, 1)
				}

				// Calculate confusion matrix
				predicted := result.Status == "DENIED"
				if !strict {
					predicted = predicted || result.Status == "UNDER_REVIEW"
				}
				actual := claim.IsFraud

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "ok "
					if (predicted && !actual) || (!predicted && actual) {
						status = "MISS"
					}
					diag := claim.Diagnosis
					if len(diag) > 20 {
						diag = diag[:20]
					}
					fmt.Printf("%s %-14s | Dx: %-20s | Amount: %12.2f | Fraud: %-5v | Heron: %-12s (%.2f)\n",
						status,
						claim.PolicyNumber,
						diag,
						claim.TotalClaimAmount,
						claim.IsFraud,
						result.Status,
						result.FraudScore,
					)
				}
			}
		}()
	}

	// Send work
	for _, claim := range claims {
		work <- claim
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func adjudicateClaim(client *http.Client, baseURL, tenantID string, claim LabeledClaim) (*AdjudicateResponse, error) {
	req := AdjudicateRequest{
		PolicyNumber:      claim.PolicyNumber,
		PatientName:       claim.PatientName,
		HospitalName:      claim.HospitalName,
		Diagnosis:         claim.Diagnosis,
		TreatmentDuration: claim.TreatmentDuration,
		RoomType:          claim.RoomType,
		RoomRent:          claim.RoomRent,
		TotalClaimAmount:  claim.TotalClaimAmount,
		BilledAmount:      claim.BilledAmount,
		AdmissionDate:     claim.AdmissionDate,
		DischargeDate:     claim.DischargeDate,
		PolicyPeriod:      claim.PolicyPeriod,
		PlanTier:          claim.PlanTier,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/adjudicate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result AdjudicateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n=================================================================")
	fmt.Println("                      BENCHMARK RESULTS")
	fmt.Println("=================================================================")

	fmt.Printf("\nDATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Fraud:      %d\n", m.TotalFraud)
	fmt.Printf("   Total Non-Fraud:  %d\n", m.TotalNonFraud)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\nCONFUSION MATRIX\n")
	fmt.Println("                        Predicted")
	fmt.Println("                  FLAGGED     APPROVED")
	fmt.Println("              +----------+----------+")
	fmt.Printf("   Actual  F  | %8d | %8d |  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              +----------+----------+")
	fmt.Printf("          NF  | %8d | %8d |  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              +----------+----------+")

	// Calculate metrics
	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\nDETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of flagged claims, how many were actual fraud)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of fraud, how many did we catch)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	// Detection rate analysis
	fmt.Printf("\nDETECTION ANALYSIS\n")
	if m.TotalFraud > 0 {
		detectionRate := float64(m.TruePositives) / float64(m.TotalFraud) * 100
		missRate := float64(m.FalseNegatives) / float64(m.TotalFraud) * 100
		fmt.Printf("   Fraud Detected:    %d / %d (%.2f%%)\n", m.TruePositives, m.TotalFraud, detectionRate)
		fmt.Printf("   Fraud Missed:      %d / %d (%.2f%%)\n", m.FalseNegatives, m.TotalFraud, missRate)
	}
	if m.TotalNonFraud > 0 {
		falseAlarmRate := float64(m.FalsePositives) / float64(m.TotalNonFraud) * 100
		fmt.Printf("   False Alarms:      %d / %d (%.2f%%)\n", m.FalsePositives, m.TotalNonFraud, falseAlarmRate)
	}

	fmt.Printf("\nPERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		cps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f claims/sec\n", cps)
	}

	// Interpretation
	fmt.Printf("\nINTERPRETATION\n")
	if recall >= 0.9 {
		fmt.Println("   Excellent recall - catching most fraud")
	} else if recall >= 0.7 {
		fmt.Println("   Good recall - but missing some fraud")
	} else if recall >= 0.5 {
		fmt.Println("   Moderate recall - significant fraud being missed")
	} else {
		fmt.Println("   Poor recall - most fraud is being missed")
	}

	if precision >= 0.5 {
		fmt.Println("   Good precision - alerts are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   Low precision - many false alarms")
	} else {
		fmt.Println("   Very low precision - mostly false alarms")
	}

	fmt.Println()
}
