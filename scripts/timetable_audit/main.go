// Command timetable_audit fetches a term's timetable from a running
// instance and re-checks it for professor and classroom double
// bookings. It exits non-zero when any overlap is found, so it can
// gate deployments or run as a cron sanity check against the live
// database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

type scheduleEntry struct {
	ScheduleID int64 `json:"scheduleId"`
	Course     struct {
		ID   int64  `json:"courseId"`
		Code string `json:"courseCode"`
	} `json:"course"`
	Professor struct {
		ID int64 `json:"professorId"`
	} `json:"professor"`
	Classroom struct {
		ID int64 `json:"roomId"`
	} `json:"classroom"`
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type envelope struct {
	Data []scheduleEntry `json:"data"`
}

type violation struct {
	Resource string
	ID       int64
	Day      string
	First    scheduleEntry
	Second   scheduleEntry
}

func main() {
	var (
		base         string
		semester     string
		academicYear string
		timeout      time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&semester, "semester", "", "Semester to audit (required)")
	flag.StringVar(&academicYear, "year", "", "Academic year to audit (required)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if semester == "" || academicYear == "" {
		log.Fatal("both -semester and -year are required")
	}

	client := &http.Client{Timeout: timeout}
	entries, err := fetchTerm(client, base, semester, academicYear)
	if err != nil {
		log.Fatalf("failed to fetch timetable: %v", err)
	}

	violations := findViolations(entries)
	printReport(semester, academicYear, entries, violations)
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func fetchTerm(client *http.Client, base, semester, academicYear string) ([]scheduleEntry, error) {
	endpoint := strings.TrimRight(base, "/") + "/api/schedules/term?" + url.Values{
		"semester":     {semester},
		"academicYear": {academicYear},
	}.Encode()

	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return env.Data, nil
}

// findViolations re-derives conflicts from scratch rather than
// trusting the server's index.
func findViolations(entries []scheduleEntry) []violation {
	var violations []violation
	violations = append(violations, overlapsBy(entries, "professor", func(e scheduleEntry) int64 { return e.Professor.ID })...)
	violations = append(violations, overlapsBy(entries, "classroom", func(e scheduleEntry) int64 { return e.Classroom.ID })...)
	return violations
}

func overlapsBy(entries []scheduleEntry, resource string, keyFn func(scheduleEntry) int64) []violation {
	type bucketKey struct {
		ID  int64
		Day string
	}
	buckets := make(map[bucketKey][]scheduleEntry)
	for _, e := range entries {
		k := bucketKey{ID: keyFn(e), Day: e.DayOfWeek}
		buckets[k] = append(buckets[k], e)
	}

	var violations []violation
	for k, group := range buckets {
		sort.Slice(group, func(i, j int) bool { return group[i].StartTime < group[j].StartTime })
		for i := 1; i < len(group); i++ {
			// HH:MM strings compare correctly as text.
			if group[i].StartTime < group[i-1].EndTime {
				violations = append(violations, violation{
					Resource: resource,
					ID:       k.ID,
					Day:      k.Day,
					First:    group[i-1],
					Second:   group[i],
				})
			}
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Resource != violations[j].Resource {
			return violations[i].Resource < violations[j].Resource
		}
		return violations[i].ID < violations[j].ID
	})
	return violations
}

func printReport(semester, academicYear string, entries []scheduleEntry, violations []violation) {
	fmt.Printf("Audited %d schedules for %s %s\n", len(entries), semester, academicYear)
	for _, v := range violations {
		fmt.Printf("OVERLAP %s %d on %s: schedule %d (%s %s-%s) vs schedule %d (%s %s-%s)\n",
			v.Resource, v.ID, v.Day,
			v.First.ScheduleID, v.First.Course.Code, v.First.StartTime, v.First.EndTime,
			v.Second.ScheduleID, v.Second.Course.Code, v.Second.StartTime, v.Second.EndTime)
	}
	if len(violations) == 0 {
		fmt.Println("No double bookings found")
	} else {
		fmt.Printf("Double bookings: %d\n", len(violations))
	}
}
