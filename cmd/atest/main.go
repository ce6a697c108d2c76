// atest drives the asmopt binary over a corpus of assembly files and
// compares every run against recorded golden results.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out,omitempty"`
}

type Run struct {
	Name   string    `json:"name"`
	Args   []string  `json:"args,omitempty"`
	Result Execution `json:"result"`
}

type Golden struct {
	SourceHash string `json:"source_hash"`
	Runs       []Run  `json:"runs"`
}

type FileResult struct {
	File    string `json:"file"`
	Status  string `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string `json:"message,omitempty"`
	Diff    string `json:"diff,omitempty"`
}

type SuiteResults map[string]*FileResult

var (
	binary     = flag.String("asmopt", "./asmopt", "Path to the asmopt binary under test.")
	extraArgs  = flag.String("args", "", "Extra arguments passed on every run (space-separated).")
	testFiles  = flag.String("test-files", "tests/*.s", "Glob pattern(s) for files to test (space-separated).")
	skipFiles  = flag.String("skip-files", "", "Files to skip (space-separated).")
	update     = flag.Bool("update", false, "Regenerate golden files instead of comparing.")
	outputJSON = flag.String("output", ".atest_results.json", "Output file for the JSON test report.")
	timeout    = flag.Duration("timeout", 5*time.Second, "Timeout for each command execution.")
	jobs       = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose    = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

// scenarios are the fixed runs recorded per source file.
var scenarios = []struct {
	name string
	args []string
}{
	{"optimize", nil},
	{"no-optimize", []string{"-O0"}},
	{"dump-ir", []string{"--dump-ir"}},
	{"dump-cfg", []string{"--dump-cfg"}},
	{"stats", []string{"--stats"}},
}

func main() {
	flag.Parse()
	log.SetFlags(0)
	setupInterruptHandler()

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	skip := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skip[f] = true
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file)
			}
		}()
	}

	// Identical inputs produce identical goldens; run each content hash once.
	seenHashes := make(map[string]string)
	for _, file := range files {
		if skip[file] {
			resultsChan <- &FileResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		hash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to hash file: %v", err)}
			continue
		}
		if original, seen := seenHashes[hash]; seen {
			resultsChan <- &FileResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", original)}
			continue
		}
		seenHashes[hash] = file
		tasks <- file
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make(SuiteResults)
	for res := range resultsChan {
		results[res.File] = res
		logResult(res)
	}

	writeReport(results)
	if countStatus(results, "FAIL")+countStatus(results, "ERROR") > 0 {
		os.Exit(1)
	}
}

func setupInterruptHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}()
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var files []string
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// hashFile computes the xxhash of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func goldenPath(sourceFile string) string {
	return filepath.Join(filepath.Dir(sourceFile), "."+filepath.Base(sourceFile)+".json")
}

func testFile(file string) *FileResult {
	hash, err := hashFile(file)
	if err != nil {
		return &FileResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to hash source: %v", err)}
	}

	actual, err := runScenarios(file)
	if err != nil {
		return &FileResult{File: file, Status: "ERROR", Message: err.Error()}
	}
	actual.SourceHash = hash

	if *update {
		if err := writeGolden(file, actual); err != nil {
			return &FileResult{File: file, Status: "ERROR", Message: err.Error()}
		}
		return &FileResult{File: file, Status: "PASS", Message: "Golden regenerated"}
	}

	golden, err := readGolden(file)
	if err != nil {
		return &FileResult{File: file, Status: "ERROR", Message: fmt.Sprintf("No usable golden file (run with -update): %v", err)}
	}
	if golden.SourceHash != hash {
		return &FileResult{File: file, Status: "ERROR", Message: "Source changed since golden was recorded (run with -update)"}
	}

	if diff := cmp.Diff(stripDurations(golden), stripDurations(actual)); diff != "" {
		return &FileResult{File: file, Status: "FAIL", Message: "Output differs from golden", Diff: diff}
	}
	return &FileResult{File: file, Status: "PASS"}
}

func runScenarios(file string) (*Golden, error) {
	golden := &Golden{}
	for _, sc := range scenarios {
		args := strings.Fields(*extraArgs)
		args = append(args, sc.args...)
		args = append(args, "-o", "-", file)
		result, err := runCommand(*binary, args)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.name, err)
		}
		golden.Runs = append(golden.Runs, Run{Name: sc.name, Args: sc.args, Result: result})
	}
	return golden, nil
}

func runCommand(binary string, args []string) (Execution, error) {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return Execution{}, err
	}

	return Execution{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}, nil
}

// stripDurations zeroes the timing fields so the diff covers only the
// observable output.
func stripDurations(g *Golden) *Golden {
	out := &Golden{SourceHash: g.SourceHash}
	for _, run := range g.Runs {
		run.Result.Duration = 0
		out.Runs = append(out.Runs, run)
	}
	return out
}

func readGolden(sourceFile string) (*Golden, error) {
	data, err := os.ReadFile(goldenPath(sourceFile))
	if err != nil {
		return nil, err
	}
	var golden Golden
	if err := json.Unmarshal(data, &golden); err != nil {
		return nil, err
	}
	return &golden, nil
}

func writeGolden(sourceFile string, golden *Golden) error {
	data, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(goldenPath(sourceFile), data, 0644)
}

func logResult(res *FileResult) {
	switch res.Status {
	case "PASS":
		if *verbose {
			log.Printf("%s[PASS]%s %s %s\n", cGreen, cNone, res.File, res.Message)
		}
	case "SKIP":
		if *verbose {
			log.Printf("%s[SKIP]%s %s: %s\n", cYellow, cNone, res.File, res.Message)
		}
	case "FAIL":
		log.Printf("%s[FAIL]%s %s: %s\n%s", cRed, cNone, res.File, res.Message, res.Diff)
	default:
		log.Printf("%s[ERROR]%s %s: %s\n", cRed, cNone, res.File, res.Message)
	}
}

func countStatus(results SuiteResults, status string) int {
	n := 0
	for _, res := range results {
		if res.Status == status {
			n++
		}
	}
	return n
}

func writeReport(results SuiteResults) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Printf("%s[WARN]%s Could not marshal results: %v\n", cYellow, cNone, err)
		return
	}
	if err := os.WriteFile(*outputJSON, data, 0644); err != nil {
		log.Printf("%s[WARN]%s Could not write %s: %v\n", cYellow, cNone, *outputJSON, err)
	}

	pass, fail, skip, errs := countStatus(results, "PASS"), countStatus(results, "FAIL"), countStatus(results, "SKIP"), countStatus(results, "ERROR")
	log.Printf("%s%d passed, %d failed, %d skipped, %d errored%s\n", cBold, pass, fail, skip, errs, cNone)
}
