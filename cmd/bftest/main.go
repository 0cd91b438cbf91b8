// bftest runs the compiler against a directory of source files and compares
// each program's machine output to a per-file golden JSON record. Everything
// happens in-process: sources are compiled with the library packages and
// executed on the built-in machine, so a suite run needs no external tools.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/gbfc/pkg/ast"
	"github.com/xplshn/gbfc/pkg/bfvm"
	"github.com/xplshn/gbfc/pkg/codegen"
	"github.com/xplshn/gbfc/pkg/config"
	"github.com/xplshn/gbfc/pkg/lexer"
	"github.com/xplshn/gbfc/pkg/parser"
	"github.com/xplshn/gbfc/pkg/util"
)

// Golden is the per-file expectation. Output is the raw byte stream the
// program must produce (base64 in the JSON encoding); CompileError, when
// set, is a substring the compilation error must contain and Output is
// ignored. CodeSize records the instruction count at generation time and
// is informational only.
type Golden struct {
	Output       []byte `json:"output"`
	CompileError string `json:"compile_error,omitempty"`
	CodeSize     int    `json:"code_size,omitempty"`
}

type FileResult struct {
	File    string
	Status  string // PASS, FAIL, SKIP, ERROR
	Message string
	Diff    string
}

var (
	testFiles      = flag.String("test-files", "testdata/*.mini", "Glob pattern(s) for files to test (space-separated).")
	generateGolden = flag.String("generate-golden", "", "Generate the golden .json file for a given source file.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *generateGolden != "" {
		handleGenerateGolden(*generateGolden)
		return
	}

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
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

	// Files with identical content get one run; xxhash keys the dedupe.
	seenHashes := make(map[uint64]string)
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			resultsChan <- &FileResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file: %v", err)}
			continue
		}
		h := xxhash.Sum64(content)
		if original, seen := seenHashes[h]; seen {
			resultsChan <- &FileResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", original)}
			continue
		}
		seenHashes[h] = file
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var results []*FileResult
	for r := range resultsChan {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	failed := printSummary(results)
	if failed {
		os.Exit(1)
	}
}

func goldenPath(sourceFile string) string {
	return filepath.Join(filepath.Dir(sourceFile), "."+filepath.Base(sourceFile)+".json")
}

// compileSource runs the whole front half of the compiler on one file and
// returns the instruction stream. Lex and parse failures terminate the
// process through util.Error; only generation errors come back as values.
func compileSource(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read '%s': %w", path, err)
	}
	cfg := config.NewConfig()
	runeContent := []rune(string(content))
	util.SetSourceFiles([]util.SourceFileRecord{{Name: path, Content: runeContent}})

	tokens := lexer.NewLexer(runeContent, 0, cfg).Tokenize()
	astRoot := parser.NewParser(tokens).Parse()
	astRoot = ast.FoldConstants(cfg, astRoot)
	return codegen.NewGenerator(cfg).Generate(astRoot)
}

func runCompiled(code string) ([]byte, error) {
	m, err := bfvm.New(code)
	if err != nil {
		return nil, err
	}
	return m.Run()
}

func handleGenerateGolden(sourceFile string) {
	log.Printf("Generating golden file for %s...\n", sourceFile)

	var golden Golden
	code, err := compileSource(sourceFile)
	if err != nil {
		golden.CompileError = err.Error()
	} else {
		out, err := runCompiled(code)
		if err != nil {
			log.Fatalf("%s[ERROR]%s Compiled program failed to run: %v\n", cRed, cNone, err)
		}
		golden.Output = out
		golden.CodeSize = len(code)
	}

	jsonData, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to marshal golden data: %v\n", cRed, cNone, err)
	}
	path := goldenPath(sourceFile)
	if err := os.WriteFile(path, append(jsonData, '\n'), 0o644); err != nil {
		log.Fatalf("%s[ERROR]%s Failed to write golden file %s: %v\n", cRed, cNone, path, err)
	}
	log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, path)
}

func testFile(file string) *FileResult {
	goldenFile := goldenPath(file)
	goldenData, err := os.ReadFile(goldenFile)
	if err != nil {
		return &FileResult{File: file, Status: "SKIP", Message: fmt.Sprintf("No golden file at %s (use -generate-golden)", goldenFile)}
	}
	var golden Golden
	if err := json.Unmarshal(goldenData, &golden); err != nil {
		return &FileResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	code, err := compileSource(file)

	if golden.CompileError != "" {
		if err == nil {
			return &FileResult{File: file, Status: "FAIL", Message: fmt.Sprintf("Expected compile error containing %q, but compilation succeeded", golden.CompileError)}
		}
		if !strings.Contains(err.Error(), golden.CompileError) {
			return &FileResult{File: file, Status: "FAIL", Message: "Compile error mismatch", Diff: cmp.Diff(golden.CompileError, err.Error())}
		}
		return &FileResult{File: file, Status: "PASS", Message: "Failed to compile as expected"}
	}

	if err != nil {
		return &FileResult{File: file, Status: "FAIL", Message: fmt.Sprintf("Compilation failed, but golden file expected success: %v", err)}
	}
	out, err := runCompiled(code)
	if err != nil {
		return &FileResult{File: file, Status: "FAIL", Message: fmt.Sprintf("Execution failed: %v", err)}
	}
	if diff := cmp.Diff(golden.Output, out); diff != "" {
		return &FileResult{File: file, Status: "FAIL", Message: "Output mismatch", Diff: diff}
	}
	if *verbose && golden.CodeSize != 0 && golden.CodeSize != len(code) {
		log.Printf("[%s] code size changed: golden %d, current %d", file, golden.CodeSize, len(code))
	}
	return &FileResult{File: file, Status: "PASS", Message: "Output matches golden file"}
}

func printSummary(results []*FileResult) bool {
	var passed, failed, skipped, errored int
	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)
		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			if result.Diff != "" {
				fmt.Println(formatDiff(result.Diff))
			}
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
	return failed > 0 || errored > 0
}

func formatDiff(diff string) string {
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmed, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone)
		builder.WriteString("\n")
	}
	return builder.String()
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			if !seen[file] {
				if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
					allFiles = append(allFiles, file)
					seen[file] = true
				}
			}
		}
	}
	return allFiles, nil
}
