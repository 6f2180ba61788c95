package assessment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gaduka/config"
	courseModels "gaduka/models/course"
)

// TestResult is the outcome of running learner code against one test case.
type TestResult struct {
	Passed   bool   `json:"passed"`
	Stdout   string `json:"stdout"`
	Expected string `json:"expected"`
	Input    string `json:"input"`
	Error    string `json:"error,omitempty"`
}

// Runner executes learner code against ordered test cases. The production
// runner shells out to an interpreter; tests substitute a stub.
type Runner interface {
	Run(language, source string, cases []courseModels.LessonTestCase) ([]TestResult, error)
}

// languageCommands maps every recognized language to the interpreter
// invocation for a source file. Compiled languages are handled by their
// run-from-source tooling.
var languageCommands = map[string]func(file string) []string{
	"python":     func(f string) []string { return []string{"python3", f} },
	"ruby":       func(f string) []string { return []string{"ruby", f} },
	"javascript": func(f string) []string { return []string{"node", f} },
	"php":        func(f string) []string { return []string{"php", f} },
	"go":         func(f string) []string { return []string{"go", "run", f} },
	"java":       func(f string) []string { return []string{"java", f} },
	"cpp":        func(f string) []string { return []string{"sh", "-c", fmt.Sprintf("g++ -o %s.bin %s && %s.bin", f, f, f)} },
	"csharp":     func(f string) []string { return []string{"dotnet-script", f} },
	"rust":       func(f string) []string { return []string{"sh", "-c", fmt.Sprintf("rustc -o %s.bin %s && %s.bin", f, f, f)} },
}

var sourceExtensions = map[string]string{
	"python":     ".py",
	"ruby":       ".rb",
	"javascript": ".js",
	"php":        ".php",
	"go":         ".go",
	"java":       ".java",
	"cpp":        ".cpp",
	"csharp":     ".csx",
	"rust":       ".rs",
}

// SupportedLanguage reports whether the runner knows the language.
func SupportedLanguage(language string) bool {
	_, ok := languageCommands[language]
	return ok
}

// ExecRunner runs learner code through the local interpreter for the
// language. It is a thin shell, not a sandbox.
type ExecRunner struct{}

// Run executes source once per test case, feeding the case input on stdin and
// comparing captured stdout to the expected output. Output comparison strips
// trailing whitespace on both sides; everything else must match exactly.
func (ExecRunner) Run(language, source string, cases []courseModels.LessonTestCase) ([]TestResult, error) {
	buildCmd, ok := languageCommands[language]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	dir, err := os.MkdirTemp("", "practice-run-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "main"+sourceExtensions[language])
	if err := os.WriteFile(file, []byte(source), 0o600); err != nil {
		return nil, err
	}

	timeout := 5 * time.Second
	if config.AppConfig != nil && config.AppConfig.RunnerTimeoutSeconds > 0 {
		timeout = time.Duration(config.AppConfig.RunnerTimeoutSeconds) * time.Second
	}

	results := make([]TestResult, 0, len(cases))
	for _, tc := range cases {
		results = append(results, runCase(buildCmd(file), tc, timeout))
	}
	return results, nil
}

func runCase(argv []string, tc courseModels.LessonTestCase, timeout time.Duration) TestResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(tc.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := TestResult{
		Input:    tc.Input,
		Expected: tc.ExpectedOutput,
	}

	err := cmd.Run()
	result.Stdout = stdout.String()

	if ctx.Err() == context.DeadlineExceeded {
		result.Error = "time limit exceeded"
		return result
	}
	if err != nil {
		result.Error = strings.TrimSpace(stderr.String())
		if result.Error == "" {
			result.Error = err.Error()
		}
		return result
	}

	result.Passed = OutputMatches(result.Stdout, tc.ExpectedOutput)
	return result
}

// OutputMatches compares program output to the expected value. Trailing
// whitespace (spaces, tabs, CR, LF) is stripped from both sides; the rule is
// the same for practice lessons and practice-kind control questions.
func OutputMatches(actual, expected string) bool {
	trim := func(s string) string { return strings.TrimRight(s, " \t\r\n") }
	return trim(actual) == trim(expected)
}

// RunPractice checks a code practice lesson submission and reports per-case
// results along with the aggregate verdict.
func RunPractice(runner Runner, lesson *courseModels.Lesson, language, source string) ([]TestResult, bool, error) {
	if !SupportedLanguage(language) {
		return nil, false, fmt.Errorf("unsupported language: %s", language)
	}

	results, err := runner.Run(language, source, lesson.TestCases)
	if err != nil {
		return nil, false, err
	}

	allPassed := len(results) > 0
	for _, r := range results {
		if !r.Passed {
			allPassed = false
			break
		}
	}
	return results, allPassed, nil
}
