package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// confirm asks for an explicit "y". Anything else, including EOF, is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	if question != "" {
		fmt.Fprintln(out, warningStyle.Render(question))
	}
	fmt.Fprint(out, "ARE YOU SURE?! [y/N]: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// isInteractiveTerminal reports whether in is a terminal a picker can drive
func isInteractiveTerminal(in io.Reader) bool {
	if isCIEnvironment() {
		return false
	}
	if term := os.Getenv("TERM"); term == "" || term == "dumb" {
		return false
	}

	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// isCIEnvironment checks if running in a CI/CD environment
func isCIEnvironment() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"BUILD_NUMBER",
		"RUN_ID",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_HOME",
		"TRAVIS",
		"CIRCLECI",
		"TEAMCITY_VERSION",
	}

	for _, envVar := range ciVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
