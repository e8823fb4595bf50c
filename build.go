//go:build ignore

// Cross-compiles padshim for supported linux platforms, run with "go run build.go".
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

type target struct {
	goos   string
	goarch string
	goarm  string
}

func (t target) String() string {
	if t.goarm != "" {
		return fmt.Sprintf("%s-%s-v%s", t.goos, t.goarch, t.goarm)
	}
	return fmt.Sprintf("%s-%s", t.goos, t.goarch)
}

func (t target) env() []string {
	vars := []string{
		"GOOS=" + t.goos,
		"GOARCH=" + t.goarch,
	}
	if t.goarm != "" {
		vars = append(vars, "GOARM="+t.goarm)
	}
	if cgo {
		vars = append(vars, "CGO_ENABLED=1")
	} else {
		vars = append(vars, "CGO_ENABLED=0")
	}
	return vars
}

var availableTargets = []target{
	{goos: "linux", goarch: "arm", goarm: "6"}, // Raspberry Pi Zero / 1
	{goos: "linux", goarch: "arm", goarm: "7"},
	{goos: "linux", goarch: "arm64"},
	{goos: "linux", goarch: "386"},
	{goos: "linux", goarch: "amd64"},
}

type result struct {
	target         target
	binary         string
	err            error
	stdout, stderr string
}

func build(t target) result {
	binary := fmt.Sprintf("%s/%s-%s", output, basename, t.String())

	args := []string{"build", "-o", binary, "-trimpath"}
	args = append(args, "-ldflags", fmt.Sprintf("-s -w -X main.version=%s", version))
	if race {
		args = append(args, "-race")
	}
	args = append(args, project)

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), t.env()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return result{
		target: t,
		binary: binary,
		err:    err,
		stdout: stdout.String(),
		stderr: stderr.String(),
	}
}

func selectTargets(selection string) ([]target, error) {
	if selection == "all" {
		return availableTargets, nil
	}

	var selected []target
	for _, name := range strings.Split(selection, ",") {
		var found bool
		for _, t := range availableTargets {
			if t.String() == strings.TrimSpace(name) {
				selected = append(selected, t)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("target not found: %s", name)
		}
	}
	return selected, nil
}

func gitVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

var selection, project, basename, output, version string
var cgo, race bool

func main() {
	var names []string
	for _, t := range availableTargets {
		names = append(names, t.String())
	}

	pflag.StringVarP(&selection, "platforms", "p", "all", fmt.Sprintf(
		"comma-separated target platform list\navailable: %s", strings.Join(names, ",")),
	)
	pflag.StringVar(&project, "project", "./cmd/padshim/", "project directory")
	pflag.StringVar(&basename, "base", "padshim", "base filename for output binaries")
	pflag.StringVarP(&output, "output", "o", "./builds", "output directory")
	pflag.StringVar(&version, "version", "", "version embedded into binaries (default: git describe)")
	pflag.BoolVar(&cgo, "cgo", false, "cgo")
	pflag.BoolVar(&race, "race", false, "include race detector")
	pflag.Parse()

	log.SetFlags(log.Ltime)

	if version == "" {
		version = gitVersion()
	}

	targets, err := selectTargets(selection)
	if err != nil {
		log.Fatal(err)
	}

	names = names[:0]
	for _, t := range targets {
		names = append(names, t.String())
	}
	log.Printf("selected targets: %s", strings.Join(names, ", "))
	log.Printf("engaging parallel building for %d targets, version %s", len(targets), version)

	results := make(chan result, len(targets))
	wg := sync.WaitGroup{}
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			log.Printf("building %s %s", project, t.String())
			results <- build(t)
		}(t)
	}
	wg.Wait()
	close(results)

	var failed []result
	for r := range results {
		if r.err != nil {
			log.Printf("building %s failed: %v", r.target.String(), r.err)
			failed = append(failed, r)
			continue
		}
		log.Printf("building %s success: %s", r.target.String(), r.binary)
	}

	for _, r := range failed {
		fmt.Printf("\n>>> Failed build: project: %s, base: %s, target: %s\n", project, basename, r.target.String())
		if r.stdout != "" {
			fmt.Printf("======== STDOUT ========\n%s========================\n", r.stdout)
		}
		if r.stderr != "" {
			fmt.Printf("======== STDERR ========\n%s========================\n", r.stderr)
		}
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
