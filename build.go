package main

// Cross-builds the mmpd binary for the supported Linux targets. Run with
// "go run build.go"; cgo is always on because the rtmidi backend needs it,
// so the matching C toolchains have to be installed.

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
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

var availableTargets = []target{
	{goos: "linux", goarch: "arm", goarm: "6"},
	{goos: "linux", goarch: "arm", goarm: "7"},
	{goos: "linux", goarch: "arm64"},
	{goos: "linux", goarch: "386"},
	{goos: "linux", goarch: "amd64"},
}

var (
	selection string
	race      bool
)

func init() {
	var names []string
	for _, t := range availableTargets {
		names = append(names, t.String())
	}
	flag.StringVar(&selection, "platforms", "all", fmt.Sprintf(
		"comma-separated target platform list\navailable: %s", strings.Join(names, ",")))
	flag.BoolVar(&race, "race", false, "include race detector")
	flag.Parse()
}

type buildFailure struct {
	target         target
	stdout, stderr string
}

func build(t target, failures chan<- buildFailure) error {
	binaryPath := fmt.Sprintf("./builds/mmpd-%s", t.String())

	env := append(os.Environ(),
		"CGO_ENABLED=1",
		"GOOS="+t.goos,
		"GOARCH="+t.goarch,
	)
	if t.goarm != "" {
		env = append(env, "GOARM="+t.goarm)
	}

	params := []string{"build", "-o", binaryPath}
	if race {
		params = append(params, "-race")
	}
	params = append(params, "./cmd/mmpd/")

	cmd := exec.Command("go", params...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		failures <- buildFailure{
			target: t,
			stdout: stdout.String(),
			stderr: stderr.String(),
		}
	}
	return err
}

func selectTargets() ([]target, error) {
	if selection == "all" {
		return availableTargets, nil
	}

	var selected []target
	for _, name := range strings.Split(selection, ",") {
		var found bool
		for _, t := range availableTargets {
			if t.String() == name {
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

func main() {
	log.SetFlags(log.Ltime)

	targets, err := selectTargets()
	if err != nil {
		log.Printf("%s", err)
		os.Exit(1)
	}

	var names []string
	for _, t := range targets {
		names = append(names, t.String())
	}
	log.Printf("selected targets: %s", strings.Join(names, ", "))

	failures := make(chan buildFailure, len(targets))
	var ok = true
	var mu sync.Mutex

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			log.Printf("building target %s", t.String())
			if err := build(t, failures); err != nil {
				log.Printf("building target failed:  %s", t.String())
				mu.Lock()
				ok = false
				mu.Unlock()
			} else {
				log.Printf("building target success: %s", t.String())
			}
		}(t)
	}
	wg.Wait()
	close(failures)

	for f := range failures {
		fmt.Printf("\n>>> Failed build: target %s\n", f.target.String())
		if f.stdout != "" {
			fmt.Printf("======== STDOUT ========\n%s========================\n", f.stdout)
		}
		if f.stderr != "" {
			fmt.Printf("======== STDERR ========\n%s========================\n", f.stderr)
		}
	}

	if !ok {
		os.Exit(1)
	}
}
