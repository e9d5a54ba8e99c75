// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// containerRuntime describes one container CLI. Docker and Podman differ only
// in binary name and the subcommand used to check image existence.
type containerRuntime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
}

var runtimes = []containerRuntime{
	{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}},
	{bin: binPodman, imageCheckCmd: []string{"image", "exists"}},
}

func (r containerRuntime) available(ctx context.Context, ex executor) bool {
	if _, err := ex.LookPath(r.bin); err != nil {
		return false
	}
	return runSilent(ctx, ex, r.bin, "info") == nil
}

func (r containerRuntime) imageExists(ctx context.Context, ex executor, image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := runSilent(ctx, ex, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

// ContainerParser pipes audit PDFs through a parser container image that
// reads the PDF on stdin and writes JSON to stdout.
type ContainerParser struct {
	runtime containerRuntime
	image   string
	exec    executor
	logger  *zap.Logger
}

// NewContainerParser picks docker, falling back to podman, and verifies the
// image exists locally.
func NewContainerParser(ctx context.Context, image string, logger *zap.Logger) (*ContainerParser, error) {
	return newContainerParser(ctx, image, osExecutor{}, logger)
}

func newContainerParser(ctx context.Context, image string, ex executor, logger *zap.Logger) (*ContainerParser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, rt := range runtimes {
		if !rt.available(ctx, ex) {
			continue
		}
		if err := rt.imageExists(ctx, ex, image); err != nil {
			return nil, err
		}
		logger.Debug("container runtime selected", zap.String("runtime", rt.bin), zap.String("image", image))
		return &ContainerParser{runtime: rt, image: image, exec: ex, logger: logger}, nil
	}
	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}

// Runtime returns the container binary in use.
func (c *ContainerParser) Runtime() string { return c.runtime.bin }

// Parse runs the parser image on pdfPath and returns its JSON output.
func (c *ContainerParser) Parse(ctx context.Context, pdfPath string) ([]byte, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var stdout, stderr bytes.Buffer
	cmd := command{
		name:  c.runtime.bin,
		args:  []string{"run", "--rm", "-i", c.image},
		stdin: f,
	}

	c.logger.Info("running audit parser container", zap.String("runtime", c.runtime.bin), zap.String("image", c.image))
	if err := c.exec.Run(ctx, cmd, &stdout, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("running %s container %s: %s: %w", c.runtime.bin, c.image, msg, err)
		}
		return nil, fmt.Errorf("running %s container %s: %w", c.runtime.bin, c.image, err)
	}

	return checkOutput(stdout.Bytes(), pdfPath)
}
