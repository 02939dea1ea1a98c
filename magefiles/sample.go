//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	sampleSource = "testdata/sample/index.adoc"
	sampleOut    = "build/sample-docs"
)

// Sample converts the bundled AsciiDoc sample with the local toolchain and
// verifies the generated tree. Requires asciidoctor and pandoc on PATH.
func Sample() error {
	mg.Deps(Build)
	if err := sh.RunV(binPath, "convert", sampleSource, "--output", sampleOut, "--collision", "suffix"); err != nil {
		return err
	}
	return sh.RunV(binPath, "check", sampleOut)
}

// SampleContainer is Sample with the converters run from container images.
func SampleContainer() error {
	mg.Deps(Build)
	if err := sh.RunV(binPath, "convert", sampleSource, "--output", sampleOut, "--runner", "container", "--collision", "suffix"); err != nil {
		return err
	}
	return sh.RunV(binPath, "check", sampleOut)
}
