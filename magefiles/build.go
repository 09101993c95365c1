//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for holocron using Mage.
//
// Usage:
//
//	mage build          Compile holocron to bin/
//	mage test:all       Run every test
//	mage test:unit      Run package tests
//	mage test:scripts   Run the CLI testscripts
//	mage test:postgres  Run the Postgres tests against a throwaway container
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install holocron to GOPATH/bin
//	mage stats          Print Go line counts as JSON
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binGit     = "git"
	binaryName = "holocron"
	binaryDir  = "bin"
	cmdDir     = "./cmd/holocron"
)

// ldflags stamps the version and commit into the binary.
func ldflags() string {
	version := os.Getenv("HOLOCRON_VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output(binGit, "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	return strings.Join([]string{
		"-X main.version=" + version,
		"-X main.commit=" + commit,
	}, " ")
}

// Build compiles the holocron binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
