//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const envPostgresDSN = "HOLOCRON_TEST_POSTGRES_DSN"

// Test groups test targets.
type Test mg.Namespace

// All runs every test. Postgres tests skip unless HOLOCRON_TEST_POSTGRES_DSN
// is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs the package tests under internal/ and pkg/.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./internal/...", "./pkg/...")
}

// Scripts runs the CLI testscripts.
func (Test) Scripts() error {
	return sh.RunV(binGo, "test", "-run", "TestScripts", cmdDir)
}

// Cover runs every test with a coverage profile in bin/.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := binaryDir + "/cover.out"
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Postgres runs the Postgres tests. Without HOLOCRON_TEST_POSTGRES_DSN a
// throwaway container is started with podman or docker and removed after.
func (Test) Postgres() error {
	dsn := os.Getenv(envPostgresDSN)
	if dsn == "" {
		rt := containerRuntime()
		if rt == "" {
			return fmt.Errorf("set %s or install podman or docker", envPostgresDSN)
		}
		var err error
		dsn, err = startPostgres(rt)
		if err != nil {
			return err
		}
		defer stopPostgres(rt)
	}
	env := map[string]string{envPostgresDSN: dsn}
	return sh.RunWithV(env, binGo, "test", "-count=1", "./internal/postgres/...")
}
