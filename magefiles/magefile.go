//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the gridfields project using Mage.
//
// Usage:
//
//	mage build          Compile gridfields binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests with the race detector off, short mode
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Write coverage to bin/coverage.out and print a summary
//	mage lint           Run golangci-lint
//	mage vet            Run go vet
//	mage clean          Remove build artifacts
//	mage install        Install gridfields to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main
