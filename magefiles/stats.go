// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// statRoots are the source trees whose packages Stats reports on.
var statRoots = []string{"cmd", "internal", "pkg", "tests"}

// packageStats holds the Go line counts of one package directory.
type packageStats struct {
	Package string `json:"package"`
	Files   int    `json:"files"`
	Prod    int    `json:"loc_prod"`
	Test    int    `json:"loc_test"`
}

// Stats prints one JSON record of Go line counts per folio package, then a
// record with the totals.
func Stats() error {
	byPkg := map[string]*packageStats{}
	for _, root := range statRoots {
		if err := collectStats(root, byPkg); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(byPkg))
	for name := range byPkg {
		names = append(names, name)
	}
	sort.Strings(names)

	enc := json.NewEncoder(os.Stdout)
	total := packageStats{Package: "total"}
	for _, name := range names {
		ps := byPkg[name]
		total.Files += ps.Files
		total.Prod += ps.Prod
		total.Test += ps.Test
		if err := enc.Encode(ps); err != nil {
			return err
		}
	}
	if err := enc.Encode(total); err != nil {
		return err
	}
	if total.Prod > 0 {
		fmt.Fprintf(os.Stderr, "test/prod ratio %.2f\n", float64(total.Test)/float64(total.Prod))
	}
	return nil
}

// collectStats adds the Go files under root to byPkg, keyed by directory.
// A missing root is skipped.
func collectStats(root string, byPkg map[string]*packageStats) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		ps, ok := byPkg[dir]
		if !ok {
			ps = &packageStats{Package: dir}
			byPkg[dir] = ps
		}
		ps.Files++
		lines := bytes.Count(data, []byte("\n"))
		if strings.HasSuffix(path, "_test.go") {
			ps.Test += lines
		} else {
			ps.Prod += lines
		}
		return nil
	})
}
