// Package dumpsource resolves a Wikidata dump status manifest
// (dumpstatus.json, per spec.md §6) into the single "-all.json.bz2" file
// name a caller should treat as input. It is parse-only: it never performs
// a network fetch, since dump downloading is out of scope (spec.md §1).
// It mirrors original_source/wildside-data/src/wikidata/dump/ops.rs's
// select_dump, minus the HTTP half.
package dumpsource

import (
	"strings"

	jsoncodec "github.com/goccy/go-json"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

const jsonDumpSuffix = "-all.json.bz2"

// manifest is the subset of dumpstatus.json's shape this package cares
// about: a map of job name to job, each job holding a status and a map of
// file name to file metadata.
type manifest struct {
	Jobs map[string]job `json:"jobs"`
}

type job struct {
	Status string          `json:"status"`
	Files  map[string]file `json:"files"`
}

type file struct {
	URL string `json:"url"`
}

func (j job) isDone() bool {
	return strings.EqualFold(j.Status, "done")
}

// Resolve parses statusJSON and returns the unique file name, across every
// job with status "done", that ends in "-all.json.bz2". More than one
// candidate, or none, is an error: the caller has no principled way to
// pick among ambiguous candidates, and spec.md §6 expects exactly one.
func Resolve(statusJSON []byte) (string, error) {
	var parsed manifest
	if err := jsoncodec.Unmarshal(statusJSON, &parsed); err != nil {
		return "", apperrors.ErrDumpManifestParse.WithCause(err)
	}

	var found string
	for _, j := range parsed.Jobs {
		if !j.isDone() {
			continue
		}
		for name := range j.Files {
			if !strings.HasSuffix(name, jsonDumpSuffix) {
				continue
			}
			if found != "" && found != name {
				return "", apperrors.ErrDumpAmbiguous.WithDetails(map[string]any{"first": found, "second": name})
			}
			found = name
		}
	}
	if found == "" {
		return "", apperrors.ErrDumpNotFound
	}
	return found, nil
}
