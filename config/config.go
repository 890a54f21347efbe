// Package config loads and validates collector configuration documents.
// Configuration is schema-first: Schema describes the accepted document,
// Parse merges a validated document over the built-in defaults.
package config

import (
	"github.com/pkg/errors"
	schematypes "github.com/taskcluster/go-schematypes"

	"github.com/vmkit/gengc/gc"
)

// Schema describes the collector configuration document. All properties
// are optional; anything omitted (or zero) keeps its documented default.
var Schema schematypes.Schema = schematypes.Object{
	Title: "Garbage Collector Configuration",
	Description: "Tunables for the generational collector. " +
		"All properties are optional; defaults are applied for anything omitted.",
	Properties: schematypes.Properties{
		"threadPoolSize": schematypes.Integer{
			Title:       "Mark Worker Pool Size",
			Description: "Number of goroutines marking in parallel during a major collection. Defaults to a quarter of the logical cores.",
			Minimum:     1,
			Maximum:     4096,
		},
		"minorGCTriggerSize": schematypes.Integer{
			Title:       "Minor GC Trigger Size",
			Description: "Minor heap size in bytes that forces a minor collection. Defaults to 10 MiB.",
			Minimum:     0,
			Maximum:     1 << 40,
		},
		"minorHeapSizeLimit": schematypes.Integer{
			Title:       "Minor Heap Size Limit",
			Description: "Hard minor heap ceiling in bytes; exceeding it is a fatal out-of-memory condition. Defaults to 100 MiB.",
			Minimum:     0,
			Maximum:     1 << 40,
		},
		"majorHeapLiveness": schematypes.Integer{
			Title:       "Promotion Liveness Threshold",
			Description: "Minor collections an object must survive before promotion to the major generation. Defaults to 3.",
			Minimum:     1,
			Maximum:     1 << 20,
		},
		"majorGCPacerRate": schematypes.Number{
			Title:       "Major GC Pacer Rate",
			Description: "Major collection triggers when the major heap grows past this ratio of its size at the last major collection start. Defaults to 2.0.",
			Minimum:     1.0,
			Maximum:     100.0,
		},
		"majorHeapSizeLimit": schematypes.Integer{
			Title:       "Major Heap Size Limit",
			Description: "Hard major heap ceiling in bytes; 0 means unbounded. Defaults to 0.",
			Minimum:     0,
			Maximum:     1 << 40,
		},
		"enableImmGen": schematypes.Boolean{
			Title:       "Enable Immortal Generation",
			Description: "Promote very long-lived objects to an immortal generation that is never traced or reclaimed.",
		},
		"immLiveness": schematypes.Integer{
			Title:       "Immortal Promotion Threshold",
			Description: "Collection cycles after which a major object becomes immortal. Defaults to 100.",
			Minimum:     1,
			Maximum:     1 << 20,
		},
	},
}

// Parse validates data against Schema and merges it over the defaults
// from gc.DefaultConfig.
func Parse(data interface{}) (gc.Config, error) {
	c := gc.DefaultConfig()

	var v struct {
		ThreadPoolSize     int     `json:"threadPoolSize"`
		MinorGCTriggerSize int64   `json:"minorGCTriggerSize"`
		MinorHeapSizeLimit int64   `json:"minorHeapSizeLimit"`
		MajorHeapLiveness  int64   `json:"majorHeapLiveness"`
		MajorGCPacerRate   float64 `json:"majorGCPacerRate"`
		MajorHeapSizeLimit int64   `json:"majorHeapSizeLimit"`
		EnableImmGen       bool    `json:"enableImmGen"`
		ImmLiveness        int64   `json:"immLiveness"`
	}
	if err := schematypes.MustMap(Schema, data, &v); err != nil {
		return c, errors.Wrap(err, "invalid gc configuration")
	}

	if v.ThreadPoolSize != 0 {
		c.ThreadPoolSize = v.ThreadPoolSize
	}
	if v.MinorGCTriggerSize != 0 {
		c.MinorGCTriggerSize = uint64(v.MinorGCTriggerSize)
	}
	if v.MinorHeapSizeLimit != 0 {
		c.MinorHeapSizeLimit = uint64(v.MinorHeapSizeLimit)
	}
	if v.MajorHeapLiveness != 0 {
		c.MajorHeapLiveness = uint64(v.MajorHeapLiveness)
	}
	if v.MajorGCPacerRate != 0 {
		c.MajorGCPacerRate = v.MajorGCPacerRate
	}
	if v.MajorHeapSizeLimit != 0 {
		c.MajorHeapSizeLimit = uint64(v.MajorHeapSizeLimit)
	}
	c.EnableImmGen = v.EnableImmGen
	if v.ImmLiveness != 0 {
		c.ImmLiveness = uint64(v.ImmLiveness)
	}

	return c, nil
}
