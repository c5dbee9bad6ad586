package main

import (
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/texcodec/bcn/bcn"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want bcn.Format
	}{
		{"bc1", bcn.FormatBC1},
		{"bc2", bcn.FormatBC2},
		{"bc3", bcn.FormatBC3},
		{"bc4", bcn.FormatBC4},
		{"bc5", bcn.FormatBC5},
		{"BC1", bcn.FormatBC1},
		{" bc3 ", bcn.FormatBC3},
		{"dxt1", bcn.FormatBC1},
		{"dxt3", bcn.FormatBC2},
		{"dxt5", bcn.FormatBC3},
		{"ati1", bcn.FormatBC4},
		{"ati2", bcn.FormatBC5},
	}
	for _, tc := range cases {
		got, err := parseFormat(tc.in)
		require.NoError(t, err, "parseFormat(%q)", tc.in)
		require.Equal(t, tc.want, got, "parseFormat(%q)", tc.in)
	}

	_, err := parseFormat("bc7")
	require.ErrorContains(t, err, `invalid format "bc7"`)
}

func TestParseFit(t *testing.T) {
	cases := []struct {
		in   string
		want bcn.Algorithm
	}{
		{"cluster", bcn.AlgorithmClusterFit},
		{"range", bcn.AlgorithmRangeFit},
		{"iterative", bcn.AlgorithmIterativeClusterFit},
		{"iter", bcn.AlgorithmIterativeClusterFit},
		{"Cluster", bcn.AlgorithmClusterFit},
	}
	for _, tc := range cases {
		got, err := parseFit(tc.in)
		require.NoError(t, err, "parseFit(%q)", tc.in)
		require.Equal(t, tc.want, got, "parseFit(%q)", tc.in)
	}

	_, err := parseFit("best")
	require.ErrorContains(t, err, `invalid fit "best"`)
}

func TestParseZstdLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zstd.EncoderLevel
	}{
		{"fastest", zstd.SpeedFastest},
		{"default", zstd.SpeedDefault},
		{"better", zstd.SpeedBetterCompression},
		{"best", zstd.SpeedBestCompression},
	}
	for _, tc := range cases {
		got, err := parseZstdLevel(tc.in)
		require.NoError(t, err, "parseZstdLevel(%q)", tc.in)
		require.Equal(t, tc.want, got, "parseZstdLevel(%q)", tc.in)
	}

	_, err := parseZstdLevel("ultra")
	require.ErrorContains(t, err, `invalid zstd level "ultra"`)
}

func TestResolveJob(t *testing.T) {
	const doc = `
defaults:
  format: bc3
  fit: range
  mips: true
jobs:
  - input: albedo.png
    output: albedo.dds
  - input: normal.png
    output: normal.bcz
    format: bc5
    mips: false
  - input: mask.png
    output: mask.dds
    format: bc4
    srgb: true
`
	var manifest batchManifest
	require.NoError(t, yaml.Unmarshal([]byte(doc), &manifest))
	require.Len(t, manifest.Jobs, 3)

	// Job 0 inherits everything from the defaults.
	opt, in, out, err := resolveJob(manifest.Jobs[0], manifest.Defaults, 4)
	require.NoError(t, err)
	require.Equal(t, "albedo.png", in)
	require.Equal(t, "albedo.dds", out)
	require.Equal(t, bcn.FormatBC3, opt.format)
	require.Equal(t, bcn.AlgorithmRangeFit, opt.fit)
	require.True(t, opt.mips)
	require.False(t, opt.srgb)
	require.False(t, opt.sidecar)
	require.Equal(t, 4, opt.workers)
	require.Equal(t, zstd.SpeedDefault, opt.zstdLevel)

	// Job 1 overrides the format, turns defaulted mips back off, and the
	// .bcz suffix selects the compressed container.
	opt, _, _, err = resolveJob(manifest.Jobs[1], manifest.Defaults, 0)
	require.NoError(t, err)
	require.Equal(t, bcn.FormatBC5, opt.format)
	require.Equal(t, bcn.AlgorithmRangeFit, opt.fit)
	require.False(t, opt.mips)
	require.True(t, opt.sidecar)

	// Job 2 sets srgb itself.
	opt, _, _, err = resolveJob(manifest.Jobs[2], manifest.Defaults, 0)
	require.NoError(t, err)
	require.Equal(t, bcn.FormatBC4, opt.format)
	require.True(t, opt.mips)
	require.True(t, opt.srgb)
}

func TestResolveJob_Empty(t *testing.T) {
	// With no defaults at all the format and fit fall back to bc1/cluster.
	opt, _, _, err := resolveJob(batchJob{Input: "a.png", Output: "a.dds"}, batchJob{}, 0)
	require.NoError(t, err)
	require.Equal(t, bcn.FormatBC1, opt.format)
	require.Equal(t, bcn.AlgorithmClusterFit, opt.fit)
	require.False(t, opt.mips)
	require.False(t, opt.srgb)
}

func TestResolveJob_Rejects(t *testing.T) {
	_, _, _, err := resolveJob(batchJob{Output: "a.dds"}, batchJob{}, 0)
	require.ErrorContains(t, err, "missing input")

	_, _, _, err = resolveJob(batchJob{Input: "a.png"}, batchJob{}, 0)
	require.ErrorContains(t, err, "missing output")

	_, _, _, err = resolveJob(batchJob{Input: "a.png", Output: "a.dds", Format: "bc9"}, batchJob{}, 0)
	require.ErrorContains(t, err, `invalid format "bc9"`)

	_, _, _, err = resolveJob(batchJob{Input: "a.png", Output: "a.dds", Fit: "fast"}, batchJob{}, 0)
	require.ErrorContains(t, err, `invalid fit "fast"`)
}
