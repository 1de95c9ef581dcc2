package kakaku

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractManufacturer(t *testing.T) {
	cases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]", expected: "ドスパラ", ok: true},
		// the capture runs up to the last full-width space
		{input: "ドスパラ 【直販モデル】　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]", expected: "ドスパラ 【直販モデル】", ok: true},
		{input: "A　B　C [PC4-25600]", expected: "A　B", ok: true},
		{input: "ADATA AD4U320016G22 [DIMM DDR4 PC4-25600 16GB]", ok: false},
		// only the first line is considered
		{input: "ADATA\nAD4U　320016G22 [PC4-25600]", ok: false},
	}

	for _, test := range cases {
		manufacturer, ok := ExtractManufacturer(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.expected, manufacturer, test.input)
	}
}

func TestExtractProductName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]", expected: "D4N3200-16G1A2", ok: true},
		{input: "玄人志向　KRHS-ADAPTER (メモリ変換アダプタ)", expected: "KRHS-ADAPTER", ok: true},
		{input: "CFD　W4U3200CS-8G [DIMM DDR4 PC4-25600 8GB] (2枚組)", expected: "W4U3200CS-8G [DIMM DDR4 PC4-25600 8GB]", ok: true},
		{input: "CFD　W4U3200CS-8G[DIMM DDR4 PC4-25600 8GB]", ok: false},
		{input: "CFD W4U3200CS-8G [DIMM DDR4 PC4-25600 8GB]", ok: false},
	}

	for _, test := range cases {
		name, ok := ExtractProductName(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.expected, name, test.input)
	}
}

func TestExtractStandard(t *testing.T) {
	cases := []struct {
		input     string
		ddr       int
		bandwidth int
		ok        bool
	}{
		{input: "[SODIMM DDR4 PC4-25600 16GB]", ddr: 4, bandwidth: 25600, ok: true},
		{input: "[SODIMM DDR3L PC3L-12800 8GB]", ddr: 3, bandwidth: 12800, ok: true},
		{input: "[DIMM DDR2 PC2-6400 2GB]", ddr: 2, bandwidth: 6400, ok: true},
		{input: "PC5-44800", ddr: 5, bandwidth: 44800, ok: true},
		{input: "[DIMM DDR5 PC5-44800 / PC5-38400 互換]", ddr: 5, bandwidth: 38400, ok: true},
		{input: "[DIMM DDR4 16GB]", ok: false},
		{input: "[DIMM DDR4 PC-25600]", ok: false},
		{input: "[DIMM DDR4 PC4 25600]", ok: false},
		{input: "[DIMM PC4-99999999999999999999999]", ok: false},
	}

	for _, test := range cases {
		ddr, bandwidth, ok := ExtractStandard(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.ddr, ddr, test.input)
		require.Equal(t, test.bandwidth, bandwidth, test.input)
	}
}

func TestExtractReleaseDate(t *testing.T) {
	cases := []struct {
		input string
		y     int
		m     int
		d     int
		ok    bool
	}{
		{input: "2020/06/15", y: 2020, m: 6, d: 15, ok: true},
		{input: "2013/11/ 2", y: 2013, m: 11, d: 2, ok: true},
		{input: "発売日：2021/1/9", y: 2021, m: 1, d: 9, ok: true},
		{input: "2020年6月15日", ok: false},
		{input: "2020/06", ok: false},
		{input: "", ok: false},
	}

	for _, test := range cases {
		y, m, d, ok := ExtractReleaseDate(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, [3]int{test.y, test.m, test.d}, [3]int{y, m, d}, test.input)
	}
}

func TestRulePolicies(t *testing.T) {
	require.Equal(t, SkipRow, StandardRule.OnMiss)
	require.Equal(t, FailPage, ManufacturerRule.OnMiss)
	require.Equal(t, FailPage, ProductNameRule.OnMiss)
	require.Equal(t, FailPage, ReleaseDateRule.OnMiss)
	require.Equal(t, "skip-row", SkipRow.String())
}

func TestRuleMiss(t *testing.T) {
	require.NoError(t, StandardRule.miss(2, "延長ケーブル"))

	err := ReleaseDateRule.miss(4, "近日発売")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, ParseError{Row: 4, Rule: "release-date", Text: "近日発売"}, *parseErr)
}

func TestExtractGeneratedNames(t *testing.T) {
	rndm := rand.New(rand.NewSource(20231017))
	forms := []string{"DIMM", "SODIMM"}

	for i := 0; i < 200; i++ {
		ddr := 2 + rndm.Intn(4)
		bandwidth := 1600 * (1 + rndm.Intn(40))
		product := fmt.Sprintf("M%dX%04d-%dG", ddr, rndm.Intn(10000), 1<<rndm.Intn(6))
		lowVoltage := ""
		if rndm.Intn(3) == 0 {
			lowVoltage = "L"
		}
		name := fmt.Sprintf(
			"Maker%d　%s [%s DDR%d PC%d%s-%d %dGB]",
			i, product, forms[rndm.Intn(len(forms))], ddr, ddr, lowVoltage, bandwidth, 8,
		)

		manufacturer, ok := ExtractManufacturer(name)
		require.True(t, ok, name)
		require.Equal(t, fmt.Sprintf("Maker%d", i), manufacturer)

		gotProduct, ok := ExtractProductName(name)
		require.True(t, ok, name)
		require.Equal(t, product, gotProduct)

		gotDdr, gotBandwidth, ok := ExtractStandard(name)
		require.True(t, ok, name)
		require.Equal(t, ddr, gotDdr)
		require.Equal(t, bandwidth, gotBandwidth)
	}
}
