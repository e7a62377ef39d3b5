package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	FrameLoss = "Loss"
	FrameGain = "Gain"

	MethodZTest     = "Two-proportion z-test"
	MethodChiSquare = "Chi-square test"
)

// TestResult is one hypothesis-test outcome.
type TestResult struct {
	Hypothesis string
	Method     string
	Statistic  float64
	PValue     float64
	EffectSize float64
	Notes      string
}

// nonMissing collects the non-missing values of a label column.
func nonMissing(rows []Row, col string) []float64 {
	var values []float64
	for _, row := range rows {
		if v, ok := row.numeric(col); ok {
			values = append(values, v)
		}
	}
	return values
}

// twoProportionZTest compares the rate of a binary label between the Loss and
// Gain groups using the pooled-proportion standard error. Returns false when
// either group has no non-missing observations; that is an expected
// degenerate case, not an error.
func twoProportionZTest(hypothesis, col string, rows []Row) (TestResult, bool) {
	loss := nonMissing(filterRows(rows, func(r Row) bool { return r["frame"] == FrameLoss }), col)
	gain := nonMissing(filterRows(rows, func(r Row) bool { return r["frame"] == FrameGain }), col)

	if len(loss) == 0 || len(gain) == 0 {
		return TestResult{}, false
	}

	n1, n2 := float64(len(loss)), float64(len(gain))
	var x1, x2 float64
	for _, v := range loss {
		x1 += v
	}
	for _, v := range gain {
		x2 += v
	}

	pPool := (x1 + x2) / (n1 + n2)
	se := math.Sqrt(pPool * (1 - pPool) * (1/n1 + 1/n2))

	p1, p2 := x1/n1, x2/n2
	z := 0.0
	if se > 0 {
		z = (p1 - p2) / se
	}
	pValue := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))

	return TestResult{
		Hypothesis: hypothesis,
		Method:     MethodZTest,
		Statistic:  z,
		PValue:     pValue,
		EffectSize: p1 - p2,
		Notes:      fmt.Sprintf("Loss %s rate: %.3f, Gain %s rate: %.3f", col, p1, col, p2),
	}, true
}

// chiSquareTest runs a 2x2 test of independence between frame and a binary
// label, with Yates continuity correction. Skipped unless the contingency
// table is exactly 2x2 (two frames, both label values observed).
func chiSquareTest(hypothesis, col string, rows []Row) (TestResult, bool) {
	// Contingency counts over rows with a frame and a non-missing label.
	counts := map[string]map[int]float64{}
	total := 0.0
	for _, row := range rows {
		frame := row["frame"]
		if frame == "" {
			continue
		}
		v, ok := row.numeric(col)
		if !ok {
			continue
		}
		if counts[frame] == nil {
			counts[frame] = map[int]float64{}
		}
		counts[frame][int(v)]++
		total++
	}

	frames := make([]string, 0, len(counts))
	for f := range counts {
		frames = append(frames, f)
	}
	valueSet := map[int]bool{}
	for _, byValue := range counts {
		for v := range byValue {
			valueSet[v] = true
		}
	}
	if len(frames) != 2 || len(valueSet) != 2 {
		return TestResult{}, false
	}

	rowTotals := map[string]float64{}
	colTotals := map[int]float64{}
	for f, byValue := range counts {
		for v, n := range byValue {
			rowTotals[f] += n
			colTotals[v] += n
		}
	}

	chi2 := 0.0
	for _, f := range frames {
		for v := range valueSet {
			observed := counts[f][v]
			expected := rowTotals[f] * colTotals[v] / total
			if expected == 0 {
				return TestResult{}, false
			}
			diff := math.Abs(observed-expected) - 0.5
			if diff < 0 {
				diff = 0
			}
			chi2 += diff * diff / expected
		}
	}

	dist := distuv.ChiSquared{K: 1}
	pValue := 1 - dist.CDF(chi2)

	// Cramér's V for a 2x2 table, over the full dataset size.
	effect := 0.0
	if len(rows) > 0 {
		effect = math.Sqrt(chi2 / float64(len(rows)))
	}

	return TestResult{
		Hypothesis: hypothesis,
		Method:     MethodChiSquare,
		Statistic:  chi2,
		PValue:     pValue,
		EffectSize: effect,
		Notes:      "Degrees of freedom: 1",
	}, true
}

// HypothesisTests runs the study's confirmatory tests: H1 (vote-pledge rate,
// Loss vs Gain) and H2 (external-efficacy rate) as two-proportion z-tests,
// plus a chi-square check of frame x VP independence. Tests with insufficient
// data produce no result row.
func HypothesisTests(rows []Row) []TestResult {
	var results []TestResult

	if hasColumn(rows, "VP") {
		if r, ok := twoProportionZTest("H1", "VP", rows); ok {
			results = append(results, r)
		}
	}
	if hasColumn(rows, "E_ext") {
		if r, ok := twoProportionZTest("H2", "E_ext", rows); ok {
			results = append(results, r)
		}
	}
	if hasColumn(rows, "VP") {
		if r, ok := chiSquareTest("H1", "VP", rows); ok {
			results = append(results, r)
		}
	}

	return results
}

// findZTest returns the z-test result for a hypothesis, if present.
func findZTest(results []TestResult, hypothesis string) (TestResult, bool) {
	for _, r := range results {
		if r.Hypothesis == hypothesis && r.Method == MethodZTest {
			return r, true
		}
	}
	return TestResult{}, false
}
