package report

import (
	"fmt"
	"strings"
)

// LOOResult is one leave-one-out iteration: the hypothesis tests recomputed
// with one video's comments removed. The baseline carries ExcludedVideo
// "none".
type LOOResult struct {
	ExcludedVideo string
	NComments     int
	H1PValue      float64
	H1EffectSize  float64
	H2PValue      float64
	H2EffectSize  float64
}

// looRow runs both z-tests on a dataset and packs them into an iteration row.
// Returns false when either test lacks data, in which case the iteration is
// skipped rather than failed.
func looRow(excluded string, rows []Row) (LOOResult, bool) {
	tests := HypothesisTests(rows)
	h1, ok1 := findZTest(tests, "H1")
	h2, ok2 := findZTest(tests, "H2")
	if !ok1 || !ok2 {
		return LOOResult{}, false
	}
	return LOOResult{
		ExcludedVideo: excluded,
		NComments:     len(rows),
		H1PValue:      h1.PValue,
		H1EffectSize:  h1.EffectSize,
		H2PValue:      h2.PValue,
		H2EffectSize:  h2.EffectSize,
	}, true
}

// LOOAnalysis recomputes the hypothesis tests once on the full dataset and
// once per video with that video's rows removed. Iterations left without
// enough data are silently skipped.
func LOOAnalysis(rows []Row) []LOOResult {
	var results []LOOResult

	if baseline, ok := looRow("none", rows); ok {
		results = append(results, baseline)
	}

	for _, videoID := range distinctValues(rows, "video_id") {
		reduced := filterRows(rows, func(r Row) bool { return r["video_id"] != videoID })
		if len(reduced) == 0 {
			continue
		}
		if row, ok := looRow(videoID, reduced); ok {
			results = append(results, row)
		}
	}

	return results
}

// robustnessBucket maps the fraction of significant LOO iterations to the
// qualitative assessment.
func robustnessBucket(significant, total int) string {
	if total == 0 {
		return "NOT ROBUST"
	}
	switch {
	case significant == total:
		return "ROBUST (always significant)"
	case float64(significant) >= float64(total)*0.75:
		return "MOSTLY ROBUST"
	case float64(significant) >= float64(total)*0.5:
		return "SENSITIVE (varies by video)"
	default:
		return "NOT ROBUST"
	}
}

// InterpretRobustness renders the plain-text robustness narrative from LOO
// results. The baseline row is reported but excluded from the significance
// fraction.
func InterpretRobustness(results []LOOResult) string {
	var baseline LOOResult
	var iterations []LOOResult
	for _, r := range results {
		if r.ExcludedVideo == "none" {
			baseline = r
		} else {
			iterations = append(iterations, r)
		}
	}

	var b strings.Builder
	b.WriteString("=== Robustness Analysis Report ===\n\n")

	writeHypothesis := func(name, direction string, fullP float64, pValues []float64, prec int) {
		significant := 0
		minP, maxP := 0.0, 0.0
		for i, p := range pValues {
			if p < 0.05 {
				significant++
			}
			if i == 0 || p < minP {
				minP = p
			}
			if i == 0 || p > maxP {
				maxP = p
			}
		}

		fmt.Fprintf(&b, "%s (%s):\n", name, direction)
		fmt.Fprintf(&b, "- Full analysis p-value: %.*f\n", prec, fullP)
		fmt.Fprintf(&b, "- Significant in %d/%d LOO iterations\n", significant, len(pValues))
		if len(pValues) > 0 {
			fmt.Fprintf(&b, "- P-value range: %.*f - %.*f\n", prec, minP, prec, maxP)
		}
		fmt.Fprintf(&b, "- Assessment: %s\n", robustnessBucket(significant, len(pValues)))
	}

	var h1P, h2P, h1E, h2E []float64
	for _, r := range iterations {
		h1P = append(h1P, r.H1PValue)
		h2P = append(h2P, r.H2PValue)
		h1E = append(h1E, r.H1EffectSize)
		h2E = append(h2E, r.H2EffectSize)
	}

	writeHypothesis("H1", "Loss -> VP", baseline.H1PValue, h1P, 3)
	b.WriteString("\n")
	writeHypothesis("H2", "Gain -> E_ext", baseline.H2PValue, h2P, 6)

	b.WriteString("\n=== Effect Size Stability ===\n")
	if len(iterations) > 0 {
		fmt.Fprintf(&b, "H1 effect size range: %.3f to %.3f\n", minOf(h1E), maxOf(h1E))
		fmt.Fprintf(&b, "H2 effect size range: %.3f to %.3f\n", minOf(h2E), maxOf(h2E))
	}

	return b.String()
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
