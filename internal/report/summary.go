package report

import "sort"

// FrameSummaryRow aggregates one frame group. Rates are means over the
// non-missing label values; rows with a blank or non-numeric label do not
// count toward the denominator.
type FrameSummaryRow struct {
	Frame       string
	NComments   int
	VPRate      float64
	EIntRate    float64
	EExtRate    float64
	CynRate     float64
	MedianLike  float64
	MedianReply float64
}

// VideoSummaryRow aggregates one video, carrying through the video's frame.
type VideoSummaryRow struct {
	VideoID     string
	Frame       string
	NComments   int
	VPRate      float64
	EIntRate    float64
	EExtRate    float64
	MedianLike  float64
	MedianReply float64
}

// rate is the mean of non-missing values of a column, 0 when none exist.
func rate(rows []Row, col string) float64 {
	sum, n := 0.0, 0
	for _, row := range rows {
		if v, ok := row.numeric(col); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// median is the median of non-missing values, 0 when none exist. Even-sized
// sets interpolate between the middle pair.
func median(rows []Row, col string) float64 {
	var values []float64
	for _, row := range rows {
		if v, ok := row.numeric(col); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

// FrameSummary computes per-frame aggregates, ordered by frame name.
func FrameSummary(rows []Row) []FrameSummaryRow {
	var out []FrameSummaryRow
	for _, frame := range distinctValues(rows, "frame") {
		group := filterRows(rows, func(r Row) bool { return r["frame"] == frame })
		out = append(out, FrameSummaryRow{
			Frame:       frame,
			NComments:   len(group),
			VPRate:      rate(group, "VP"),
			EIntRate:    rate(group, "E_int"),
			EExtRate:    rate(group, "E_ext"),
			CynRate:     rate(group, "Cyn"),
			MedianLike:  median(group, "like_count"),
			MedianReply: median(group, "total_reply_count"),
		})
	}
	return out
}

// VideoSummary computes per-video aggregates, ordered by video ID.
func VideoSummary(rows []Row) []VideoSummaryRow {
	var out []VideoSummaryRow
	for _, videoID := range distinctValues(rows, "video_id") {
		group := filterRows(rows, func(r Row) bool { return r["video_id"] == videoID })
		frame := ""
		if len(group) > 0 {
			frame = group[0]["frame"]
		}
		out = append(out, VideoSummaryRow{
			VideoID:     videoID,
			Frame:       frame,
			NComments:   len(group),
			VPRate:      rate(group, "VP"),
			EIntRate:    rate(group, "E_int"),
			EExtRate:    rate(group, "E_ext"),
			MedianLike:  median(group, "like_count"),
			MedianReply: median(group, "total_reply_count"),
		})
	}
	return out
}

// EngagementRow holds engagement metrics for one frame group. Unlike the
// label rates, missing numeric cells count as zero here.
type EngagementRow struct {
	Frame              string
	HasLikeRate        float64
	HasReplyRate       float64
	HighEngagementRate float64
	AvgLikeAll         float64
	AvgLikeIfAny       float64
}

// EngagementMetrics computes per-frame engagement rates. A comment is "high
// engagement" when it has more than five likes or any reply.
func EngagementMetrics(rows []Row) []EngagementRow {
	var out []EngagementRow
	for _, frame := range distinctValues(rows, "frame") {
		group := filterRows(rows, func(r Row) bool { return r["frame"] == frame })
		if len(group) == 0 {
			continue
		}

		var hasLike, hasReply, high, likeSum, likedSum float64
		liked := 0
		for _, row := range group {
			likes := row.numericOrZero("like_count")
			replies := row.numericOrZero("total_reply_count")

			if likes > 0 {
				hasLike++
				likedSum += likes
				liked++
			}
			if replies > 0 {
				hasReply++
			}
			if likes > 5 || replies > 0 {
				high++
			}
			likeSum += likes
		}

		n := float64(len(group))
		row := EngagementRow{
			Frame:              frame,
			HasLikeRate:        hasLike / n,
			HasReplyRate:       hasReply / n,
			HighEngagementRate: high / n,
			AvgLikeAll:         likeSum / n,
		}
		if liked > 0 {
			row.AvgLikeIfAny = likedSum / float64(liked)
		}
		out = append(out, row)
	}
	return out
}
