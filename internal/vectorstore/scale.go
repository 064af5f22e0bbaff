package vectorstore

// ScaleStatus is the traffic-light advisory for the in-process index.
type ScaleStatus string

const (
	ScaleGreen  ScaleStatus = "green"
	ScaleYellow ScaleStatus = "yellow"
	ScaleOrange ScaleStatus = "orange"
	ScaleRed    ScaleStatus = "red"
)

// ScaleRecommendation pairs a status with a migration recommendation.
// Purely advisory and non-blocking.
type ScaleRecommendation struct {
	Status         ScaleStatus
	Recommendation string
}

// Recommend maps an episode count onto a scale advisory. Client-side
// similarity search degrades linearly, so the bands flag when a
// dedicated vector index should be considered.
func Recommend(count int) ScaleRecommendation {
	switch {
	case count < 500:
		return ScaleRecommendation{
			Status:         ScaleGreen,
			Recommendation: "in-process search is fine at this volume",
		}
	case count < 800:
		return ScaleRecommendation{
			Status:         ScaleYellow,
			Recommendation: "approaching the warning threshold; monitor search latency",
		}
	case count < 1500:
		return ScaleRecommendation{
			Status:         ScaleOrange,
			Recommendation: "plan a migration to a dedicated vector index",
		}
	default:
		return ScaleRecommendation{
			Status:         ScaleRed,
			Recommendation: "migrate to a dedicated vector index; client-side ranking is degrading",
		}
	}
}
