package vector

// InnerProduct returns the inner product of a and b. The embedding
// provider returns normalized vectors, so this equals cosine similarity.
func InnerProduct(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// ipDistance converts inner-product similarity into a distance where
// smaller is closer, matching the graph's min-ordering.
func ipDistance(a, b []float32) float32 {
	return 1 - InnerProduct(a, b)
}
