package services

// CronbachAlpha estimates internal consistency for a [respondents][items]
// matrix using population variance throughout, so perfectly correlated
// items give 1. Degenerate input (fewer than two respondents or items,
// ragged rows, zero total variance) gives 0. The result is clamped to [0,1].
func CronbachAlpha(matrix [][]float64) float64 {
	n := len(matrix)
	if n < 2 {
		return 0
	}
	k := len(matrix[0])
	if k < 2 {
		return 0
	}
	totals := make([]float64, n)
	for i, row := range matrix {
		if len(row) != k {
			return 0
		}
		for _, v := range row {
			totals[i] += v
		}
	}
	var itemVarSum float64
	column := make([]float64, n)
	for j := 0; j < k; j++ {
		for i := range matrix {
			column[i] = matrix[i][j]
		}
		itemVarSum += popVariance(column)
	}
	totalVar := popVariance(totals)
	if totalVar == 0 {
		return 0
	}
	kf := float64(k)
	alpha := kf / (kf - 1) * (1 - itemVarSum/totalVar)
	switch {
	case alpha < 0:
		return 0
	case alpha > 1:
		return 1
	}
	return alpha
}

func popVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs))
}
