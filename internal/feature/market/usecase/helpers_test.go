package usecase

import "time"

// fixedRandom は固定値を順番に返すRandomです。値が尽きたら先頭に戻ります。
type fixedRandom struct {
	values []float64
	i      int
}

func (r *fixedRandom) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

// newFixedRandom は [0,1) の値列を返すRandomを生成します。
func newFixedRandom(values ...float64) *fixedRandom {
	return &fixedRandom{values: values}
}

var testToday = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testToday }
