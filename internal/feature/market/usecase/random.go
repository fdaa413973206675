package usecase

import "math/rand"

// Random は [0, 1) の一様乱数を返す乱数源です。
// テストでは固定値を返す実装を注入します。
type Random interface {
	Float64() float64
}

type defaultRandom struct{}

func (defaultRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom はプロセス全体の乱数源を使うRandomを返します。
func DefaultRandom() Random { return defaultRandom{} }

// uniform は [-1, 1) の一様乱数を返します。
func uniform(r Random) float64 {
	return r.Float64()*2 - 1
}
