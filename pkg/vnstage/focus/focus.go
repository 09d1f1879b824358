package focus

import "sort"

// 不透明度の2値
const (
	Dimmed = 0.5
	Active = 1.0
)

// State はキャラクター ID から不透明度へのマップです。
// ステージにいないキャラクターは含みません。
type State map[string]float64

// Resolve は発話ごとにフォーカス状態をゼロから計算します。
// speakers のうちキャストに含まれる者だけが Active、それ以外のキャストは Dimmed になります。
// ナレーターなどキャスト外の話者は無視されるため、その場合は全員が Dimmed です。
func Resolve(speakers []string, cast []string) State {
	speaking := make(map[string]bool, len(speakers))
	for _, s := range speakers {
		speaking[s] = true
	}

	state := make(State, len(cast))
	for _, id := range cast {
		if speaking[id] {
			state[id] = Active
		} else {
			state[id] = Dimmed
		}
	}
	return state
}

// Active は Active なキャラクター ID をソートして返します。
func (s State) Active() []string {
	var ids []string
	for id, opacity := range s {
		if opacity == Active {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
