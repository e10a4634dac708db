package motion

import (
	"encoding/json"
	"fmt"
	"slices"
)

// FrameRange 一段连续有运动的采样区间，闭区间 [Start, End]
type FrameRange struct {
	Start int
	End   int
}

// MarshalJSON 编码为 [start, end] 二元组
func (f FrameRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{f.Start, f.End})
}

// UnmarshalJSON 解析 [start, end] 二元组
func (f *FrameRange) UnmarshalJSON(b []byte) error {
	var v [2]int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v[0] > v[1] {
		return fmt.Errorf("frame range start %d > end %d", v[0], v[1])
	}
	f.Start, f.End = v[0], v[1]
	return nil
}

// Len 区间包含的采样数
func (f FrameRange) Len() int {
	return f.End - f.Start + 1
}

// SearchFrameSet 升序且互不相邻的区间集合
type SearchFrameSet []FrameRange

// Clone 返回独立副本，观察者拿到的永远是副本
func (s SearchFrameSet) Clone() SearchFrameSet {
	out := make(SearchFrameSet, len(s))
	copy(out, s)
	return out
}

// Samples 集合覆盖的采样总数
func (s SearchFrameSet) Samples() int {
	var n int
	for _, f := range s {
		n += f.Len()
	}
	return n
}

// Compress 将升序的采样索引合并为最少的连续区间
// 输入必须升序，空输入返回空集合。
// 重复值的差值为 0，会先切出 [5,5] 再开始 [5,6]，重叠的区间在 appendRange 中合并，
// 因此 [5,5,6] 得到 [[5,6]]。
func Compress(indices []int) SearchFrameSet {
	out := make(SearchFrameSet, 0, 4)
	for i := 0; i < len(indices); i++ {
		start := indices[i]
		end := start
		for i+1 < len(indices) && indices[i+1]-indices[i] == 1 {
			end = indices[i+1]
			i++
		}
		out = appendRange(out, FrameRange{Start: start, End: end})
	}
	return out
}

// appendRange 与最后一个区间重叠或相邻时合并，保持集合的最大性
func appendRange(s SearchFrameSet, f FrameRange) SearchFrameSet {
	if n := len(s); n > 0 && f.Start <= s[n-1].End+1 {
		s[n-1].End = max(s[n-1].End, f.End)
		return s
	}
	return append(s, f)
}

// PrepareIndices 在压缩之前校验后端返回的索引
// 出现负数返回 ErrMalformedResponse；非升序时防御性排序，第二个返回值标记是否排序过
func PrepareIndices(indices []int) ([]int, bool, error) {
	for _, v := range indices {
		if v < 0 {
			return nil, false, fmt.Errorf("%w: negative sample index %d", ErrMalformedResponse, v)
		}
	}
	if slices.IsSorted(indices) {
		return indices, false, nil
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	return sorted, true, nil
}
