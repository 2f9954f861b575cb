package view

// Neighbors 返回灯箱中上一张与下一张的下标，首尾循环。
// n <= 0 时返回 (0, 0)。
func Neighbors(index, n int) (prev, next int) {
	if n <= 0 {
		return 0, 0
	}
	index = ((index % n) + n) % n
	return (index - 1 + n) % n, (index + 1) % n
}
