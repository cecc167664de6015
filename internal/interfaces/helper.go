package interfaces

// MapKeys 任意map的key集合转为切片（日志打印已注册服务等场景用）
func MapKeys[K comparable, V any](m map[K]V) []K {
	res := make([]K, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	return res
}
