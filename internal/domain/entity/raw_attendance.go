package entity

// RawAttendance 页面上抓到的原始文本, 两组节点分别定位, 只按下标对应
type RawAttendance struct {
	Names    []string
	Percents []string
}

// Mismatched 两组节点数量不一致, 说明页面布局可能已经变化
func (r *RawAttendance) Mismatched() bool {
	return len(r.Names) != len(r.Percents)
}
