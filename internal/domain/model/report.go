package model

// Credentials 一次请求内使用的门户账号, 不落盘也不写日志
type Credentials struct {
	ID     string
	Secret string
}

func (c Credentials) Valid() bool {
	return c.ID != "" && c.Secret != ""
}

// String 避免凭据被意外打印
func (c Credentials) String() string {
	return "Credentials{redacted}"
}

func (c Credentials) GoString() string {
	return c.String()
}

type AttendanceReport struct {
	Courses     []string  `json:"courses"`
	Percentages []float64 `json:"percentages"`
	Attendance  float64   `json:"attendance"`
}
